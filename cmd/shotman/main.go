package main

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/root4loot/goutils/fileutil"
	"github.com/root4loot/goutils/log"
	"shotman"
)

const (
	urlMappingFile  = "url_mapping.json"
	scanHistoryFile = "scan_history.json"
)

type CLI struct {
	Options     *shotman.Options
	Infile      string
	Backend     string
	NoImprint   bool
	ShowHistory bool
	ListImages  bool
	ExportZip   string
	ExportPDF   string
	Version     bool
	Help        bool
}

func NewCLI() *CLI {
	return &CLI{Options: shotman.DefaultOptions()}
}

func init() {
	log.Init("shotman")
}

func main() {
	cli := NewCLI()
	cli.parseFlags()
	cli.checkForExits()

	store := shotman.NewStore(urlMappingFile, scanHistoryFile)
	if err := store.Load(); err != nil {
		log.Warnf("Mapping load error: %v", err)
	}

	switch {
	case cli.ShowHistory:
		cli.printHistory(store)
	case cli.ListImages:
		cli.printImages()
	case cli.ExportZip != "":
		cli.exportZip(store)
	case cli.ExportPDF != "":
		cli.exportPDF(store)
	default:
		cli.scan(store)
	}
}

// scan runs one capture session over the input text, cancelling it
// cooperatively on interrupt.
func (c *CLI) scan(store *shotman.Store) {
	inputRef, text, err := c.readInput()
	if err != nil {
		log.Fatalf("Read error: %v", err)
	}

	runner := shotman.NewRunnerWithOptions(c.capturer(), c.Options)
	session := shotman.NewSession(runner, store, newProgressBar())

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		log.Warn("Interrupt received, stopping new submissions...")
		session.Cancel()
	}()

	if err := session.Run(inputRef, text); err != nil {
		log.Fatalf("Scan error: %v", err)
	}
}

// readInput returns the input reference and text blob, preferring piped
// stdin over the input file.
func (c *CLI) readInput() (inputRef, text string, err error) {
	if c.hasStdin() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return "stdin", string(data), nil
	}

	if c.hasInfile() {
		lines, err := fileutil.ReadFile(c.Infile)
		if err != nil {
			return "", "", err
		}
		return c.Infile, strings.Join(lines, "\n"), nil
	}

	return "", "", errors.New("no input specified")
}

func (c *CLI) capturer() shotman.Capturer {
	if c.Backend == "chromedp" {
		return shotman.NewChromedpCapturer(c.Options.Capture)
	}
	return shotman.NewRodCapturer(c.Options.Capture)
}

func (c *CLI) hasStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	mode := stat.Mode()

	isPipedFromChrDev := (mode & os.ModeCharDevice) == 0
	isPipedFromFIFO := (mode & os.ModeNamedPipe) != 0

	return isPipedFromChrDev || isPipedFromFIFO
}

func (c *CLI) hasInfile() bool {
	return c.Infile != ""
}
