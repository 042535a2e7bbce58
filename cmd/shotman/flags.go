package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/root4loot/goutils/log"
	"shotman"
)

const version = "0.1.0"

func (c *CLI) usage() {
	defaults := shotman.DefaultOptions()
	w := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)

	fmt.Fprintf(w, "Usage:\t%s [options] (-i <input.txt> | stdin)\n", os.Args[0])

	fmt.Fprintf(w, "\nINPUT:\n")
	fmt.Fprintf(w, "\t%s,  %s\t%s\n", "-i", "--input", "input file containing URLs in arbitrary text")

	fmt.Fprintf(w, "\nCONFIGURATIONS:\n")
	fmt.Fprintf(w, "\t%s,  %s\t%s\t(Default: %d)\n", "-c", "--concurrency", "number of concurrent captures", defaults.Concurrency)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %d seconds)\n", "-to", "--timeout", "navigation timeout per capture", defaults.Capture.Timeout)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %d seconds)\n", "-tb", "--task-budget", "overall wall-clock budget per capture", defaults.TaskBudget)
	fmt.Fprintf(w, "\t%s,  %s\t%s\t(Default: %d)\n", "-q", "--quality", "JPEG quality (1-100)", defaults.Capture.Quality)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %d)\n", "-cw", "--capture-width", "viewport pixel width", defaults.Capture.CaptureWidth)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %d)\n", "-ch", "--capture-height", "viewport pixel height", defaults.Capture.CaptureHeight)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %d seconds)\n", "-wt", "--wait-time", "settle delay before capture", defaults.Capture.WaitTime)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: Chrome UA)\n", "-ua", "--user-agent", "set user agent")
	fmt.Fprintf(w, "\t%s,  %s\t%s\t(Default: rod)\n", "-b", "--backend", "capture backend (rod, chromedp)")
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %v)\n", "-su", "--save-unique", "skip saving near-duplicate screenshots", defaults.SaveUnique)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %d)\n", "-dt", "--duplicate-threshold", "similarity percentage for --save-unique", defaults.DuplicateThreshold)

	fmt.Fprintf(w, "\nOUTPUT:\n")
	fmt.Fprintf(w, "\t%s,  %s\t%s\t(Default: %s)\n", "-o", "--outfolder", "save images to given folder", defaults.OutputDir)
	fmt.Fprintf(w, "\t%s, %s\t%s\t(Default: %v)\n", "-nt", "--no-text", "do not imprint the origin URL on images", false)
	fmt.Fprintf(w, "\t%s,  %s\t%s\n", "-s", "--silence", "silence output")
	fmt.Fprintf(w, "\t%s,  %s\t%s\n", "-v", "--verbose", "verbose output")

	fmt.Fprintf(w, "\nMODES:\n")
	fmt.Fprintf(w, "\t%s\t%s\n", "--history", "show scan history")
	fmt.Fprintf(w, "\t%s\t%s\n", "--list", "list captured images")
	fmt.Fprintf(w, "\t%s\t%s\n", "--export <file.zip>", "export images to a ZIP archive")
	fmt.Fprintf(w, "\t%s\t%s\n", "--export-pdf <file.pdf>", "export images to a PDF catalog")
	fmt.Fprintf(w, "\t%s\t%s\n", "--version", "display version")

	w.Flush()
	fmt.Println("")
}

// parseFlags parses the command line options and sets the options.
func (c *CLI) parseFlags() {
	// INPUT
	flag.StringVar(&c.Infile, "input", "", "")
	flag.StringVar(&c.Infile, "i", "", "")

	// CONFIGURATIONS
	flag.IntVar(&c.Options.Concurrency, "concurrency", c.Options.Concurrency, "")
	flag.IntVar(&c.Options.Concurrency, "c", c.Options.Concurrency, "")
	flag.IntVar(&c.Options.Capture.Timeout, "timeout", c.Options.Capture.Timeout, "")
	flag.IntVar(&c.Options.Capture.Timeout, "to", c.Options.Capture.Timeout, "")
	flag.IntVar(&c.Options.TaskBudget, "task-budget", c.Options.TaskBudget, "")
	flag.IntVar(&c.Options.TaskBudget, "tb", c.Options.TaskBudget, "")
	flag.IntVar(&c.Options.Capture.Quality, "quality", c.Options.Capture.Quality, "")
	flag.IntVar(&c.Options.Capture.Quality, "q", c.Options.Capture.Quality, "")
	flag.IntVar(&c.Options.Capture.CaptureWidth, "capture-width", c.Options.Capture.CaptureWidth, "")
	flag.IntVar(&c.Options.Capture.CaptureWidth, "cw", c.Options.Capture.CaptureWidth, "")
	flag.IntVar(&c.Options.Capture.CaptureHeight, "capture-height", c.Options.Capture.CaptureHeight, "")
	flag.IntVar(&c.Options.Capture.CaptureHeight, "ch", c.Options.Capture.CaptureHeight, "")
	flag.IntVar(&c.Options.Capture.WaitTime, "wait-time", c.Options.Capture.WaitTime, "")
	flag.IntVar(&c.Options.Capture.WaitTime, "wt", c.Options.Capture.WaitTime, "")
	flag.StringVar(&c.Options.Capture.UserAgent, "user-agent", "", "")
	flag.StringVar(&c.Options.Capture.UserAgent, "ua", "", "")
	flag.StringVar(&c.Backend, "backend", "rod", "")
	flag.StringVar(&c.Backend, "b", "rod", "")
	flag.BoolVar(&c.Options.SaveUnique, "save-unique", c.Options.SaveUnique, "")
	flag.BoolVar(&c.Options.SaveUnique, "su", c.Options.SaveUnique, "")
	flag.IntVar(&c.Options.DuplicateThreshold, "duplicate-threshold", c.Options.DuplicateThreshold, "")
	flag.IntVar(&c.Options.DuplicateThreshold, "dt", c.Options.DuplicateThreshold, "")

	// OUTPUT
	flag.StringVar(&c.Options.OutputDir, "outfolder", c.Options.OutputDir, "")
	flag.StringVar(&c.Options.OutputDir, "o", c.Options.OutputDir, "")
	flag.BoolVar(&c.NoImprint, "no-text", false, "")
	flag.BoolVar(&c.NoImprint, "nt", false, "")
	flag.BoolVar(&c.Options.Silence, "silence", false, "")
	flag.BoolVar(&c.Options.Silence, "s", false, "")
	flag.BoolVar(&c.Options.Verbose, "verbose", false, "")
	flag.BoolVar(&c.Options.Verbose, "v", false, "")

	// MODES
	flag.BoolVar(&c.ShowHistory, "history", false, "")
	flag.BoolVar(&c.ListImages, "list", false, "")
	flag.StringVar(&c.ExportZip, "export", "", "")
	flag.StringVar(&c.ExportPDF, "export-pdf", "", "")
	flag.BoolVar(&c.Version, "version", false, "")
	flag.BoolVar(&c.Help, "help", false, "")
	flag.BoolVar(&c.Help, "h", false, "")

	flag.Usage = func() {
		c.usage()
	}

	flag.Parse()

	c.Options.URLInImage = !c.NoImprint
}

// checkForExits handles help/version and missing-input exits before any
// work starts.
func (c *CLI) checkForExits() {
	if c.Help {
		c.usage()
		os.Exit(0)
	}

	if c.Version {
		fmt.Println("shotman", version)
		os.Exit(0)
	}

	hasMode := c.ShowHistory || c.ListImages || c.ExportZip != "" || c.ExportPDF != ""
	if !hasMode && !c.hasStdin() && !c.hasInfile() {
		log.Error("No input specified")
		c.usage()
		os.Exit(0)
	}
}
