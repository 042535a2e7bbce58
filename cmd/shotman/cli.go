package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/root4loot/goutils/log"
	"shotman"
)

// progressBar renders scan progress as a single rewritten terminal line,
// e.g. [#########-----------] 45% (9/20, 7 ok)
type progressBar struct {
	barLength int
	out       io.Writer
}

func newProgressBar() *progressBar {
	return &progressBar{barLength: 50, out: os.Stdout}
}

func (p *progressBar) OnProgress(completed, total, succeeded int) {
	progress := 0.0
	if total > 0 {
		progress = float64(completed) / float64(total)
	}
	filled := int(float64(p.barLength) * progress)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", p.barLength-filled)
	fmt.Fprintf(p.out, "\r[%s] %3.0f%% (%d/%d, %d ok)", bar, progress*100, completed, total, succeeded)
}

func (p *progressBar) OnComplete(total, succeeded int) {
	fmt.Fprintln(p.out)
	log.Resultf("Scan completed: %d/%d successful captures", succeeded, total)
}

func (p *progressBar) OnCancelled() {
	fmt.Fprintln(p.out)
	log.Warn("Process stopped by user")
}

func (p *progressBar) OnNoURLs() {
	log.Warn("No valid URLs found in input")
}

func (c *CLI) printHistory(store *shotman.Store) {
	entries, err := store.History()
	if err != nil {
		log.Fatalf("History load error: %v", err)
	}
	if len(entries) == 0 {
		log.Warn("No scan history found")
		return
	}

	fmt.Println("\n=== Scan History ===")
	for i, entry := range entries {
		rate := 0.0
		if entry.TotalURLs > 0 {
			rate = float64(entry.Successful) / float64(entry.TotalURLs) * 100
		}
		fmt.Printf("\n[%d] %s\n", i+1, entry.Date)
		fmt.Printf("    File: %s\n", entry.InputFile)
		fmt.Printf("    Output: %s\n", entry.OutputDir)
		fmt.Printf("    URLs: %d\n", entry.TotalURLs)
		fmt.Printf("    Successful: %d (%.1f%%)\n", entry.Successful, rate)
	}
}

func (c *CLI) printImages() {
	images, err := shotman.CollectImages(c.Options.OutputDir)
	if err != nil {
		log.Fatalf("Could not list images: %v", err)
	}
	if len(images) == 0 {
		log.Warn("No images found")
		return
	}

	fmt.Printf("\n=== Images in %s ===\n", c.Options.OutputDir)
	for i, path := range images {
		size := int64(0)
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
		fmt.Printf("[%2d] %s (%d KB)\n", i+1, filepath.Base(path), size/1024)
	}
}

// knownImages prefers the images captured this run and falls back to
// scanning the output folder.
func (c *CLI) knownImages(store *shotman.Store) []string {
	images := store.Images()
	if len(images) == 0 {
		images, _ = shotman.CollectImages(c.Options.OutputDir)
	}
	return images
}

func (c *CLI) exportZip(store *shotman.Store) {
	if err := shotman.ExportZip(c.knownImages(store), c.ExportZip); err != nil {
		log.Fatalf("Error during ZIP export: %v", err)
	}
	log.Resultf("ZIP export successful: %s", c.ExportZip)
}

func (c *CLI) exportPDF(store *shotman.Store) {
	if err := shotman.ExportPDF(c.knownImages(store), c.ExportPDF); err != nil {
		log.Fatalf("Error during PDF export: %v", err)
	}
	log.Resultf("PDF export successful: %s", c.ExportPDF)
}
