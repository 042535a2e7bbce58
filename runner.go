package shotman

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/root4loot/goscope"
	"github.com/root4loot/goutils/log"
)

// Runner drives the capture worker pool: it maps every input URL to one
// Capturer invocation and streams outcomes back as they complete.
type Runner struct {
	Options   *Options
	capturer  Capturer
	dupes     *dupeIndex
	cancelled atomic.Bool
}

// Options contains options for the runner.
type Options struct {
	Concurrency        int            // number of concurrent captures
	TaskBudget         int            // overall wall-clock budget per task (seconds)
	OutputDir          string         // folder to save screenshots to
	URLInImage         bool           // imprint the origin URL on saved images
	SaveUnique         bool           // skip saving near-duplicate screenshots
	DuplicateThreshold int            // similarity percentage (1-100) for SaveUnique
	Scope              *goscope.Scope // scope to use
	Silence            bool           // silence output
	Verbose            bool           // verbose logging
	Capture            CaptureOptions // options passed to the capture backend
}

// Outcome is the result of one screenshot attempt. Exactly one Outcome is
// produced per submitted URL; delivery order is completion order.
type Outcome struct {
	Index int    // position of the URL in the input sequence
	URL   string // origin URL the attempt was made against
	Path  string // saved image path, empty on failure
	Err   error  // nil on success
}

// Success reports whether the outcome carries a saved image.
func (o Outcome) Success() bool {
	return o.Err == nil
}

func init() {
	log.Init("shotman")
}

// DefaultOptions returns default options.
func DefaultOptions() *Options {
	return &Options{
		Concurrency:        4,
		TaskBudget:         60,
		OutputDir:          "./screenshots",
		URLInImage:         true,
		SaveUnique:         false,
		DuplicateThreshold: 96,
		Capture:            DefaultCaptureOptions(),
	}
}

// NewRunner returns a new runner using the given capture backend and
// default options.
func NewRunner(capturer Capturer) *Runner {
	return NewRunnerWithOptions(capturer, DefaultOptions())
}

// NewRunnerWithOptions returns a new runner with the specified options.
func NewRunnerWithOptions(capturer Capturer, options *Options) *Runner {
	SetLogLevel(options)

	if options.Scope == nil {
		options.Scope = goscope.NewScope()
	}

	return &Runner{
		Options:  options,
		capturer: capturer,
		dupes:    newDupeIndex(),
	}
}

// Cancel stops the runner from submitting new tasks. In-flight captures
// finish (or hit their budget) and still deliver their outcome.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (r *Runner) Cancelled() bool {
	return r.cancelled.Load()
}

// Stream submits every URL to the pool and delivers outcomes on results as
// they complete. The channel is closed once all submitted tasks have
// reported. Completion order is not input order.
func (r *Runner) Stream(urls []string, results chan<- Outcome) {
	defer close(results)

	sem := make(chan struct{}, r.Options.Concurrency)
	var wg sync.WaitGroup

	for i, u := range urls {
		if r.cancelled.Load() {
			log.Debugf("Cancellation requested, %d of %d tasks not submitted", len(urls)-i, len(urls))
			break
		}
		sem <- struct{}{}
		// Cancel may have fired while this submission waited for a slot.
		if r.cancelled.Load() {
			<-sem
			log.Debugf("Cancellation requested, %d of %d tasks not submitted", len(urls)-i, len(urls))
			break
		}
		wg.Add(1)
		go func(index int, target string) {
			defer func() { <-sem }()
			defer wg.Done()
			results <- r.execute(index, target)
		}(i, u)
	}

	wg.Wait()
}

// execute runs one capture task under the overall wall-clock budget. The
// budget is independent of the backend's own navigation timeout and guards
// against a hung adapter.
func (r *Runner) execute(index int, target string) Outcome {
	budget := time.Duration(r.Options.TaskBudget) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		done <- r.captureOne(ctx, index, target)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-ctx.Done():
		log.Warnf("Task budget exceeded for %s", target)
		return Outcome{Index: index, URL: target, Err: errors.New("timed out")}
	}
}

// captureOne invokes the capture backend and saves the image. Failures of
// any kind, panics included, are converted to a failed Outcome; they never
// escape the worker.
func (r *Runner) captureOne(ctx context.Context, index int, target string) (outcome Outcome) {
	outcome = Outcome{Index: index, URL: target}

	defer func() {
		if rec := recover(); rec != nil {
			outcome.Path = ""
			outcome.Err = fmt.Errorf("capture panicked: %v", rec)
		}
	}()

	log.Debugf("Capturing %s", target)

	image, err := r.capturer.Capture(ctx, target)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if r.Options.SaveUnique && r.dupes.isDuplicate(image, r.Options.DuplicateThreshold) {
		log.Infof("Duplicate screenshot found for %s. Skipping save.", target)
		outcome.Err = errors.New("duplicate of existing capture")
		return outcome
	}

	if r.Options.URLInImage {
		imprinted, err := AddCaption(image, target)
		if err != nil {
			log.Warnf("Could not add URL to image for %s: %v", target, err)
		} else {
			image = imprinted
		}
	}

	path, err := r.writeImage(target, image)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Path = path
	return outcome
}

func (r *Runner) writeImage(target string, image []byte) (string, error) {
	if err := os.MkdirAll(r.Options.OutputDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("could not create output folder: %w", err)
	}

	path := filepath.Join(r.Options.OutputDir, Filename(target))
	if err := os.WriteFile(path, image, 0644); err != nil {
		return "", fmt.Errorf("could not save screenshot: %w", err)
	}

	return path, nil
}

// SetLogLevel sets the log level based on the options.
func SetLogLevel(options *Options) {
	if options.Silence {
		log.SetLevel(log.FatalLevel)
	} else if options.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
