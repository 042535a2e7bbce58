package shotman

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpCapturer is an alternate capture backend driving Chrome through
// chromedp instead of go-rod. Same contract as RodCapturer.
type ChromedpCapturer struct {
	Options CaptureOptions
}

// NewChromedpCapturer creates a ChromedpCapturer with the provided options.
func NewChromedpCapturer(options CaptureOptions) *ChromedpCapturer {
	return &ChromedpCapturer{Options: options}
}

func (c *ChromedpCapturer) Capture(ctx context.Context, rawURL string) ([]byte, error) {
	timeout := time.Duration(c.Options.Timeout) * time.Second
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if c.Options.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.Options.UserAgent))
	}

	allocator, cancelAllocator := chromedp.NewExecAllocator(navCtx, opts...)
	defer cancelAllocator()

	cctx, cancelContext := chromedp.NewContext(allocator)
	defer cancelContext()

	blocked := make([]string, 0, len(blockedMediaExtensions))
	for _, ext := range blockedMediaExtensions {
		blocked = append(blocked, "*"+ext+"*")
	}

	var image []byte
	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetBlockedURLS(blocked),
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorDeny),
		page.SetBypassCSP(true),
		chromedp.EmulateViewport(int64(c.Options.CaptureWidth), int64(c.Options.CaptureHeight)),
		chromedp.Navigate(rawURL),
		chromedp.Sleep(time.Duration(c.Options.WaitTime) * time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(int64(c.Options.Quality)).
				Do(ctx)
			if err != nil {
				return err
			}
			image = buf
			return nil
		}),
	}

	if err := chromedp.Run(cctx, tasks); err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out after %v: %w", rawURL, timeout, err)
		}
		return nil, fmt.Errorf("error capturing screenshot for %s: %w", rawURL, err)
	}

	return image, nil
}
