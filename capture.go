package shotman

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/root4loot/goutils/log"
)

// Capturer renders a URL into compressed image bytes. Implementations must
// release every browser resource on all exit paths and report any failure
// as an error rather than returning empty bytes.
type Capturer interface {
	Capture(ctx context.Context, rawURL string) ([]byte, error)
}

// CaptureOptions contains the options for a single capture backend.
type CaptureOptions struct {
	CaptureWidth  int    // Width of the viewport
	CaptureHeight int    // Height of the viewport
	Timeout       int    // Navigation timeout (seconds)
	WaitTime      int    // Settle delay after load, before capture (seconds)
	Quality       int    // JPEG quality (1-100)
	UserAgent     string // User agent, empty for browser default
}

// DefaultCaptureOptions returns a CaptureOptions struct initialized with
// default values.
func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{
		CaptureWidth:  1280,
		CaptureHeight: 800,
		Timeout:       15,
		WaitTime:      1,
		Quality:       85,
	}
}

// blockedMediaExtensions are heavy media containers aborted during page load
// to shorten capture time.
var blockedMediaExtensions = []string{".mp4", ".avi", ".webm", ".mp3", ".wav", ".ogg"}

func isBlockedMedia(requestURL string) bool {
	for _, ext := range blockedMediaExtensions {
		if strings.Contains(requestURL, ext) {
			return true
		}
	}
	return false
}

// denyDownloads builds the request that disables downloads for the
// browsing context. A capture must never write files beyond the
// screenshot itself.
func denyDownloads() *proto.BrowserSetDownloadBehavior {
	return &proto.BrowserSetDownloadBehavior{
		Behavior: proto.BrowserSetDownloadBehaviorBehaviorDeny,
	}
}

func browserPath() (string, error) {
	path, exists := launcher.LookPath()
	if !exists {
		return "", errors.New("no chrome binary found")
	}
	return path, nil
}

// RodCapturer captures screenshots through a disposable go-rod browser,
// one browser process per call.
type RodCapturer struct {
	Options CaptureOptions
}

// NewRodCapturer creates a RodCapturer with the provided options.
func NewRodCapturer(options CaptureOptions) *RodCapturer {
	return &RodCapturer{Options: options}
}

// Capture navigates to rawURL in a fresh headless browser and returns the
// visible viewport as a JPEG.
func (c *RodCapturer) Capture(ctx context.Context, rawURL string) ([]byte, error) {
	timeout := time.Duration(c.Options.Timeout) * time.Second
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path, err := browserPath()
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Headless(true).
		Bin(path).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if c.Options.UserAgent != "" {
		l.Set("user-agent", c.Options.UserAgent)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Debugf("Error closing browser for %s: %v", rawURL, err)
		}
	}()

	if err := denyDownloads().Call(browser); err != nil {
		return nil, fmt.Errorf("failed to disable downloads: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	viewport := &proto.EmulationSetDeviceMetricsOverride{
		Width:             c.Options.CaptureWidth,
		Height:            c.Options.CaptureHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}
	if err := page.SetViewport(viewport); err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	if err := (proto.PageSetBypassCSP{Enabled: true}).Call(page); err != nil {
		log.Warnf("Could not bypass CSP for %s: %v", rawURL, err)
	}

	// Abort heavy media requests, pass everything else through unmodified.
	router := page.HijackRequests()
	defer router.Stop()

	err = router.Add("*", "", func(hijack *rod.Hijack) {
		if isBlockedMedia(hijack.Request.URL().String()) {
			hijack.Response.Fail(proto.NetworkErrorReasonAborted)
			return
		}
		hijack.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to install request interception: %w", err)
	}
	go router.Run()

	if err := page.Context(navCtx).Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("error navigating to %s: %w", rawURL, err)
	}

	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%s timed out after %v: %w", rawURL, timeout, err)
	}

	// Let late-rendering content paint before capturing.
	if c.Options.WaitTime > 0 {
		time.Sleep(time.Duration(c.Options.WaitTime) * time.Second)
	}

	quality := c.Options.Quality
	image, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return nil, fmt.Errorf("error capturing screenshot for %s: %w", rawURL, err)
	}

	return image, nil
}
