package shotman

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestDenyDownloads(t *testing.T) {
	behavior := denyDownloads()
	if behavior.Behavior != proto.BrowserSetDownloadBehaviorBehaviorDeny {
		t.Errorf("download behavior = %q, want deny", behavior.Behavior)
	}
	if behavior.DownloadPath != "" {
		t.Errorf("denied downloads must not carry a download path, got %q", behavior.DownloadPath)
	}
}

// browserPath either resolves a usable binary or reports the absence up
// front; it never hands an empty path to the launcher.
func TestBrowserPath(t *testing.T) {
	path, err := browserPath()
	if err == nil && path == "" {
		t.Error("browserPath returned no error and an empty path")
	}
	if err != nil && err.Error() != "no chrome binary found" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIsBlockedMedia(t *testing.T) {
	tests := []struct {
		url     string
		blocked bool
	}{
		{"https://example.com/video.mp4", true},
		{"https://example.com/clip.webm?token=abc", true},
		{"https://example.com/audio.mp3", true},
		{"https://example.com/index.html", false},
		{"https://example.com/logo.png", false},
	}

	for _, tt := range tests {
		if got := isBlockedMedia(tt.url); got != tt.blocked {
			t.Errorf("isBlockedMedia(%q) = %v, want %v", tt.url, got, tt.blocked)
		}
	}
}
