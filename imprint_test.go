package shotman

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestAddCaption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.jpg")
	writeTestJPEG(t, path, 120, 80)

	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	captioned, err := AddCaption(original, "https://example.com")
	if err != nil {
		t.Fatalf("AddCaption: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(captioned))
	if err != nil {
		t.Fatalf("decoding captioned image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("captioned image format = %q, want jpeg", format)
	}
	if img.Bounds().Dy() <= 80 {
		t.Errorf("caption strip missing: height %d", img.Bounds().Dy())
	}
	if img.Bounds().Dx() != 120 {
		t.Errorf("width changed: %d", img.Bounds().Dx())
	}
}

func TestAddCaptionInvalidImage(t *testing.T) {
	if _, err := AddCaption([]byte("not an image"), "https://example.com"); err == nil {
		t.Error("expected decode error")
	}
}
