package shotman

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/root4loot/goutils/sliceutil"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// CollectImages lists the image files in a directory, sorted by name.
func CollectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read output folder: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if sliceutil.Contains(imageExtensions, ext) {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)

	return images, nil
}

// ExportZip bundles the images into a single ZIP archive at dest. Archive
// members are flat file names without directories.
func ExportZip(images []string, dest string) error {
	if len(images) == 0 {
		return errors.New("no images to export")
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	for _, path := range images {
		if err := addZipEntry(zw, path); err != nil {
			zw.Close()
			return fmt.Errorf("could not add %s: %w", path, err)
		}
	}

	return zw.Close()
}

func addZipEntry(zw *zip.Writer, path string) error {
	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// ExportPDF writes a paginated catalog to dest: one image per page, scaled
// to fit, with its file name as a caption.
func ExportPDF(images []string, dest string) error {
	if len(images) == 0 {
		return errors.New("no images to export")
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 10)
	pageWidth, pageHeight := pdf.GetPageSize()

	for _, path := range images {
		pdf.AddPage()

		if _, err := os.Stat(path); err != nil {
			pdf.Text(50, pageHeight-50, "Unable to load: "+filepath.Base(path))
			continue
		}

		options := gofpdf.ImageOptions{ReadDpi: false}
		info := pdf.RegisterImageOptions(path, options)
		if info == nil {
			pdf.Text(50, pageHeight-50, "Unable to load: "+filepath.Base(path))
			continue
		}

		imgWidth, imgHeight := info.Extent()
		scale := pageWidth / imgWidth
		if s := pageHeight / imgHeight; s < scale {
			scale = s
		}
		scale *= 0.8

		w := imgWidth * scale
		h := imgHeight * scale
		x := (pageWidth - w) / 2
		y := (pageHeight - h) / 2

		pdf.ImageOptions(path, x, y, w, h, false, options, 0, "")
		pdf.Text(50, pageHeight-50, filepath.Base(path))
	}

	if err := pdf.OutputFileAndClose(dest); err != nil {
		return fmt.Errorf("could not write PDF: %w", err)
	}
	return nil
}
