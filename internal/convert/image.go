package convert

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"docforge/internal/workspace"
)

// ImagesToPDF builds a PDF with one page per uploaded image, in submission
// order. Each page is sized to its image at 96 DPI.
type ImagesToPDF struct{}

func (ImagesToPDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	if len(inputs) == 0 {
		return nil, failf(InvalidInput, "missing image upload")
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	for _, path := range inputs {
		width, height, imgType, err := imageBounds(path)
		if err != nil {
			return nil, failf(InvalidInput, "unsupported image %s: %v", filepath.Base(path), err)
		}

		wpt := float64(width) * 72 / 96
		hpt := float64(height) * 72 / 96
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: wpt, Ht: hpt})

		opts := gofpdf.ImageOptions{ImageType: imgType}
		pdf.ImageOptions(path, 0, 0, wpt, hpt, false, opts, 0, "")
	}

	filename := "images.pdf"
	if len(inputs) == 1 {
		stem := strings.TrimSuffix(filepath.Base(inputs[0]), filepath.Ext(inputs[0]))
		filename = stem + ".pdf"
	}
	outPath, err := ws.ChildPath(filename)
	if err != nil {
		return nil, err
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return nil, libFailure("build pdf", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}

	return &Output{Path: outPath, MediaType: "application/pdf", Filename: filename}, nil
}

// imageBounds decodes just the image header and reports its pixel size plus
// the image type name gofpdf expects.
func imageBounds(path string) (int, int, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", err
	}

	switch format {
	case "jpeg":
		return cfg.Width, cfg.Height, "JPG", nil
	case "png":
		return cfg.Width, cfg.Height, "PNG", nil
	default:
		return 0, 0, "", fmt.Errorf("unsupported image format %q", format)
	}
}
