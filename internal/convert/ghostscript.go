package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"docforge/internal/workspace"
)

// GhostscriptCompress re-encodes a PDF through the gs pdfwrite device with
// ebook settings and the requested JPEG quality.
type GhostscriptCompress struct {
	Runner  Runner
	Binary  string
	Quality int
}

func (t *GhostscriptCompress) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	filename := fmt.Sprintf("compressed_%s.pdf", stem)

	outPath, err := ws.ChildPath(filename)
	if err != nil {
		return nil, err
	}

	out, err := t.Runner.RunCombined(ctx, t.Binary, buildGhostscriptArgs(t.Quality, outPath, input)...)
	if err != nil {
		return nil, classifyRunError(t.Binary, out, err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}

	return &Output{Path: outPath, MediaType: "application/pdf", Filename: filename}, nil
}

func buildGhostscriptArgs(quality int, outPath, inPath string) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/ebook",
		fmt.Sprintf("-dJPEGQ=%d", quality),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + outPath,
		inPath,
	}
}
