package convert

import (
	"context"
	"path/filepath"
	"strings"

	"docforge/internal/pptx"
	"docforge/internal/workspace"
)

// PDFToPPTX rasterizes every page with pdftoppm and builds a presentation
// with one full-bleed slide per page, in ascending page order.
type PDFToPPTX struct {
	Runner Runner
	Binary string
	DPI    int
}

func (t *PDFToPPTX) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	prefix, err := ws.ChildPath("slide")
	if err != nil {
		return nil, err
	}

	out, err := rasterizePDF(ctx, t.Runner, t.Binary, "-png", t.DPI, input, prefix)
	if err != nil {
		return nil, classifyRunError(t.Binary, out, err)
	}

	rendered, err := renderedPages(ws.Dir(), "slide-", ".png")
	if err != nil {
		return nil, err
	}
	if len(rendered) == 0 {
		return nil, failf(OutputMissing, "no pages rendered: %s", truncateDiagnostic(out))
	}

	filename := stem + ".pptx"
	outPath, err := ws.ChildPath(filename)
	if err != nil {
		return nil, err
	}
	if err := pptx.Write(outPath, rendered); err != nil {
		return nil, libFailure("build presentation", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}

	return &Output{
		Path:      outPath,
		MediaType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		Filename:  filename,
	}, nil
}
