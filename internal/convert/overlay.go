package convert

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"docforge/internal/workspace"
)

// WatermarkPDF stamps text and/or an image overlay onto every page. Text is
// drawn centered and rotated 45 degrees; both overlay kinds use the same
// opacity.
type WatermarkPDF struct {
	Text    string
	Image   string // staged path of the optional watermark image
	Opacity float64
	Size    int
}

func (t WatermarkPDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	if t.Text == "" && t.Image == "" {
		return nil, failf(InvalidInput, "provide watermark text or image")
	}

	outPath, err := artifactPath(ws, "watermarked.pdf")
	if err != nil {
		return nil, err
	}
	if err := copyFile(inputs[0], outPath); err != nil {
		return nil, libFailure("copy pdf", err)
	}

	conf := pdfConf()

	if t.Text != "" {
		desc := fmt.Sprintf("points:%d, pos:c, rot:45, op:%.2f", t.Size, t.Opacity)
		wm, err := pdfcpu.ParseTextWatermarkDetails(t.Text, desc, true, types.POINTS)
		if err != nil {
			return nil, libFailure("watermark", err)
		}
		if err := pdfapi.AddWatermarksFile(outPath, "", nil, wm, conf); err != nil {
			return nil, libFailure("watermark", err)
		}
	}

	if t.Image != "" {
		desc := fmt.Sprintf("pos:c, rot:0, scale:0.5 rel, op:%.2f", t.Opacity)
		wm, err := pdfcpu.ParseImageWatermarkDetails(t.Image, desc, true, types.POINTS)
		if err != nil {
			return nil, libFailure("watermark", err)
		}
		if err := pdfapi.AddWatermarksFile(outPath, "", nil, wm, conf); err != nil {
			return nil, libFailure("watermark", err)
		}
	}

	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "watermarked.pdf"}, nil
}

var pageNumberAnchors = map[string]string{
	"bottom-right": "br",
	"bottom-left":  "bl",
	"top-right":    "tr",
	"top-left":     "tl",
}

// PageNumbers stamps a running page number onto every page at one of four
// fixed corners. Numbering starts at Start, and the literal token {n} in the
// format string is replaced by each page's number.
type PageNumbers struct {
	Start    int
	Format   string
	Position string
	Size     int
}

func (t PageNumbers) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	anchor, ok := pageNumberAnchors[t.Position]
	if !ok {
		return nil, failf(InvalidInput, "position must be one of top-left, top-right, bottom-left, bottom-right")
	}

	input := inputs[0]
	total, err := pageCount(input)
	if err != nil {
		return nil, err
	}

	outPath, err := artifactPath(ws, "numbered.pdf")
	if err != nil {
		return nil, err
	}
	if err := copyFile(input, outPath); err != nil {
		return nil, libFailure("copy pdf", err)
	}

	conf := pdfConf()
	desc := fmt.Sprintf("points:%d, pos:%s, rot:0, scale:1 abs, op:1", t.Size, anchor)

	for page := 1; page <= total; page++ {
		label := strings.ReplaceAll(t.Format, "{n}", strconv.Itoa(t.Start+page-1))
		wm, err := pdfcpu.ParseTextWatermarkDetails(label, desc, true, types.POINTS)
		if err != nil {
			return nil, libFailure("page numbers", err)
		}
		if err := pdfapi.AddWatermarksFile(outPath, "", []string{strconv.Itoa(page)}, wm, conf); err != nil {
			return nil, libFailure("page numbers", err)
		}
	}

	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "numbered.pdf"}, nil
}
