package convert

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"docforge/internal/workspace"
)

// PDFToExcel extracts the embedded text layer into an xlsx workbook: one
// worksheet row per text line, with a blank separator row between pages.
// Scanned, image-only PDFs yield an empty workbook.
type PDFToExcel struct{}

func (PDFToExcel) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	f, reader, err := pdf.Open(input)
	if err != nil {
		return nil, libFailure("read pdf", err)
	}
	defer f.Close()

	wb := excelize.NewFile()
	defer wb.Close()
	const sheet = "Sheet1"

	rowIdx := 1
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		for _, line := range pageLines(page.Content().Text) {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return nil, libFailure("build spreadsheet", err)
			}
			if err := wb.SetCellValue(sheet, cell, line); err != nil {
				return nil, libFailure("build spreadsheet", err)
			}
			rowIdx++
		}

		// Blank separator row between pages.
		rowIdx++
	}

	filename := stem + ".xlsx"
	outPath, err := ws.ChildPath(filename)
	if err != nil {
		return nil, err
	}
	if err := wb.SaveAs(outPath); err != nil {
		return nil, libFailure("write spreadsheet", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}

	return &Output{
		Path:      outPath,
		MediaType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Filename:  filename,
	}, nil
}

// Fragments whose baselines sit within this many points share a line.
const lineTolerance = 2.0

// pageLines groups positioned text fragments into lines. The pdf package's
// row helper only tracks Tm placements, so documents positioned with Td or
// TD collapse onto one row; grouping by baseline here handles both. Lines
// run top to bottom, fragments left to right.
func pageLines(texts []pdf.Text) []string {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []string
	var frags []pdf.Text

	flush := func() {
		if len(frags) == 0 {
			return
		}
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })
		var b strings.Builder
		for k, fr := range frags {
			// Consecutive glyphs of a word start within an em of each
			// other; a larger jump is a separate placement and gets a
			// space.
			if k > 0 {
				size := fr.FontSize
				if size <= 0 {
					size = 12
				}
				if fr.X-frags[k-1].X > 1.5*size {
					b.WriteByte(' ')
				}
			}
			b.WriteString(fr.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
		frags = frags[:0]
	}

	baseline := sorted[0].Y
	for _, fr := range sorted {
		if baseline-fr.Y > lineTolerance {
			flush()
			baseline = fr.Y
		}
		frags = append(frags, fr)
	}
	flush()

	return lines
}
