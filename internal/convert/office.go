package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docforge/internal/domain"
	"docforge/internal/workspace"
)

// SofficeConvert converts between office formats and PDF with a headless
// LibreOffice run. One instance per direction: word-to-pdf, ppt-to-pdf,
// excel-to-pdf and, with the PDF import filter, pdf-to-word.
type SofficeConvert struct {
	Runner   Runner
	Binary   string
	Target   string // --convert-to value, e.g. "pdf:writer_pdf_Export"
	Ext      string // produced extension without dot
	InFilter string // optional --infilter value
}

func (t *SofficeConvert) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]

	// A private profile dir keeps concurrent soffice runs from fighting
	// over the user installation lock.
	profileDir, err := ws.ChildPath("soffice-profile")
	if err != nil {
		return nil, err
	}

	args := []string{
		"-env:UserInstallation=file://" + profileDir,
		"--headless",
	}
	if t.InFilter != "" {
		args = append(args, "--infilter="+t.InFilter)
	}
	args = append(args, "--convert-to", t.Target, "--outdir", ws.Dir(), input)

	out, err := t.Runner.RunCombined(ctx, t.Binary, args...)
	if err != nil {
		return nil, classifyRunError(t.Binary, out, err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	produced := filepath.Join(ws.Dir(), stem+"."+t.Ext)
	if _, statErr := os.Stat(produced); statErr != nil {
		produced, err = soleFileWithExt(ws.Dir(), "."+t.Ext, input)
		if err != nil {
			return nil, failf(OutputMissing, "converted file not found: %s", truncateDiagnostic(out))
		}
	}
	if err := ensureProduced(produced); err != nil {
		return nil, err
	}

	return &Output{
		Path:      produced,
		MediaType: domain.MediaTypeFor(t.Ext),
		Filename:  stem + "." + t.Ext,
	}, nil
}

// soleFileWithExt locates the produced artifact when soffice picked an
// unexpected name. Ambiguous multi-file output is an error, not a guess.
func soleFileWithExt(dir, ext, exclude string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return "", err
	}
	candidates := matches[:0]
	for _, m := range matches {
		if m != exclude {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) != 1 {
		return "", fmt.Errorf("expected one %s file in %s, found %d", ext, dir, len(candidates))
	}
	return candidates[0], nil
}
