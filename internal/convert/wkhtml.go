package convert

import (
	"context"
	"os"

	"docforge/internal/workspace"
)

// HTMLToPDF renders inline HTML or a fetched URL through wkhtmltopdf. Exactly
// one source is used; when both are supplied the URL wins.
type HTMLToPDF struct {
	Runner Runner
	Binary string
	HTML   string
	URL    string
}

func (t *HTMLToPDF) Transform(ctx context.Context, ws workspace.Handle, _ []string) (*Output, error) {
	if t.HTML == "" && t.URL == "" {
		return nil, failf(InvalidInput, "provide html or url")
	}

	outPath, err := ws.ChildPath("page.pdf")
	if err != nil {
		return nil, err
	}

	source := t.URL
	if source == "" {
		htmlPath, err := ws.ChildPath("index.html")
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(htmlPath, []byte(t.HTML), 0o644); err != nil {
			return nil, libFailure("stage html", err)
		}
		source = htmlPath
	}

	args := []string{
		"--enable-local-file-access",
		"--encoding", "utf-8",
		"--quiet",
		"--custom-header", "User-Agent", "Mozilla/5.0 docforge",
		source,
		outPath,
	}

	out, err := t.Runner.RunCombined(ctx, t.Binary, args...)
	if err != nil {
		return nil, classifyRunError(t.Binary, out, err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}

	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "page.pdf"}, nil
}
