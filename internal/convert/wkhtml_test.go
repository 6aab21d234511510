package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHTMLToPDFRequiresSource(t *testing.T) {
	ws := newWorkspace(t)
	conv := &HTMLToPDF{Runner: &fakeRunner{}, Binary: "wkhtmltopdf"}

	_, err := conv.Transform(context.Background(), ws, nil)
	if kind := errorKind(t, err); kind != InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", kind)
	}
}

func TestHTMLToPDFStagesInlineHTML(t *testing.T) {
	ws := newWorkspace(t)

	runner := &fakeRunner{onRun: func(_ string, args []string) {
		_ = os.WriteFile(args[len(args)-1], []byte("%PDF-1.4"), 0o644)
	}}
	conv := &HTMLToPDF{Runner: runner, Binary: "wkhtmltopdf", HTML: "<h1>hello</h1>"}

	out, err := conv.Transform(context.Background(), ws, nil)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out.Filename != "page.pdf" {
		t.Fatalf("expected page.pdf, got %s", out.Filename)
	}

	staged, err := os.ReadFile(filepath.Join(ws.Dir(), "index.html"))
	if err != nil {
		t.Fatalf("read staged html: %v", err)
	}
	if string(staged) != "<h1>hello</h1>" {
		t.Fatalf("unexpected staged html: %q", staged)
	}

	call := runner.calls[0]
	if filepath.Base(call[len(call)-2]) != "index.html" {
		t.Fatalf("expected index.html as source, got %v", call)
	}
	if joined := strings.Join(call, " "); !strings.Contains(joined, "--enable-local-file-access") {
		t.Fatalf("expected local file access flag: %v", call)
	}
}

func TestHTMLToPDFPrefersURL(t *testing.T) {
	ws := newWorkspace(t)

	runner := &fakeRunner{onRun: func(_ string, args []string) {
		_ = os.WriteFile(args[len(args)-1], []byte("%PDF-1.4"), 0o644)
	}}
	conv := &HTMLToPDF{
		Runner: runner,
		Binary: "wkhtmltopdf",
		HTML:   "<h1>ignored</h1>",
		URL:    "https://example.com/invoice",
	}

	if _, err := conv.Transform(context.Background(), ws, nil); err != nil {
		t.Fatalf("transform: %v", err)
	}

	call := runner.calls[0]
	if call[len(call)-2] != "https://example.com/invoice" {
		t.Fatalf("expected url as source, got %v", call)
	}
	if _, err := os.Stat(filepath.Join(ws.Dir(), "index.html")); !os.IsNotExist(err) {
		t.Fatalf("inline html should not be staged when a url is given")
	}
}
