package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf/v2"

	"docforge/internal/workspace"
)

// fakeRunner stands in for external binaries. onRun can drop files into the
// workspace the way the real tool would.
type fakeRunner struct {
	out   []byte
	err   error
	calls [][]string
	onRun func(name string, args []string)
}

func (r *fakeRunner) RunCombined(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.onRun != nil {
		r.onRun(name, args)
	}
	return r.out, r.err
}

func newWorkspace(t *testing.T) workspace.Handle {
	t.Helper()
	m, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	ws, err := m.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	t.Cleanup(func() { _ = ws.Release() })
	return ws
}

func stageFile(t *testing.T, ws workspace.Handle, name string, data []byte) string {
	t.Helper()
	path, err := ws.ChildPath(name)
	if err != nil {
		t.Fatalf("child path: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// buildPDF writes a fixture document with the given lines of text per page.
func buildPDF(t *testing.T, path string, pages ...[]string) {
	t.Helper()
	doc := gofpdf.New("P", "pt", "A4", "")
	for _, lines := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 12)
		y := 100.0
		for _, line := range lines {
			doc.Text(72, y, line)
			y += 40
		}
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("build fixture pdf: %v", err)
	}
}

func stagePDF(t *testing.T, ws workspace.Handle, name string, pages ...[]string) string {
	t.Helper()
	path, err := ws.ChildPath(name)
	if err != nil {
		t.Fatalf("child path: %v", err)
	}
	buildPDF(t, path, pages...)
	return path
}

func errorKind(t *testing.T, err error) Kind {
	t.Helper()
	var convErr *Error
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *convert.Error, got %T: %v", err, err)
	}
	return convErr.Kind
}

func TestEnsureProduced(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.pdf")
	if kind := errorKind(t, ensureProduced(missing)); kind != OutputMissing {
		t.Fatalf("expected OutputMissing for absent file, got %v", kind)
	}

	empty := filepath.Join(dir, "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if kind := errorKind(t, ensureProduced(empty)); kind != OutputMissing {
		t.Fatalf("expected OutputMissing for empty file, got %v", kind)
	}

	ok := filepath.Join(dir, "ok.pdf")
	if err := os.WriteFile(ok, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ensureProduced(ok); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
