package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"docforge/internal/config"
	"docforge/internal/workspace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRunner fakes external binaries. onRun can produce the files the real
// tool would leave behind.
type stubRunner struct {
	out   []byte
	err   error
	onRun func(name string, args []string)
}

func (r *stubRunner) RunCombined(_ context.Context, name string, args ...string) ([]byte, error) {
	if r.onRun != nil {
		r.onRun(name, args)
	}
	return r.out, r.err
}

func testConfig() config.Config {
	return config.Config{
		Port:           "8080",
		MaxUploadBytes: 50 << 20,
		WorkDir:        os.TempDir(),
		RenderDPI:      150,
		SofficeBin:     "soffice",
		GhostscriptBin: "gs",
		PdftoppmBin:    "pdftoppm",
		WkhtmltopdfBin: "wkhtmltopdf",
	}
}

func setupTestServer(t *testing.T, runner *stubRunner) *gin.Engine {
	t.Helper()
	m, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	engine := gin.New()
	registerRoutes(engine, NewAPI(testConfig(), m, runner))
	return engine
}

// multipartBody builds a form with the given files (field, filename, content
// triples in order) and plain fields.
func multipartBody(t *testing.T, files [][3]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f[0], f[1])
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := part.Write([]byte(f[2])); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return body, mw.FormDataContentType()
}

func postForm(t *testing.T, engine *gin.Engine, path string, files [][3]string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return payload["error"]
}

func TestListCapabilities(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var caps []map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &caps); err != nil {
		t.Fatalf("decode capabilities: %v", err)
	}
	if len(caps) != 20 {
		t.Fatalf("expected 20 capabilities, got %d", len(caps))
	}
	for _, entry := range caps {
		for _, key := range []string{"name", "from_type", "to_type", "endpoint"} {
			if entry[key] == "" {
				t.Fatalf("capability missing %s: %v", key, entry)
			}
		}
	}
}

func TestHealth(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMissingUploadRejected(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/convert/word-to-pdf", nil, map[string]string{"noise": "1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := errorBody(t, w); msg != "missing file upload" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestProtectRequiresPassword(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/pdf/protect", [][3]string{{"file", "doc.pdf", "%PDF-1.4"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := errorBody(t, w); msg != "password is required" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestUnlockRequiresPassword(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/pdf/unlock", [][3]string{{"file", "doc.pdf", "%PDF-1.4"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeletePagesRequiresSpec(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/pdf/delete-pages", [][3]string{{"file", "doc.pdf", "%PDF-1.4"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := errorBody(t, w); msg != "pages is required" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestReorderRequiresSpec(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/pdf/reorder", [][3]string{{"file", "doc.pdf", "%PDF-1.4"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestMergeNeedsAtLeastTwoFiles(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/pdf/merge", [][3]string{{"files", "one.pdf", "%PDF-1.4"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := errorBody(t, w); msg != "at least 2 files are required for merge" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestHTMLToPDFRequiresSource(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/convert/html-to-pdf", nil, map[string]string{"other": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := errorBody(t, w); msg != "provide html or url" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestTraversalFilenameRejected(t *testing.T) {
	engine := setupTestServer(t, &stubRunner{})

	w := postForm(t, engine, "/convert/word-to-pdf", [][3]string{{"file", "..", "data"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
