package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docforge/internal/convert"
	"docforge/internal/workspace"
)

// buildFunc stages the request's uploads into the workspace and returns the
// transformer to invoke plus the staged input paths, in submission order.
type buildFunc func(ws workspace.Handle) (convert.Transformer, []string, error)

// run is the shared conversion pipeline every endpoint goes through: acquire
// a workspace, stage uploads, invoke the transformer, load the artifact into
// memory, emit it as an attachment. The workspace is released exactly once on
// every exit path, so no staged or produced file outlives the request.
func (a *API) run(c *gin.Context, build buildFunc) {
	ws, err := a.workspaces.Acquire()
	if err != nil {
		log.Printf("workspace acquire failed: %v", err)
		respondMessage(c, http.StatusInternalServerError, "could not allocate workspace")
		return
	}
	defer func() {
		if err := ws.Release(); err != nil {
			log.Printf("workspace release failed: %v", err)
		}
	}()

	transformer, inputs, err := build(ws)
	if err != nil {
		respondConversionError(c, err)
		return
	}

	out, err := transformer.Transform(c.Request.Context(), ws, inputs)
	if err != nil {
		respondConversionError(c, err)
		return
	}

	// The artifact must be fully in memory before the deferred release
	// deletes the workspace.
	data, err := os.ReadFile(out.Path)
	if err != nil || len(data) == 0 {
		log.Printf("artifact read failed for %s: %v", out.Path, err)
		respondMessage(c, http.StatusInternalServerError, "converted file not found")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", out.Filename))
	c.Data(http.StatusOK, out.MediaType, data)
}

func respondConversionError(c *gin.Context, err error) {
	var convErr *convert.Error
	if errors.As(err, &convErr) {
		respondMessage(c, statusFor(convErr.Kind), convErr.Detail)
		return
	}
	// Unclassified failures follow the tool-failure policy: attributed to
	// the input document.
	respondMessage(c, http.StatusBadRequest, err.Error())
}

func statusFor(kind convert.Kind) int {
	switch kind {
	case convert.OutputMissing, convert.ToolUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// stageUpload copies one uploaded file into the workspace under a sanitized
// version of its original name.
func stageUpload(c *gin.Context, ws workspace.Handle, field string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", &convert.Error{Kind: convert.InvalidInput, Detail: fmt.Sprintf("missing %s upload", field)}
	}
	return stageFileHeader(ws, fileHeader, 0)
}

// stageUploads copies every file submitted under field, preserving submission
// order. Duplicate filenames are disambiguated by index so no staged file
// overwrites another.
func stageUploads(c *gin.Context, ws workspace.Handle, field string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, &convert.Error{Kind: convert.InvalidInput, Detail: "invalid multipart form"}
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, &convert.Error{Kind: convert.InvalidInput, Detail: fmt.Sprintf("missing %s upload", field)}
	}

	paths := make([]string, 0, len(headers))
	for i, fh := range headers {
		path, err := stageFileHeader(ws, fh, i)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func stageFileHeader(ws workspace.Handle, fh *multipart.FileHeader, index int) (string, error) {
	name, err := workspace.SanitizeName(fh.Filename)
	if err != nil {
		return "", &convert.Error{Kind: convert.InvalidInput, Detail: fmt.Sprintf("invalid filename %q", fh.Filename), Err: err}
	}

	path, err := ws.ChildPath(name)
	if err != nil {
		return "", &convert.Error{Kind: convert.InvalidInput, Detail: fmt.Sprintf("invalid filename %q", fh.Filename), Err: err}
	}
	if _, statErr := os.Stat(path); statErr == nil {
		path, err = ws.ChildPath(fmt.Sprintf("%d_%s", index, name))
		if err != nil {
			return "", &convert.Error{Kind: convert.InvalidInput, Detail: fmt.Sprintf("invalid filename %q", fh.Filename), Err: err}
		}
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return path, nil
}

// Lenient form helpers: absent or malformed values fall back to the default,
// matching the original endpoints' tolerant parameter handling.

func formInt(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.PostForm(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func formFloat(c *gin.Context, key string, fallback float64) float64 {
	value := strings.TrimSpace(c.PostForm(key))
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}
