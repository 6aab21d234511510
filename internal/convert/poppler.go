package convert

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"docforge/internal/workspace"
)

// PDFToJPEG renders every page of a PDF to a JPEG with pdftoppm and packs
// the pages into a zip archive.
type PDFToJPEG struct {
	Runner Runner
	Binary string
	DPI    int
}

func (t *PDFToJPEG) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	prefix, err := ws.ChildPath("page")
	if err != nil {
		return nil, err
	}

	out, err := rasterizePDF(ctx, t.Runner, t.Binary, "-jpeg", t.DPI, input, prefix)
	if err != nil {
		return nil, classifyRunError(t.Binary, out, err)
	}

	rendered, err := renderedPages(ws.Dir(), "page-", ".jpg")
	if err != nil {
		return nil, err
	}
	if len(rendered) == 0 {
		return nil, failf(OutputMissing, "no pages rendered: %s", truncateDiagnostic(out))
	}

	zipName := stem + ".zip"
	zipPath, err := ws.ChildPath(zipName)
	if err != nil {
		return nil, err
	}
	if err := zipFiles(zipPath, rendered); err != nil {
		return nil, libFailure("zip pages", err)
	}
	if err := ensureProduced(zipPath); err != nil {
		return nil, err
	}

	return &Output{Path: zipPath, MediaType: "application/zip", Filename: zipName}, nil
}

func rasterizePDF(ctx context.Context, r Runner, binary, formatFlag string, dpi int, input, prefix string) ([]byte, error) {
	args := []string{formatFlag, "-r", strconv.Itoa(dpi), input, prefix}
	return r.RunCombined(ctx, binary, args...)
}

// renderedPages lists prefix-N.ext files sorted by page number. pdftoppm does
// not always zero-pad the page suffix, and a lexical sort would put page 10
// before page 2, so ordering goes by the parsed number.
func renderedPages(dir, prefix, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, libFailure("list rendered pages", err)
	}

	type pageFile struct {
		page int
		path string
	}
	var found []pageFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		page, convErr := strconv.Atoi(num)
		if convErr != nil {
			continue
		}
		found = append(found, pageFile{page: page, path: filepath.Join(dir, name)})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].page < found[j].page })

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}

func zipFiles(zipPath string, files []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, file := range files {
		src, err := os.Open(file)
		if err != nil {
			zw.Close()
			return err
		}
		w, err := zw.Create(filepath.Base(file))
		if err == nil {
			_, err = io.Copy(w, src)
		}
		src.Close()
		if err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return out.Close()
}
