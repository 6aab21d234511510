package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docforge/internal/pages"
	"docforge/internal/workspace"
)

func pdfConf() *model.Configuration {
	return model.NewDefaultConfiguration()
}

func pageCount(input string) (int, error) {
	total, err := pdfapi.PageCountFile(input)
	if err != nil {
		return 0, libFailure("read pdf", err)
	}
	return total, nil
}

// MergePDF concatenates the staged inputs into one document, strictly in
// submission order.
type MergePDF struct{}

func (MergePDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	outPath, err := artifactPath(ws, "merged.pdf")
	if err != nil {
		return nil, err
	}
	if err := pdfapi.MergeCreateFile(inputs, outPath, false, pdfConf()); err != nil {
		return nil, libFailure("merge", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "merged.pdf"}, nil
}

// SplitPDF keeps the 1-based inclusive page range [From, To]. To of zero
// means through the last page; an out-of-range To is clamped to it.
type SplitPDF struct {
	From int
	To   int
}

func (t SplitPDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]
	total, err := pageCount(input)
	if err != nil {
		return nil, err
	}

	from, to := t.From, t.To
	if from < 1 {
		from = 1
	}
	if to == 0 || to > total {
		to = total
	}
	if from > to || from > total {
		return nil, failf(InvalidInput, "page range %d-%d is outside a document with %d pages", t.From, t.To, total)
	}

	filename := fmt.Sprintf("split_%d_%d.pdf", from, to)
	outPath, err := artifactPath(ws, filename)
	if err != nil {
		return nil, err
	}
	if err := pdfapi.TrimFile(input, outPath, []string{fmt.Sprintf("%d-%d", from, to)}, pdfConf()); err != nil {
		return nil, libFailure("split", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: filename}, nil
}

// RotatePDF rotates every page by the given angle in degrees.
type RotatePDF struct {
	Degrees int
}

func (t RotatePDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	filename := fmt.Sprintf("rotated_%d.pdf", t.Degrees)
	outPath, err := artifactPath(ws, filename)
	if err != nil {
		return nil, err
	}
	if err := pdfapi.RotateFile(inputs[0], outPath, t.Degrees, nil, pdfConf()); err != nil {
		return nil, libFailure("rotate", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: filename}, nil
}

// ProtectPDF encrypts the document with the supplied password.
type ProtectPDF struct {
	Password string
}

func (t ProtectPDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	if t.Password == "" {
		return nil, failf(InvalidInput, "password is required")
	}
	outPath, err := artifactPath(ws, "protected.pdf")
	if err != nil {
		return nil, err
	}
	conf := pdfConf()
	conf.UserPW = t.Password
	conf.OwnerPW = t.Password
	if err := pdfapi.EncryptFile(inputs[0], outPath, conf); err != nil {
		return nil, libFailure("protect", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "protected.pdf"}, nil
}

// UnlockPDF removes encryption given the current password.
type UnlockPDF struct {
	Password string
}

func (t UnlockPDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	if t.Password == "" {
		return nil, failf(InvalidInput, "password is required")
	}
	outPath, err := artifactPath(ws, "unlocked.pdf")
	if err != nil {
		return nil, err
	}
	conf := pdfConf()
	conf.UserPW = t.Password
	conf.OwnerPW = t.Password
	if err := pdfapi.DecryptFile(inputs[0], outPath, conf); err != nil {
		return nil, &Error{
			Kind:   InvalidInput,
			Detail: "unlock failed, check the password: " + truncateDiagnostic([]byte(err.Error())),
			Err:    err,
		}
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "unlocked.pdf"}, nil
}

// DeletePages removes the pages selected by a lenient page spec. Indices
// outside the document are ignored; deleting every page is rejected.
type DeletePages struct {
	Spec string
}

func (t DeletePages) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]
	total, err := pageCount(input)
	if err != nil {
		return nil, err
	}

	selected, err := pages.ParseSet(t.Spec, total)
	if err != nil {
		return nil, &Error{Kind: InvalidInput, Detail: err.Error(), Err: err}
	}
	if len(selected) == total {
		return nil, failf(InvalidInput, "cannot delete every page of the document")
	}

	outPath, err := artifactPath(ws, "pages_removed.pdf")
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		// Every requested index was out of range; the document is
		// returned unchanged.
		if err := copyFile(input, outPath); err != nil {
			return nil, libFailure("copy pdf", err)
		}
	} else {
		sel := make([]string, len(selected))
		for i, p := range selected {
			sel[i] = strconv.Itoa(p)
		}
		if err := pdfapi.RemovePagesFile(input, outPath, sel, pdfConf()); err != nil {
			return nil, libFailure("delete pages", err)
		}
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "pages_removed.pdf"}, nil
}

// ReorderPDF rewrites the document with its pages in the order given by a
// strict permutation spec.
type ReorderPDF struct {
	Spec string
}

func (t ReorderPDF) Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error) {
	input := inputs[0]
	total, err := pageCount(input)
	if err != nil {
		return nil, err
	}

	order, err := pages.ParseOrder(t.Spec, total)
	if err != nil {
		return nil, &Error{Kind: InvalidInput, Detail: err.Error(), Err: err}
	}

	sel := make([]string, len(order))
	for i, p := range order {
		sel[i] = strconv.Itoa(p)
	}

	outPath, err := artifactPath(ws, "reordered.pdf")
	if err != nil {
		return nil, err
	}
	if err := pdfapi.CollectFile(input, outPath, sel, pdfConf()); err != nil {
		return nil, libFailure("reorder", err)
	}
	if err := ensureProduced(outPath); err != nil {
		return nil, err
	}
	return &Output{Path: outPath, MediaType: "application/pdf", Filename: "reordered.pdf"}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
