package convert

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

func pagesIn(t *testing.T, path string) int {
	t.Helper()
	n, err := pdfapi.PageCountFile(path)
	if err != nil {
		t.Fatalf("page count of %s: %v", path, err)
	}
	return n
}

func textOfPage(t *testing.T, path string, page int) string {
	t.Helper()
	f, reader, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, fr := range reader.Page(page).Content().Text {
		b.WriteString(fr.S)
	}
	return b.String()
}

func TestMergeKeepsSubmissionOrder(t *testing.T) {
	ws := newWorkspace(t)
	// Named so lexical order disagrees with submission order.
	second := stagePDF(t, ws, "a.pdf", []string{"second"})
	first := stagePDF(t, ws, "b.pdf", []string{"first"})

	out, err := MergePDF{}.Transform(context.Background(), ws, []string{first, second})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if out.Filename != "merged.pdf" {
		t.Fatalf("unexpected filename %s", out.Filename)
	}
	if n := pagesIn(t, out.Path); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
	if got := textOfPage(t, out.Path, 1); !strings.Contains(got, "first") {
		t.Fatalf("page 1 should come from the first upload, got %q", got)
	}
	if got := textOfPage(t, out.Path, 2); !strings.Contains(got, "second") {
		t.Fatalf("page 2 should come from the second upload, got %q", got)
	}
}

func TestSplitKeepsInclusiveRange(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf",
		[]string{"p1"}, []string{"p2"}, []string{"p3"}, []string{"p4"}, []string{"p5"})

	out, err := SplitPDF{From: 2, To: 4}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if out.Filename != "split_2_4.pdf" {
		t.Fatalf("unexpected filename %s", out.Filename)
	}
	if n := pagesIn(t, out.Path); n != 3 {
		t.Fatalf("range 2-4 should keep 3 pages, got %d", n)
	}
}

func TestSplitDefaultsToLastPage(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"p1"}, []string{"p2"}, []string{"p3"})

	out, err := SplitPDF{From: 2, To: 0}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if out.Filename != "split_2_3.pdf" {
		t.Fatalf("unexpected filename %s", out.Filename)
	}
	if n := pagesIn(t, out.Path); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
}

func TestSplitRejectsRangeBeyondDocument(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"p1"}, []string{"p2"}, []string{"p3"})

	_, err := SplitPDF{From: 5, To: 9}.Transform(context.Background(), ws, []string{input})
	if kind := errorKind(t, err); kind != InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", kind)
	}
}

func TestRotateFourQuarterTurns(t *testing.T) {
	ws := newWorkspace(t)
	current := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"})

	for i := 0; i < 4; i++ {
		step := newWorkspace(t)
		out, err := RotatePDF{Degrees: 90}.Transform(context.Background(), step, []string{current})
		if err != nil {
			t.Fatalf("rotation %d: %v", i+1, err)
		}
		if n := pagesIn(t, out.Path); n != 2 {
			t.Fatalf("rotation %d changed page count to %d", i+1, n)
		}
		current = out.Path
	}

	if err := pdfapi.ValidateFile(current, pdfConf()); err != nil {
		t.Fatalf("document invalid after a full turn: %v", err)
	}
}

func TestDeletePagesRemovesSelected(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"}, []string{"three"})

	out, err := DeletePages{Spec: "2"}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := pagesIn(t, out.Path); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
	if got := textOfPage(t, out.Path, 2); !strings.Contains(got, "three") {
		t.Fatalf("page 2 should be the old page 3, got %q", got)
	}
}

func TestDeletePagesIgnoresOutOfRange(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"}, []string{"three"})

	out, err := DeletePages{Spec: "2,99"}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := pagesIn(t, out.Path); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
}

func TestDeletePagesAllOutOfRangeReturnsUnchanged(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"}, []string{"three"})

	out, err := DeletePages{Spec: "7-9"}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	want, _ := os.ReadFile(input)
	got, _ := os.ReadFile(out.Path)
	if !bytes.Equal(want, got) {
		t.Fatal("document should come back byte for byte unchanged")
	}
}

func TestDeletePagesRefusesWholeDocument(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"}, []string{"three"})

	_, err := DeletePages{Spec: "1-3"}.Transform(context.Background(), ws, []string{input})
	if kind := errorKind(t, err); kind != InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", kind)
	}
}

func TestDeletePagesUploadNamedLikeArtifact(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "pages_removed.pdf", []string{"one"}, []string{"two"})
	original, _ := os.ReadFile(input)

	out, err := DeletePages{Spec: "99"}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if out.Path == input {
		t.Fatal("artifact must not share a path with the upload")
	}
	if out.Filename != "pages_removed.pdf" {
		t.Fatalf("served filename changed to %s", out.Filename)
	}
	got, _ := os.ReadFile(out.Path)
	if !bytes.Equal(original, got) {
		t.Fatal("output should match the untouched upload")
	}
	if staged, _ := os.ReadFile(input); !bytes.Equal(original, staged) {
		t.Fatal("upload was truncated by the copy")
	}
}

func TestProtectUnlockRoundTrip(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"})

	protected, err := ProtectPDF{Password: "s3cret"}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("protect: %v", err)
	}
	if protected.Filename != "protected.pdf" {
		t.Fatalf("unexpected filename %s", protected.Filename)
	}

	ws2 := newWorkspace(t)
	unlocked, err := UnlockPDF{Password: "s3cret"}.Transform(context.Background(), ws2, []string{protected.Path})
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if n := pagesIn(t, unlocked.Path); n != 2 {
		t.Fatalf("expected 2 pages after the round trip, got %d", n)
	}
}

func TestUnlockWrongPasswordIsClientFault(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"})

	protected, err := ProtectPDF{Password: "s3cret"}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("protect: %v", err)
	}

	ws2 := newWorkspace(t)
	_, err = UnlockPDF{Password: "nope"}.Transform(context.Background(), ws2, []string{protected.Path})
	if kind := errorKind(t, err); kind != InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", kind)
	}
}

func TestReorderAppliesPermutation(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"}, []string{"three"})

	out, err := ReorderPDF{Spec: "3,1,2"}.Transform(context.Background(), ws, []string{input})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if n := pagesIn(t, out.Path); n != 3 {
		t.Fatalf("expected 3 pages, got %d", n)
	}
	if got := textOfPage(t, out.Path, 1); !strings.Contains(got, "three") {
		t.Fatalf("page 1 should be the old page 3, got %q", got)
	}
	if got := textOfPage(t, out.Path, 3); !strings.Contains(got, "two") {
		t.Fatalf("page 3 should be the old page 2, got %q", got)
	}
}

func TestReorderRejectsPartialList(t *testing.T) {
	ws := newWorkspace(t)
	input := stagePDF(t, ws, "doc.pdf", []string{"one"}, []string{"two"}, []string{"three"})

	_, err := ReorderPDF{Spec: "1,2"}.Transform(context.Background(), ws, []string{input})
	if kind := errorKind(t, err); kind != InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", kind)
	}
}
