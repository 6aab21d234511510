// Package convert implements the conversion operations. Each operation is a
// Transformer: staged input files and parameters in, one output artifact or a
// classified failure out. External tools and in-process libraries are wrapped
// behind the same contract.
package convert

import (
	"context"
	"fmt"
	"os"

	"docforge/internal/workspace"
)

// Kind classifies a conversion failure for response mapping.
type Kind int

const (
	// InvalidInput covers missing or malformed request parameters.
	InvalidInput Kind = iota
	// ToolFailure covers external tools exiting non-zero and in-process
	// library errors during manipulation.
	ToolFailure
	// OutputMissing means the tool reported success but the expected
	// artifact is absent, empty, or ambiguous.
	OutputMissing
	// ToolUnavailable means a required external binary is not installed.
	ToolUnavailable
)

// Output is a produced artifact. The file at Path lives inside the request
// workspace and must be read fully before the workspace is released.
type Output struct {
	Path      string
	MediaType string
	Filename  string
}

// Transformer is one conversion operation.
type Transformer interface {
	Transform(ctx context.Context, ws workspace.Handle, inputs []string) (*Output, error)
}

// Error is a classified conversion failure. Detail is safe to surface to the
// client; the diagnostic part of tool output is truncated before it gets here.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// libFailure wraps an in-process library error the same way external tool
// failures are wrapped: classified as client-attributable, detail truncated.
func libFailure(op string, err error) *Error {
	return &Error{
		Kind:   ToolFailure,
		Detail: fmt.Sprintf("%s failed: %s", op, truncateDiagnostic([]byte(err.Error()))),
		Err:    err,
	}
}

// artifactPath reserves a workspace path for a produced file. When a staged
// upload already occupies the requested name, the artifact steps aside to a
// prefixed sibling so the source is never truncated mid-operation. Only the
// on-disk location moves; the served filename stays the caller's.
func artifactPath(ws workspace.Handle, name string) (string, error) {
	for {
		path, err := ws.ChildPath(name)
		if err != nil {
			return "", err
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return path, nil
		}
		name = "out_" + name
	}
}

// ensureProduced treats a missing or zero-length artifact as a failure
// regardless of what the producing step reported.
func ensureProduced(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return failf(OutputMissing, "converted file not found")
	}
	if info.Size() == 0 {
		return failf(OutputMissing, "converted file is empty")
	}
	return nil
}
