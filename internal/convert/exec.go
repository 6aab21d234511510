package convert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Runner executes external conversion tools. The indirection lets tests
// substitute a double instead of spawning real processes.
type Runner interface {
	RunCombined(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

// NewRunner returns the production Runner backed by os/exec. Commands run
// under the request context, so a client disconnect kills the subprocess.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) RunCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

const diagnosticLimit = 500

// truncateDiagnostic keeps the leading part of tool output for error details.
func truncateDiagnostic(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > diagnosticLimit {
		s = s[:diagnosticLimit]
	}
	return s
}

// classifyRunError maps a failed tool invocation onto the error taxonomy: a
// binary missing from PATH is an environment fault, everything else is
// surfaced as a tool failure with truncated diagnostics.
func classifyRunError(tool string, out []byte, err error) *Error {
	if errors.Is(err, exec.ErrNotFound) {
		return &Error{Kind: ToolUnavailable, Detail: fmt.Sprintf("%s is not installed", tool), Err: err}
	}
	detail := truncateDiagnostic(out)
	if detail == "" {
		detail = err.Error()
	}
	return &Error{Kind: ToolFailure, Detail: fmt.Sprintf("%s failed: %s", tool, detail), Err: err}
}

// ProbeTools checks at startup that the external binaries are reachable, so a
// broken environment shows up in the logs instead of only per request.
func ProbeTools(bins ...string) {
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err != nil {
			log.Printf("warning: %s not found in PATH, conversions depending on it will fail", bin)
		}
	}
}
