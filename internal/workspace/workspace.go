package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Handle is an isolated scratch directory owned by exactly one request. All
// staged uploads and produced artifacts live inside it, and Release removes
// everything once the response has been written.
type Handle interface {
	Dir() string
	ChildPath(name string) (string, error)
	Release() error
}

// Allocator hands out fresh workspaces. It exists as an interface so tests
// can count acquire/release pairs with a double.
type Allocator interface {
	Acquire() (Handle, error)
}

type Manager struct {
	baseDir string
}

func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace base %s: %w", baseDir, err)
	}
	return &Manager{baseDir: baseDir}, nil
}

func (m *Manager) Acquire() (Handle, error) {
	dir := filepath.Join(m.baseDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &dirHandle{dir: dir}, nil
}

type dirHandle struct {
	dir string
}

func (h *dirHandle) Dir() string {
	return h.dir
}

func (h *dirHandle) ChildPath(name string) (string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(h.dir, clean), nil
}

func (h *dirHandle) Release() error {
	return os.RemoveAll(h.dir)
}

// SanitizeName reduces an untrusted filename to a bare name usable as a
// workspace child. Uploaded filenames are attacker-controlled, so directory
// components and traversal sequences must never reach the filesystem.
func SanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", name)
	}
	if strings.Contains(base, "..") {
		return "", fmt.Errorf("invalid filename %q", name)
	}
	return base, nil
}
