// Package workspace confines files written by the browser tools to an
// output directory and any extra directories the operator allows.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideWorkspace is returned for paths that escape every allowed directory.
var ErrOutsideWorkspace = errors.New("path is outside the output workspace")

// Guard resolves artifact paths and rejects the ones that escape the
// workspace. Symlinks are followed before comparing.
type Guard struct {
	root    string
	allowed []string
}

// NewGuard creates a guard rooted at root. The root is created if missing.
func NewGuard(root string, extraDirs ...string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	abs, err := filepath.Abs(expandHome(root))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	g := &Guard{root: resolveSymlinks(abs)}
	g.allowed = append(g.allowed, g.root)

	for _, dir := range extraDirs {
		if err := g.Allow(dir); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Allow adds a directory outside the root that artifacts may be written to.
func (g *Guard) Allow(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("allowed directory cannot be empty")
	}

	abs, err := filepath.Abs(expandHome(dir))
	if err != nil {
		return fmt.Errorf("failed to resolve allowed directory %s: %w", dir, err)
	}

	resolved := resolveSymlinks(abs)
	for _, existing := range g.allowed {
		if existing == resolved {
			return nil
		}
	}
	g.allowed = append(g.allowed, resolved)
	return nil
}

// Root returns the absolute workspace directory.
func (g *Guard) Root() string {
	return g.root
}

// Allowed returns a copy of every directory artifacts may be written to,
// the root first.
func (g *Guard) Allowed() []string {
	dirs := make([]string, len(g.allowed))
	copy(dirs, g.allowed)
	return dirs
}

// Resolve turns path into an absolute path, relative paths being taken from
// the root, and fails with ErrOutsideWorkspace when it escapes.
func (g *Guard) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	path = expandHome(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	path = filepath.Clean(path)

	if !g.Contains(path) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkspace, path)
	}
	return path, nil
}

// Contains reports whether an absolute path lies within an allowed directory.
func (g *Guard) Contains(absPath string) bool {
	resolved := resolveSymlinks(filepath.Clean(absPath))
	for _, dir := range g.allowed {
		prefix := dir
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if resolved == dir || strings.HasPrefix(resolved, prefix) {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// resolveSymlinks evaluates symlinks in the longest existing prefix of path
// and re-attaches the missing tail, so files that do not exist yet compare
// the same way as their parent directory.
func resolveSymlinks(path string) string {
	var tail []string
	current := path

	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved
		}

		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Clean(path)
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}
