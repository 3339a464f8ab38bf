package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewGuard(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		root    string
		wantErr bool
	}{
		{name: "existing directory", root: tmpDir},
		{name: "missing directory is created", root: filepath.Join(tmpDir, "artifacts", "today")},
		{name: "empty directory", root: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, err := NewGuard(tt.root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGuard() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !filepath.IsAbs(guard.Root()) {
				t.Errorf("Root() = %q, want absolute path", guard.Root())
			}
			if info, err := os.Stat(guard.Root()); err != nil || !info.IsDir() {
				t.Errorf("root %q was not created: %v", guard.Root(), err)
			}
		})
	}
}

func TestGuard_Resolve(t *testing.T) {
	root := t.TempDir()
	extra := t.TempDir()

	guard, err := NewGuard(root, extra)
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}
	root = guard.Root()
	extra = guard.Allowed()[1]

	tests := []struct {
		name    string
		path    string
		want    string
		outside bool
	}{
		{name: "relative file", path: "shot.png", want: filepath.Join(root, "shot.png")},
		{name: "relative nested file", path: "pdf/page.pdf", want: filepath.Join(root, "pdf", "page.pdf")},
		{name: "absolute inside root", path: filepath.Join(root, "page.html"), want: filepath.Join(root, "page.html")},
		{name: "allowed extra directory", path: filepath.Join(extra, "element.html"), want: filepath.Join(extra, "element.html")},
		{name: "parent traversal", path: "../escape.png", outside: true},
		{name: "absolute outside", path: "/etc/passwd", outside: true},
		{name: "sibling with shared prefix", path: root + "-other/file.png", outside: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := guard.Resolve(tt.path)
			if tt.outside {
				if !errors.Is(err, ErrOutsideWorkspace) {
					t.Fatalf("Resolve(%q) error = %v, want ErrOutsideWorkspace", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	if _, err := guard.Resolve("  "); err == nil {
		t.Error("Resolve() accepted an empty path")
	}
}

func TestGuard_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(root, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	guard, err := NewGuard(root)
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}

	if _, err := guard.Resolve("link/shot.png"); !errors.Is(err, ErrOutsideWorkspace) {
		t.Errorf("Resolve() through symlink error = %v, want ErrOutsideWorkspace", err)
	}
}

func TestGuard_Allow(t *testing.T) {
	guard, err := NewGuard(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}

	extra := t.TempDir()
	if err := guard.Allow(extra); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if err := guard.Allow(extra); err != nil {
		t.Fatalf("Allow() second call error = %v", err)
	}
	if got := len(guard.Allowed()); got != 2 {
		t.Errorf("len(Allowed()) = %d, want 2 (duplicates ignored)", got)
	}
	if err := guard.Allow(""); err == nil {
		t.Error("Allow(\"\") should fail")
	}
}

func TestGuard_FilesystemRoot(t *testing.T) {
	guard, err := NewGuard("/")
	if err != nil {
		t.Fatalf("NewGuard(\"/\") error = %v", err)
	}

	for _, path := range []string{"/", "/tmp/shot.png", "/var/lib/page.pdf"} {
		if !guard.Contains(path) {
			t.Errorf("Contains(%q) = false under a / root", path)
		}
	}

	got, err := guard.Resolve("captures/shot.png")
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if got != "/captures/shot.png" {
		t.Errorf("Resolve() = %q, want /captures/shot.png", got)
	}
}
