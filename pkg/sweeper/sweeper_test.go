package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/pkg/mover"
)

func setup(t *testing.T, dirs []string, files map[string]string) (afero.Fs, string) {
	t.Helper()
	root := t.TempDir()
	fs := afero.NewOsFs()

	for _, d := range dirs {
		if err := fs.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", d, err)
		}
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", name, err)
		}
	}
	return fs, root
}

func TestIsTransitivelyEmpty(t *testing.T) {
	fs, root := setup(t,
		[]string{"empty", "nested/a/b", "hidden"},
		map[string]string{
			"hidden/.DS_Store":  "x",
			"full/sub/file.txt": "data",
		})

	s := New(fs, mover.New(fs), filepath.Join(root, "holding"))

	tests := []struct {
		dir  string
		want bool
	}{
		{"empty", true},
		{"nested", true},
		{"hidden", true},
		{"full", false},
		{"full/sub", false},
		{"missing", false},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			if got := s.IsTransitivelyEmpty(filepath.Join(root, tt.dir)); got != tt.want {
				t.Errorf("IsTransitivelyEmpty(%s) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestSweep_Fixpoint(t *testing.T) {
	fs, root := setup(t,
		[]string{"src/a/b/c", "src/d", "src/keep/empty"},
		map[string]string{
			"src/keep/file.txt":     "data",
			"src/d/.hidden":         "x",
			"src/keep/deep/x/y.txt": "y",
		})

	src := filepath.Join(root, "src")
	holding := filepath.Join(root, "dest", "To Be Deleted", "empty folders")
	s := New(fs, mover.New(fs), holding)

	if _, err := s.Sweep(context.Background(), []string{src}); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	for _, gone := range []string{"src/a", "src/d", "src/keep/empty"} {
		if ok, _ := afero.Exists(fs, filepath.Join(root, gone)); ok {
			t.Errorf("Expected %s to be swept", gone)
		}
	}
	for _, kept := range []string{"src", "src/keep/file.txt", "src/keep/deep/x/y.txt"} {
		if ok, _ := afero.Exists(fs, filepath.Join(root, kept)); !ok {
			t.Errorf("Expected %s to remain", kept)
		}
	}
	if ok, _ := afero.Exists(fs, filepath.Join(holding, "d", ".hidden")); !ok {
		t.Error("Expected hidden file to travel with its directory")
	}

	// 再次运行不应再移动任何目录
	moved, err := s.Sweep(context.Background(), []string{src})
	if err != nil {
		t.Fatalf("Second sweep failed: %v", err)
	}
	if moved != 0 {
		t.Errorf("Expected fixpoint, second sweep moved %d", moved)
	}

	err = afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() || path == src {
			return err
		}
		if s.IsTransitivelyEmpty(path) {
			t.Errorf("Transitively empty directory left behind: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
}

func TestSweep_SkipsHoldingTree(t *testing.T) {
	fs, root := setup(t,
		[]string{"dest/Categorised", "dest/To Be Deleted/empty folders/old", "dest/stale"},
		nil)

	dest := filepath.Join(root, "dest")
	holding := filepath.Join(dest, "To Be Deleted", "empty folders")
	s := New(fs, mover.New(fs), holding)

	if _, err := s.Sweep(context.Background(), []string{dest}); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if ok, _ := afero.DirExists(fs, filepath.Join(holding, "old")); !ok {
		t.Error("Expected holding contents to be left alone")
	}
	if ok, _ := afero.DirExists(fs, filepath.Join(holding, "stale")); !ok {
		t.Error("Expected stale directory in holding")
	}
	if ok, _ := afero.DirExists(fs, filepath.Join(dest, "To Be Deleted")); !ok {
		t.Error("Expected ancestor of holding to remain")
	}
}

func TestSweep_Cancelled(t *testing.T) {
	fs, root := setup(t, []string{"src/a"}, nil)
	s := New(fs, mover.New(fs), filepath.Join(root, "holding"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Sweep(ctx, []string{filepath.Join(root, "src")}); err == nil {
		t.Error("Expected cancellation error")
	}
	if ok, _ := afero.DirExists(fs, filepath.Join(root, "src", "a")); !ok {
		t.Error("Expected nothing to move after cancellation")
	}
}
