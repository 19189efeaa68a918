package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
)

func writeFile(t *testing.T, fs afero.Fs, path string, content []byte) internal.FileHandle {
	t.Helper()
	if err := afero.WriteFile(fs, path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat test file: %v", err)
	}
	return internal.FileHandle{Path: path, Size: info.Size(), ModTime: info.ModTime()}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		want Algorithm
		ok   bool
	}{
		{"xxhash", XXHash, true},
		{"XXHASH", XXHash, true},
		{"md5", MD5, true},
		{" sha256 ", SHA256, true},
		{"blake3", SHA256, false},
		{"", SHA256, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAlgorithm(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseAlgorithm(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHash_Consistent(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := writeFile(t, fs, "/test.txt", []byte("test content for hashing"))

	for _, algo := range []string{"xxhash", "md5", "sha256"} {
		t.Run(algo, func(t *testing.T) {
			h := New(fs, algo, 0)

			first := h.Hash(file)
			if !first.OK() {
				t.Fatalf("Hash() unexpected result: %+v", first)
			}

			second := h.Hash(file)
			if first.Digest != second.Digest {
				t.Error("Hash should be consistent for same file")
			}
		})
	}
}

func TestHash_SHA256MatchesStdlib(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := []byte(strings.Repeat("chunked content ", 2000))
	file := writeFile(t, fs, "/big.txt", content)

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])

	got := New(fs, "sha256", 0).Hash(file)
	if got.Digest != want {
		t.Errorf("Expected %s, got %s", want, got.Digest)
	}
}

func TestHash_DifferentContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	file1 := writeFile(t, fs, "/file1.txt", []byte("content1"))
	file2 := writeFile(t, fs, "/file2.txt", []byte("content2"))

	h := New(fs, "xxhash", 0)
	if h.Hash(file1).Digest == h.Hash(file2).Digest {
		t.Error("Different content should produce different hashes")
	}
}

func TestHash_EmptyFilesShareDigest(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := writeFile(t, fs, "/a", nil)
	b := writeFile(t, fs, "/b", nil)

	h := New(fs, "md5", 0)
	ra, rb := h.Hash(a), h.Hash(b)
	if !ra.OK() || !rb.OK() {
		t.Fatalf("Expected empty files to hash, got %+v %+v", ra, rb)
	}
	if ra.Digest != rb.Digest {
		t.Error("Empty files should produce identical digests")
	}
}

func TestHash_SkipLargeFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := writeFile(t, fs, "/large.bin", make([]byte, 2000))

	r := New(fs, "sha256", 1000).Hash(file)
	if !r.Skipped {
		t.Fatal("Expected file to be skipped")
	}
	if r.Err != nil {
		t.Errorf("Skip must not be an error, got %v", r.Err)
	}
	if r.Reason != "too large" {
		t.Errorf("Expected reason 'too large', got %q", r.Reason)
	}
	if r.Digest != "" {
		t.Error("Skipped file should have no digest")
	}
}

func TestHash_SizeAtLimitIsHashed(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := writeFile(t, fs, "/exact.bin", make([]byte, 1000))

	r := New(fs, "sha256", 1000).Hash(file)
	if !r.OK() {
		t.Errorf("Expected file at the limit to be hashed, got %+v", r)
	}
}

func TestHash_UnknownAlgorithmFallsBack(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := writeFile(t, fs, "/x", []byte("x"))

	h := New(fs, "crc32", 0)
	if h.Algorithm() != SHA256 {
		t.Errorf("Expected fallback to sha256, got %s", h.Algorithm())
	}
	if r := h.Hash(file); !r.OK() {
		t.Errorf("Fallback algorithm should still hash, got %+v", r)
	}
}

func TestHash_NonExistentFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := New(fs, "sha256", 0).Hash(internal.FileHandle{Path: "/non/existent/file.txt"})

	var hashErr *internal.HashError
	if !errors.As(r.Err, &hashErr) {
		t.Fatalf("Expected HashError, got %v", r.Err)
	}
	if hashErr.Path != "/non/existent/file.txt" {
		t.Errorf("Expected path in error, got %s", hashErr.Path)
	}
	if !errors.Is(r.Err, os.ErrNotExist) {
		t.Errorf("Expected wrapped not-exist error, got %v", r.Err)
	}
}
