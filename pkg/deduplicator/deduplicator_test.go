package deduplicator

import (
	"testing"
	"time"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/hasher"
)

func fh(path string, size int64) internal.FileHandle {
	return internal.FileHandle{Path: path, Size: size}
}

func TestSplitVariant(t *testing.T) {
	tests := []struct {
		name string
		stem string
		n    int
		ext  string
		ok   bool
	}{
		{"report (1).pdf", "report", 1, ".pdf", true},
		{"my file (12).tar.gz", "my file", 12, ".tar.gz", true},
		{"x (1).tar (2).gz", "x (1).tar", 2, ".gz", true},
		{"notes (3)", "notes", 3, "", true},
		{"a (2) (3).txt", "a (2)", 3, ".txt", true},
		{"report(1).pdf", "", 0, "", false},
		{"report.pdf", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem, n, ext, ok := SplitVariant(tt.name)
			if ok != tt.ok {
				t.Fatalf("SplitVariant(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if !ok {
				return
			}
			if stem != tt.stem || n != tt.n || ext != tt.ext {
				t.Errorf("SplitVariant(%q) = (%q, %d, %q), want (%q, %d, %q)",
					tt.name, stem, n, ext, tt.stem, tt.n, tt.ext)
			}
		})
	}
}

func TestFindNamePairs(t *testing.T) {
	batch := []internal.FileHandle{
		fh("/s/a.txt", 10),
		fh("/s/a (1).txt", 10),
		fh("/s/a (2).txt", 10),
		fh("/s/b.txt", 10),
		fh("/s/b (1).txt", 11),
		fh("/s/other/c (1).txt", 5),
		fh("/s/c.txt", 5),
	}

	groups := FindNamePairs(batch)
	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Keeper.Path != "/s/a.txt" {
		t.Errorf("Expected keeper /s/a.txt, got %s", g.Keeper.Path)
	}
	if len(g.Variants) != 2 || g.Variants[0].Path != "/s/a (1).txt" || g.Variants[1].Path != "/s/a (2).txt" {
		t.Errorf("Unexpected variants: %+v", g.Variants)
	}
}

func TestDetector_ContentPath(t *testing.T) {
	batch := []internal.FileHandle{fh("/s/x.txt", 3), fh("/s/y.txt", 3), fh("/s/z.bin", 3)}
	digests := map[string]string{"/s/x.txt": "d1", "/s/y.txt": "d2"}
	dest := hasher.Index{}
	dest.Add("d1", fh("/dest/old.txt", 3))

	d := NewDetector(batch, digests, dest)

	tests := []struct {
		file    internal.FileHandle
		verdict Verdict
		key     string
	}{
		{batch[0], Known, "d1"},
		{batch[1], Unique, "d2"},
		{batch[2], Unique, UnknownKey},
	}
	for _, tt := range tests {
		decisions := d.Resolve(tt.file)
		if len(decisions) != 1 {
			t.Fatalf("Expected 1 decision for %s, got %d", tt.file.Path, len(decisions))
		}
		if decisions[0].Verdict != tt.verdict || decisions[0].Key != tt.key {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tt.file.Path,
				decisions[0].Verdict, decisions[0].Key, tt.verdict, tt.key)
		}
	}

	if again := d.Resolve(batch[0]); again != nil {
		t.Errorf("Expected nil for already handled file, got %+v", again)
	}
}

func TestDetector_NameGroup(t *testing.T) {
	keeper := fh("/s/photo.jpg", 4)
	v1 := fh("/s/photo (1).jpg", 4)
	v2 := fh("/s/photo (2).jpg", 4)
	batch := []internal.FileHandle{v1, keeper, v2}
	digests := map[string]string{keeper.Path: "k", v1.Path: "k", v2.Path: "k"}

	d := NewDetector(batch, digests, nil)

	decisions := d.Resolve(v1)
	if len(decisions) != 3 {
		t.Fatalf("Expected whole group resolved at once, got %d decisions", len(decisions))
	}
	if decisions[0].Verdict != NameKeeper || decisions[0].File.Path != keeper.Path {
		t.Errorf("Expected keeper first, got %+v", decisions[0])
	}
	for _, dec := range decisions[1:] {
		if dec.Verdict != NameVariant || dec.Key != "k" {
			t.Errorf("Expected variant with key k, got %+v", dec)
		}
	}

	if d.Resolve(keeper) != nil || d.Resolve(v2) != nil {
		t.Error("Expected group members to be handled only once")
	}

	if d.Placed("k") {
		t.Error("Expected key not placed before MarkPlaced")
	}
	d.MarkPlaced("k")
	if !d.Placed("k") {
		t.Error("Expected key placed after MarkPlaced")
	}
}

func TestVerdict_Duplicate(t *testing.T) {
	if Unique.Duplicate() || NameKeeper.Duplicate() {
		t.Error("Unique and NameKeeper must count as non-duplicates")
	}
	if !Known.Duplicate() || !NameVariant.Duplicate() {
		t.Error("Known and NameVariant must count as duplicates")
	}
}

func TestSelectBest(t *testing.T) {
	base := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("newest wins", func(t *testing.T) {
		files := []internal.FileHandle{
			{Path: "/old", Size: 100, ModTime: base},
			{Path: "/new", Size: 1, ModTime: base.Add(time.Hour)},
		}
		best, rest := SelectBest(files)
		if best.Path != "/new" {
			t.Errorf("Expected /new, got %s", best.Path)
		}
		if len(rest) != 1 || rest[0].Path != "/old" {
			t.Errorf("Unexpected rest: %+v", rest)
		}
	})

	t.Run("tie goes to larger", func(t *testing.T) {
		files := []internal.FileHandle{
			{Path: "/small", Size: 1, ModTime: base},
			{Path: "/large", Size: 2, ModTime: base.Add(500 * time.Microsecond)},
		}
		best, _ := SelectBest(files)
		if best.Path != "/large" {
			t.Errorf("Expected /large, got %s", best.Path)
		}
	})

	t.Run("empty", func(t *testing.T) {
		best, rest := SelectBest(nil)
		if best.Path != "" || rest != nil {
			t.Errorf("Expected zero result, got %+v %+v", best, rest)
		}
	})
}
