package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moyu-x/file-organiser/internal"
)

func openJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "journal.db")

	j, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j, dbPath
}

func TestOpen(t *testing.T) {
	j, dbPath := openJournal(t)

	if j.db == nil {
		t.Error("Expected database connection")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Expected database file to be created")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/x/journal.db", filepath.Join(home, "x", "journal.db")},
		{"~", home},
		{"/abs/journal.db", "/abs/journal.db"},
		{"~other/journal.db", "~other/journal.db"},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJournal_RecordAndEntries(t *testing.T) {
	j, _ := openJournal(t)

	entries := []internal.JournalEntry{
		{RunID: "run-1", Action: internal.ActionCategorise, Source: "/src/a.txt", Destination: "/dest/Categorised/a.txt", Digest: "d1"},
		{RunID: "run-1", Action: internal.ActionDelete, Source: "/src/b.txt", Destination: "/dest/To Be Deleted/b.txt", Digest: "d2"},
		{RunID: "run-1", Action: internal.ActionFailed, Source: "/src/c.txt", Error: "permission denied"},
		{RunID: "run-2", Action: internal.ActionMerge, Source: "/s/x", Destination: "/d/x"},
	}
	for _, e := range entries {
		if err := j.Record(e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := j.Entries("run-1")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	for i, e := range got {
		if e.Source != entries[i].Source || e.Action != entries[i].Action {
			t.Errorf("Entry %d = %+v, want %+v", i, e, entries[i])
		}
		if e.CreatedAt.IsZero() {
			t.Errorf("Entry %d missing timestamp", i)
		}
	}
	if got[2].Error != "permission denied" {
		t.Errorf("Expected error message preserved, got %q", got[2].Error)
	}

	counts, err := j.CountByAction("run-1")
	if err != nil {
		t.Fatalf("CountByAction() error = %v", err)
	}
	if counts[internal.ActionCategorise] != 1 || counts[internal.ActionDelete] != 1 || counts[internal.ActionFailed] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestJournal_Runs(t *testing.T) {
	j, _ := openJournal(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		run := internal.RunRecord{
			RunID:         id,
			Kind:          "organise",
			Status:        internal.StatusSuccess,
			Duplicates:    i,
			NonDuplicates: i * 2,
			StartedAt:     base.Add(time.Duration(i) * time.Minute),
			FinishedAt:    base.Add(time.Duration(i)*time.Minute + time.Second),
		}
		if err := j.RecordRun(run); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	runs, err := j.Runs(2)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "new" || runs[1].RunID != "mid" {
		t.Fatalf("Unexpected runs: %+v", runs)
	}
	if runs[0].Duplicates != 2 || runs[0].NonDuplicates != 4 || runs[0].Status != internal.StatusSuccess {
		t.Errorf("Unexpected run contents: %+v", runs[0])
	}

	all, err := j.Runs(0)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 runs, got %d", len(all))
	}

	err = j.RecordRun(internal.RunRecord{RunID: "new", Kind: "organise", Status: internal.StatusError})
	if err == nil || !strings.Contains(err.Error(), "写入运行记录失败") {
		t.Errorf("Expected duplicate run id to be rejected, got %v", err)
	}
}
