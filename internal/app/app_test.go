package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/moyu-x/file-organiser/config"
	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/internal/database"
	"github.com/moyu-x/file-organiser/pkg/organiser"
)

func testEnv(t *testing.T) (*Env, string) {
	t.Helper()
	return &Env{Config: &config.Config{}, FS: afero.NewOsFs()}, t.TempDir()
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestSetup(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	journalPath := filepath.Join(dir, "journal.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	write(t, cfgPath, "journal:\n  enabled: true\n  path: "+journalPath+"\nlogging:\n  level: warn\n")

	env, err := Setup(SetupOptions{ConfigFile: cfgPath, Quiet: true, LogLevel: "error"})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer env.Close()

	if env.Journal == nil {
		t.Fatal("Expected journal to be opened")
	}
	if env.journal() == nil {
		t.Error("Expected journal interface value")
	}
	if _, err := os.Stat(journalPath); err != nil {
		t.Errorf("Expected journal file: %v", err)
	}
}

func TestEnv_JournalNil(t *testing.T) {
	env, _ := testEnv(t)
	if env.journal() != nil {
		t.Error("Expected nil interface when journal is disabled")
	}
	env.Close()
}

func TestRunOrganise(t *testing.T) {
	env, root := testEnv(t)
	env.Config.Organise.HashAlgorithm = "xxhash"
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "dest")
	write(t, filepath.Join(src, "notes.txt"), "hello")
	write(t, filepath.Join(src, "notes (1).txt"), "hello")
	write(t, filepath.Join(src, "sub", "song.mp3"), "ID3")

	opts := env.OrganiseFromConfig([]string{src}, dest)
	if opts.Algorithm != "xxhash" {
		t.Errorf("Expected algorithm from config, got %s", opts.Algorithm)
	}

	var session *organiser.Session
	opts.OnSession = func(s *organiser.Session) { session = s }

	stats, err := RunOrganise(context.Background(), env, opts)
	if err != nil {
		t.Fatalf("RunOrganise() error = %v", err)
	}
	if session == nil || session.State() != organiser.Done {
		t.Fatalf("Expected finished session, got %v", session)
	}
	if stats.Duplicates != 1 || stats.NonDuplicates != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	summaries := DestinationSummary(env, dest)
	if len(summaries) != 3 || summaries[0].Summary.Files != 2 || summaries[1].Summary.Files != 1 {
		t.Errorf("Unexpected destination summary: %+v", summaries)
	}
}

func TestRunOrganise_Invalid(t *testing.T) {
	env, root := testEnv(t)
	_, err := RunOrganise(context.Background(), env, OrganiseOptions{Targets: []string{root}})
	if err != internal.ErrNoDestination {
		t.Errorf("Expected ErrNoDestination, got %v", err)
	}
}

func TestRunMerge(t *testing.T) {
	env, root := testEnv(t)
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "dest")
	write(t, filepath.Join(src, "dup.txt"), "same")
	write(t, filepath.Join(src, "new.txt"), "new")
	write(t, filepath.Join(dest, "old.txt"), "same")

	res, err := RunMerge(context.Background(), env, MergeOptions{Source: src, Destination: dest, DryRun: true})
	if err != nil {
		t.Fatalf("RunMerge() dry run error = %v", err)
	}
	if res.Plan == nil || len(res.Plan.Duplicates) != 1 || len(res.Plan.Unique) != 1 {
		t.Fatalf("Unexpected plan: %+v", res.Plan)
	}
	if _, err := os.Stat(filepath.Join(src, "dup.txt")); err != nil {
		t.Error("Dry run must not delete files")
	}

	res, err = RunMerge(context.Background(), env, MergeOptions{Source: src, Destination: dest})
	if err != nil {
		t.Fatalf("RunMerge() error = %v", err)
	}
	if res.Stats.Deleted != 1 || res.Stats.Moved != 1 {
		t.Errorf("Unexpected stats: %+v", res.Stats)
	}
}

func TestRunSweep(t *testing.T) {
	env, root := testEnv(t)
	target := filepath.Join(root, "target")
	if err := os.MkdirAll(filepath.Join(target, "a", "b"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	dest := filepath.Join(root, "dest")

	moved, err := RunSweep(context.Background(), env, []string{target}, dest)
	if err != nil {
		t.Fatalf("RunSweep() error = %v", err)
	}
	if moved == 0 {
		t.Error("Expected empty directories to be moved")
	}
	if _, err := os.Stat(filepath.Join(internal.EmptyFoldersDir(dest), "a")); err != nil {
		t.Errorf("Expected swept directory in holding area: %v", err)
	}

	if _, err := RunSweep(context.Background(), env, []string{target}, ""); err != internal.ErrNoDestination {
		t.Errorf("Expected ErrNoDestination, got %v", err)
	}
}

func TestRunExtract(t *testing.T) {
	env, root := testEnv(t)
	src := filepath.Join(root, "src")
	write(t, filepath.Join(src, "a.pdf"), "1")
	write(t, filepath.Join(src, "Tax 2023.doc"), "2")

	res, err := RunExtract(context.Background(), env, ExtractOptions{Source: src, Target: filepath.Join(root, "pdfs"), Extensions: []string{"pdf"}})
	if err != nil || res.Moved != 1 {
		t.Errorf("Extension extract: moved %d, err %v", res.Moved, err)
	}

	res, err = RunExtract(context.Background(), env, ExtractOptions{Source: src, Target: filepath.Join(root, "tax"), Keywords: []string{"tax"}})
	if err != nil || res.Moved != 1 {
		t.Errorf("Keyword extract: moved %d, err %v", res.Moved, err)
	}

	if _, err := RunExtract(context.Background(), env, ExtractOptions{Source: src, Target: root, Extensions: []string{"x"}, Keywords: []string{"y"}}); err == nil {
		t.Error("Expected error when both extensions and keywords are set")
	}
}

func TestRunSummary(t *testing.T) {
	env, root := testEnv(t)
	write(t, filepath.Join(root, "img.png"), "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	write(t, filepath.Join(root, "sub", "plain.txt"), "just text")

	got, err := RunSummary(env, []string{root}, true)
	if err != nil {
		t.Fatalf("RunSummary() error = %v", err)
	}
	if len(got) != 1 || got[0].Summary.Files != 2 || got[0].Summary.Folders != 1 {
		t.Fatalf("Unexpected summary: %+v", got)
	}

	types := map[string]int{}
	for _, tc := range got[0].Types {
		types[tc.MIME] = tc.Count
	}
	if types["image/png"] != 1 || types["unknown"] != 1 {
		t.Errorf("Unexpected type breakdown: %v", types)
	}

	if _, err := RunSummary(env, []string{filepath.Join(root, "missing")}, false); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestRunHistory(t *testing.T) {
	env, root := testEnv(t)
	env.Config.Journal.Path = filepath.Join(root, "journal.db")

	j, err := database.Open(env.Config.Journal.Path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	env.Journal = j
	defer env.Close()

	src := filepath.Join(root, "src")
	write(t, filepath.Join(src, "a.txt"), "a")

	var runID string
	opts := env.OrganiseFromConfig([]string{src}, filepath.Join(root, "dest"))
	opts.OnSession = func(s *organiser.Session) { runID = s.ID }
	if _, err := RunOrganise(context.Background(), env, opts); err != nil {
		t.Fatalf("RunOrganise() error = %v", err)
	}

	h, err := RunHistory(env, "", 10)
	if err != nil {
		t.Fatalf("RunHistory() error = %v", err)
	}
	if len(h.Runs) != 1 || h.Runs[0].RunID != runID {
		t.Fatalf("Unexpected runs: %+v", h.Runs)
	}

	h, err = RunHistory(env, runID, 0)
	if err != nil {
		t.Fatalf("RunHistory() error = %v", err)
	}
	if len(h.Entries) != 1 || h.Entries[0].Action != internal.ActionCategorise {
		t.Errorf("Unexpected entries: %+v", h.Entries)
	}
}
