package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/internal/database"
	"github.com/moyu-x/file-organiser/pkg/classifier"
	"github.com/moyu-x/file-organiser/pkg/extractor"
	"github.com/moyu-x/file-organiser/pkg/logger"
	"github.com/moyu-x/file-organiser/pkg/mover"
	"github.com/moyu-x/file-organiser/pkg/scanner"
	"github.com/moyu-x/file-organiser/pkg/sweeper"
)

// RunSweep 只执行空目录清理，目录移到 destination 的待删除区
func RunSweep(ctx context.Context, env *Env, targets []string, destination string) (int, error) {
	if destination == "" {
		return 0, internal.ErrNoDestination
	}
	if len(targets) == 0 {
		return 0, internal.ErrNoSources
	}
	for _, target := range targets {
		info, err := env.FS.Stat(target)
		if err != nil {
			return 0, err
		}
		if !info.IsDir() {
			return 0, fmt.Errorf("%w: %s", internal.ErrNotDirectory, target)
		}
	}

	runID := uuid.NewString()
	journal := env.journal()

	sw := sweeper.New(env.FS, mover.New(env.FS), internal.EmptyFoldersDir(destination))
	sw.OnMoved = func(src, dst string) {
		if journal == nil {
			return
		}
		if err := journal.Record(internal.JournalEntry{RunID: runID, Action: internal.ActionSweep, Source: src, Destination: dst}); err != nil {
			logger.Get().Warn().Err(err).Msg("写入操作日志失败")
		}
	}
	return sw.Sweep(ctx, targets)
}

type ExtractOptions struct {
	Source        string
	Target        string
	Extensions    []string
	Keywords      []string
	CaseSensitive bool
}

func RunExtract(ctx context.Context, env *Env, opts ExtractOptions) (extractor.Result, error) {
	e := extractor.New(env.FS)

	switch {
	case len(opts.Extensions) > 0 && len(opts.Keywords) > 0:
		return extractor.Result{}, errors.New("不能同时指定扩展名和关键字")
	case len(opts.Extensions) > 0:
		return e.ByExtension(ctx, opts.Source, opts.Target, opts.Extensions)
	default:
		return e.ByKeyword(ctx, opts.Source, opts.Target, opts.Keywords, opts.CaseSensitive)
	}
}

// TypeCount 某种 MIME 类型的文件数
type TypeCount struct {
	MIME  string
	Count int
}

type DirSummary struct {
	Dir     string
	Summary scanner.Summary
	Types   []TypeCount
}

// RunSummary 统计目录的文件数、目录数和大小；types 为 true 时按文件头统计类型
func RunSummary(env *Env, dirs []string, types bool) ([]DirSummary, error) {
	router := classifier.NewRouter(env.FS)
	walker := scanner.NewFileWalker(env.FS)

	result := make([]DirSummary, 0, len(dirs))
	for _, dir := range dirs {
		if ok, _ := afero.DirExists(env.FS, dir); !ok {
			return nil, fmt.Errorf("%w: %s", internal.ErrNotDirectory, dir)
		}

		ds := DirSummary{Dir: dir, Summary: scanner.Summarize(env.FS, dir)}
		if types {
			counts := make(map[string]int)
			_ = walker.Walk(dir, func(path string, _ os.FileInfo) error {
				mime, err := router.DetectMIME(path)
				if err != nil {
					mime = "unreadable"
				}
				counts[mime]++
				return nil
			})
			for mime, n := range counts {
				ds.Types = append(ds.Types, TypeCount{MIME: mime, Count: n})
			}
			sort.Slice(ds.Types, func(i, j int) bool {
				if ds.Types[i].Count != ds.Types[j].Count {
					return ds.Types[i].Count > ds.Types[j].Count
				}
				return ds.Types[i].MIME < ds.Types[j].MIME
			})
		}
		result = append(result, ds)
	}
	return result, nil
}

// DestinationSummary 返回目标根目录下三个子目录的概况
func DestinationSummary(env *Env, root string) []DirSummary {
	dirs := []string{internal.CategorisedDir(root), internal.DuplicatesDir(root), internal.ToBeDeletedDir(root)}
	result := make([]DirSummary, 0, len(dirs))
	for _, dir := range dirs {
		result = append(result, DirSummary{Dir: filepath.Base(dir), Summary: scanner.Summarize(env.FS, dir)})
	}
	return result
}

type History struct {
	Runs    []internal.RunRecord
	Entries []internal.JournalEntry
}

// RunHistory 读取操作日志；runID 为空时列出最近的运行
func RunHistory(env *Env, runID string, limit int) (History, error) {
	j := env.Journal
	if j == nil {
		var err error
		if j, err = database.Open(env.Config.Journal.Path); err != nil {
			return History{}, err
		}
		defer j.Close()
	}

	if runID == "" {
		runs, err := j.Runs(limit)
		return History{Runs: runs}, err
	}
	entries, err := j.Entries(runID)
	return History{Entries: entries}, err
}
