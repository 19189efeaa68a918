package merger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/deduplicator"
	"github.com/moyu-x/file-organiser/pkg/hasher"
	"github.com/moyu-x/file-organiser/pkg/logger"
	"github.com/moyu-x/file-organiser/pkg/mover"
	"github.com/moyu-x/file-organiser/pkg/scanner"
)

type Options struct {
	Algorithm      string
	SkipLargerThan int64
	Workers        int

	Notifier internal.Notifier
	Journal  internal.Journal
}

// Merger 把源目录合并进目标目录：重复内容从源中删除，其余按相对路径移动
type Merger struct {
	fs   afero.Fs
	opts Options
}

func New(fs afero.Fs, opts Options) *Merger {
	if opts.Algorithm == "" {
		opts.Algorithm = internal.DefaultAlgorithm
	}
	if opts.Notifier == nil {
		opts.Notifier = internal.NopNotifier{}
	}
	return &Merger{fs: fs, opts: opts}
}

// Duplicate 源文件及其在目标目录中的已有副本
type Duplicate struct {
	Source internal.FileHandle
	// Match 目标目录中最新的同内容文件
	Match  internal.FileHandle
	Digest string
}

// Transfer 要移动的唯一文件
type Transfer struct {
	Source internal.FileHandle
	Target string
}

// Plan 合并前的预览，不修改磁盘
type Plan struct {
	Source      string
	Destination string
	Duplicates  []Duplicate
	Unique      []Transfer
	Failed      []hasher.Result
}

// Reclaimable 删除重复文件可释放的空间
func (p *Plan) Reclaimable() int64 {
	var n int64
	for _, d := range p.Duplicates {
		n += d.Source.Size
	}
	return n
}

func (p *Plan) String() string {
	return fmt.Sprintf("%d 个重复文件将被删除（%s），%d 个唯一文件将被移动",
		len(p.Duplicates), humanize.IBytes(uint64(p.Reclaimable())), len(p.Unique))
}

func (m *Merger) validate(source, dest string) (string, string, error) {
	var err error
	if source, err = filepath.Abs(source); err != nil {
		return "", "", err
	}
	if dest, err = filepath.Abs(dest); err != nil {
		return "", "", err
	}

	for _, dir := range []string{source, dest} {
		info, err := m.fs.Stat(dir)
		if err != nil {
			return "", "", fmt.Errorf("读取目录失败: %w", err)
		}
		if !info.IsDir() {
			return "", "", fmt.Errorf("%w: %s", internal.ErrNotDirectory, dir)
		}
	}
	if internal.Overlaps(source, dest) {
		return "", "", fmt.Errorf("%w: %s, %s", internal.ErrSameTree, source, dest)
	}
	return source, dest, nil
}

// Plan 为两棵树建立索引并计算合并方案
func (m *Merger) Plan(ctx context.Context, source, dest string) (*Plan, error) {
	source, dest, err := m.validate(source, dest)
	if err != nil {
		return nil, err
	}

	h := hasher.New(m.fs, m.opts.Algorithm, m.opts.SkipLargerThan)
	walker := scanner.NewFileWalker(m.fs)

	logger.Get().Info().Msgf("扫描目标目录: %s", dest)
	_, destCatalog, err := m.catalog(ctx, h, walker, dest)
	if err != nil {
		return nil, err
	}

	logger.Get().Info().Msgf("扫描源目录: %s", source)
	files, srcCatalog, err := m.catalog(ctx, h, walker, source)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Source: source, Destination: dest, Failed: srcCatalog.Failed}
	failed := make(map[string]bool, len(srcCatalog.Failed))
	for _, r := range srcCatalog.Failed {
		failed[r.File.Path] = true
	}

	for _, f := range files {
		if failed[f.Path] {
			continue
		}

		if digest, ok := srcCatalog.Digest(f.Path); ok && destCatalog.Index.Contains(digest) {
			match, _ := deduplicator.SelectBest(destCatalog.Index.Lookup(digest))
			plan.Duplicates = append(plan.Duplicates, Duplicate{Source: f, Match: match, Digest: digest})
			continue
		}

		rel, err := filepath.Rel(source, f.Path)
		if err != nil {
			return nil, err
		}
		plan.Unique = append(plan.Unique, Transfer{Source: f, Target: filepath.Join(dest, rel)})
	}

	logger.Get().Info().Msgf("合并预览: %s", plan)
	return plan, nil
}

func (m *Merger) catalog(ctx context.Context, h *hasher.Hasher, walker *scanner.FileWalker, dir string) ([]internal.FileHandle, *hasher.Catalog, error) {
	files, err := walker.Collect([]string{dir})
	if err != nil {
		return nil, nil, err
	}

	pool, err := hasher.NewHashPool(h, m.opts.Workers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Release()

	catalog, err := pool.BuildCatalog(ctx, files, m.opts.Notifier.HashProgress)
	if err != nil {
		return nil, nil, internal.ErrCancelled
	}
	for _, r := range catalog.Failed {
		logger.Get().Error().Err(r.Err).Msgf("计算哈希失败: %s", r.File.Path)
		m.opts.Notifier.FileError(internal.StageHashing, r.File.Path, r.Err.Error())
	}
	return files, catalog, nil
}

// Merge 执行合并：先删除重复文件，再移动唯一文件
func (m *Merger) Merge(ctx context.Context, source, dest string) (stats internal.MergeStats, err error) {
	runID := uuid.NewString()
	stats.StartTime = time.Now()

	defer func() {
		stats.EndTime = time.Now()
		status := internal.StatusSuccess
		switch {
		case errors.Is(err, internal.ErrCancelled):
			status = internal.StatusAborted
		case err != nil:
			status = internal.StatusError
		}

		logger.Get().Info().Str("run", runID).Msgf("合并结束: 删除 %d，移动 %d，错误 %d，释放 %s",
			stats.Deleted, stats.Moved, stats.Errors, humanize.IBytes(uint64(stats.FreedSpace)))

		if m.opts.Journal != nil {
			if jerr := m.opts.Journal.RecordRun(internal.RunRecord{
				RunID:         runID,
				Kind:          "merge",
				Status:        status,
				Duplicates:    stats.Deleted,
				NonDuplicates: stats.Moved,
				StartedAt:     stats.StartTime,
				FinishedAt:    stats.EndTime,
			}); jerr != nil {
				logger.Get().Warn().Err(jerr).Msg("写入运行记录失败")
			}
		}
		m.opts.Notifier.Done(status, stats.Deleted, stats.Moved)
	}()

	plan, err := m.Plan(ctx, source, dest)
	if err != nil {
		return stats, err
	}
	stats.Errors = len(plan.Failed)

	total := len(plan.Duplicates) + len(plan.Unique)
	done := 0
	mv := mover.New(m.fs)

	for _, d := range plan.Duplicates {
		if ctx.Err() != nil {
			return stats, internal.ErrCancelled
		}

		if rmErr := m.fs.Remove(d.Source.Path); rmErr != nil {
			m.fail(runID, &stats, &internal.DeletionError{Path: d.Source.Path, Err: rmErr})
		} else {
			stats.Deleted++
			stats.FreedSpace += d.Source.Size
			logger.Get().Debug().Msgf("删除重复文件: %s (与 %s 相同)", d.Source.Path, d.Match.Path)
			m.record(internal.JournalEntry{
				RunID:       runID,
				Action:      internal.ActionRemove,
				Source:      d.Source.Path,
				Destination: d.Match.Path,
				Digest:      d.Digest,
			})
		}

		done++
		m.opts.Notifier.MoveProgress(done, total)
	}

	for _, t := range plan.Unique {
		if ctx.Err() != nil {
			return stats, internal.ErrCancelled
		}

		final, mvErr := mv.MoveWithCollisionHandling(t.Source.Path, t.Target)
		if mvErr != nil {
			m.fail(runID, &stats, mvErr)
		} else {
			stats.Moved++
			m.record(internal.JournalEntry{
				RunID:       runID,
				Action:      internal.ActionMerge,
				Source:      t.Source.Path,
				Destination: final,
			})
		}

		done++
		m.opts.Notifier.MoveProgress(done, total)
	}

	return stats, nil
}

func (m *Merger) fail(runID string, stats *internal.MergeStats, err error) {
	stats.Errors++
	stage := internal.StageOf(err)
	logger.Get().Error().Err(err).Str("stage", string(stage)).Msg("合并文件失败")

	path := ""
	var delErr *internal.DeletionError
	var mvErr *internal.MoveError
	switch {
	case errors.As(err, &delErr):
		path = delErr.Path
	case errors.As(err, &mvErr):
		path = mvErr.Src
	}
	m.opts.Notifier.FileError(stage, path, err.Error())
	m.record(internal.JournalEntry{RunID: runID, Action: internal.ActionFailed, Source: path, Error: err.Error()})
}

func (m *Merger) record(entry internal.JournalEntry) {
	if m.opts.Journal == nil {
		return
	}
	if err := m.opts.Journal.Record(entry); err != nil {
		logger.Get().Warn().Err(err).Msg("写入操作日志失败")
	}
}
