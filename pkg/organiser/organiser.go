package organiser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/classifier"
	"github.com/moyu-x/file-organiser/pkg/deduplicator"
	"github.com/moyu-x/file-organiser/pkg/hasher"
	"github.com/moyu-x/file-organiser/pkg/logger"
	"github.com/moyu-x/file-organiser/pkg/mover"
	"github.com/moyu-x/file-organiser/pkg/scanner"
	"github.com/moyu-x/file-organiser/pkg/sweeper"
)

// Run 执行一次完整的整理：哈希目标树、哈希源文件、分类移动、清理空目录
//
// 取消时返回 internal.ErrCancelled，计数清零；已经移动的文件不会回滚。
func (s *Session) Run(ctx context.Context) (stats internal.ProcessStats, err error) {
	if s.State() != Idle {
		return internal.ProcessStats{}, fmt.Errorf("会话 %s 已经运行过", s.ID)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	if s.stopped.Load() {
		cancel()
	}

	s.stats = internal.ProcessStats{StartTime: time.Now()}

	defer func() {
		if r := recover(); r != nil {
			logger.Get().Error().Str("run", s.ID).Msgf("运行时异常: %v", r)
			err = fmt.Errorf("运行时异常: %v", r)
		}

		switch {
		case err == nil:
			s.finish(Done, internal.StatusSuccess)
		case errors.Is(err, internal.ErrCancelled):
			s.finish(Aborted, internal.StatusAborted)
		default:
			logger.Get().Error().Err(err).Str("run", s.ID).Msg("运行失败")
			s.finish(Failed, internal.StatusError)
		}
		stats = s.stats
	}()

	err = s.run(ctx)
	return s.stats, err
}

func (s *Session) run(ctx context.Context) error {
	fs := s.fs
	dest := s.opts.Destination

	walker := scanner.NewFileWalker(fs)
	h := hasher.New(fs, s.opts.Algorithm, s.opts.SkipLargerThan)

	logger.Get().Info().Str("run", s.ID).Msgf("源目录概况: %s", scanner.SummarizeAll(fs, s.opts.Targets))

	// 目标树
	s.setState(HashingDestination)
	destFiles, err := walker.Collect([]string{dest})
	if err != nil {
		return fmt.Errorf("扫描目标目录失败: %w", err)
	}
	destCatalog, err := s.hash(ctx, h, destFiles)
	if err != nil {
		return err
	}
	logger.Get().Info().Msgf("目标目录索引完成: %d 个文件，%d 个不同内容", destCatalog.Index.Files(), len(destCatalog.Index))

	// 源文件
	s.setState(HashingSource)
	batch := s.opts.Files
	if len(batch) == 0 {
		if batch, err = walker.Collect(s.opts.Targets); err != nil {
			return fmt.Errorf("扫描源目录失败: %w", err)
		}
	}
	srcCatalog, err := s.hash(ctx, h, batch)
	if err != nil {
		return err
	}
	s.stats.Skipped = len(srcCatalog.Skipped)

	failed := make(map[string]bool, len(srcCatalog.Failed))
	for _, r := range srcCatalog.Failed {
		failed[r.File.Path] = true
	}
	eligible := make([]internal.FileHandle, 0, len(batch))
	for _, f := range batch {
		if !failed[f.Path] {
			eligible = append(eligible, f)
		}
	}

	// 分类
	s.setState(Classifying)
	if err := s.classify(ctx, eligible, srcCatalog.Digests, destCatalog.Index); err != nil {
		return err
	}

	// 清理
	s.setState(Sweeping)
	sw := sweeper.New(fs, mover.New(fs), internal.EmptyFoldersDir(dest))
	sw.OnError = func(path string, err error) {
		s.fail(path, "", err)
	}
	sw.OnMoved = func(src, dst string) {
		s.record(internal.JournalEntry{Action: internal.ActionSweep, Source: src, Destination: dst})
	}
	swept, err := sw.Sweep(ctx, s.opts.Targets)
	s.stats.SweptFolders = swept
	if err != nil || s.stopped.Load() {
		return internal.ErrCancelled
	}

	for _, dir := range []string{internal.CategorisedDir(dest), internal.DuplicatesDir(dest), internal.ToBeDeletedDir(dest)} {
		logger.Get().Info().Msgf("%s: %s", filepath.Base(dir), scanner.Summarize(fs, dir))
	}
	return nil
}

// hash 使用独立的工作池计算一组文件的摘要
func (s *Session) hash(ctx context.Context, h *hasher.Hasher, files []internal.FileHandle) (*hasher.Catalog, error) {
	if s.cancelled(ctx) {
		return nil, internal.ErrCancelled
	}

	pool, err := hasher.NewHashPool(h, s.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("创建哈希工作池失败: %w", err)
	}
	defer pool.Release()

	catalog, err := pool.BuildCatalog(ctx, files, s.opts.Notifier.HashProgress)
	if err != nil || s.stopped.Load() {
		return nil, internal.ErrCancelled
	}

	for _, r := range catalog.Failed {
		s.fail(r.File.Path, "", r.Err)
	}
	return catalog, nil
}

func (s *Session) classify(ctx context.Context, files []internal.FileHandle, digests map[string]string, destIndex hasher.Index) error {
	dest := s.opts.Destination
	m := mover.New(s.fs)
	router := classifier.NewRouter(s.fs)
	router.SniffExtensionless = s.opts.SniffExtensionless
	detector := deduplicator.NewDetector(files, digests, destIndex)

	total := len(files)
	for i, file := range files {
		if s.cancelled(ctx) {
			return internal.ErrCancelled
		}

		for _, decision := range detector.Resolve(file) {
			s.apply(m, router, detector, decision, dest)
		}
		s.opts.Notifier.MoveProgress(i+1, total)
	}
	return nil
}

// apply 执行一个判定对应的移动
func (s *Session) apply(m *mover.Mover, router *classifier.Router, detector *deduplicator.Detector, d deduplicator.Decision, dest string) {
	file := d.File

	var (
		target string
		action string
		err    error
	)
	switch d.Verdict {
	case deduplicator.Unique, deduplicator.NameKeeper:
		action = internal.ActionCategorise
		target, err = router.Route(internal.CategorisedDir(dest), file)
	case deduplicator.Known:
		action = internal.ActionDelete
		target = filepath.Join(internal.ToBeDeletedDir(dest), filepath.Base(file.Path))
	case deduplicator.NameVariant:
		if detector.Placed(d.Key) {
			action = internal.ActionDelete
			target = filepath.Join(internal.ToBeDeletedDir(dest), filepath.Base(file.Path))
		} else {
			action = internal.ActionDuplicate
			target, err = router.Route(internal.DuplicatesDir(dest), file)
		}
	}
	if err != nil {
		s.fail(file.Path, d.Key, &internal.MoveError{Src: file.Path, Dst: target, Err: err})
		return
	}

	final, err := m.MoveWithCollisionHandling(file.Path, target)
	if err != nil {
		s.fail(file.Path, d.Key, err)
		return
	}

	if action == internal.ActionDuplicate {
		detector.MarkPlaced(d.Key)
	}
	if d.Verdict.Duplicate() {
		s.stats.Duplicates++
	} else {
		s.stats.NonDuplicates++
	}

	logger.Get().Debug().Msgf("[%s] %s -> %s", d.Verdict, file.Path, final)
	s.record(internal.JournalEntry{
		Action:      action,
		Source:      file.Path,
		Destination: final,
		Digest:      d.Key,
	})
}

// fail 报告单个文件的错误，运行继续
func (s *Session) fail(path, digest string, err error) {
	s.stats.Errors++
	stage := internal.StageOf(err)
	logger.Get().Error().Err(err).Str("stage", string(stage)).Msgf("处理文件失败: %s", path)

	s.opts.Notifier.FileError(stage, path, err.Error())
	s.record(internal.JournalEntry{
		Action: internal.ActionFailed,
		Source: path,
		Digest: digest,
		Error:  err.Error(),
	})
}

func (s *Session) finish(state State, status internal.RunStatus) {
	s.stats.EndTime = time.Now()
	if state != Done {
		s.stats.Duplicates = 0
		s.stats.NonDuplicates = 0
	}
	s.state.Store(int32(state))

	logger.Get().Info().Str("run", s.ID).Msgf("运行结束: %s，耗时 %v，重复 %d，非重复 %d，跳过 %d，错误 %d，清理空目录 %d",
		state, s.stats.EndTime.Sub(s.stats.StartTime).Round(time.Millisecond),
		s.stats.Duplicates, s.stats.NonDuplicates, s.stats.Skipped, s.stats.Errors, s.stats.SweptFolders)

	if s.opts.Journal != nil {
		run := internal.RunRecord{
			RunID:         s.ID,
			Kind:          "organise",
			Status:        status,
			Duplicates:    s.stats.Duplicates,
			NonDuplicates: s.stats.NonDuplicates,
			StartedAt:     s.stats.StartTime,
			FinishedAt:    s.stats.EndTime,
		}
		if err := s.opts.Journal.RecordRun(run); err != nil {
			logger.Get().Warn().Err(err).Msg("写入运行记录失败")
		}
	}

	s.opts.Notifier.Done(status, s.stats.Duplicates, s.stats.NonDuplicates)
}
