package app

import (
	"context"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/merger"
	"github.com/moyu-x/file-organiser/pkg/progress"
)

type MergeOptions struct {
	Source         string
	Destination    string
	Algorithm      string
	SkipLargerThan int64
	Workers        int
	// DryRun 只计算合并方案，不修改文件
	DryRun bool
}

// MergeResult DryRun 时只有 Plan 有值
type MergeResult struct {
	Plan  *merger.Plan
	Stats internal.MergeStats
}

func RunMerge(ctx context.Context, env *Env, opts MergeOptions) (MergeResult, error) {
	m := merger.New(env.FS, merger.Options{
		Algorithm:      opts.Algorithm,
		SkipLargerThan: opts.SkipLargerThan,
		Workers:        opts.Workers,
		Notifier:       progress.NewReporter(progress.DefaultStep),
		Journal:        env.journal(),
	})

	if opts.DryRun {
		plan, err := m.Plan(ctx, opts.Source, opts.Destination)
		return MergeResult{Plan: plan}, err
	}

	stats, err := m.Merge(ctx, opts.Source, opts.Destination)
	return MergeResult{Stats: stats}, err
}
