package app

import (
	"context"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
	"github.com/moyu-x/file-organiser/pkg/organiser"
	"github.com/moyu-x/file-organiser/pkg/progress"
)

type OrganiseOptions struct {
	Targets        []string
	Destination    string
	Algorithm      string
	SkipLargerThan int64
	Workers        int
	Sniff          bool

	// Notifier 额外的通知接收者，例如 TUI
	Notifier internal.Notifier
	// OnSession 在运行开始前调用，命令行用它取得运行 ID
	OnSession func(*organiser.Session)
}

// OrganiseFromConfig 用配置文件中的值填充选项
func (e *Env) OrganiseFromConfig(targets []string, destination string) OrganiseOptions {
	return OrganiseOptions{
		Targets:        targets,
		Destination:    destination,
		Algorithm:      e.Config.Organise.HashAlgorithm,
		SkipLargerThan: e.Config.Organise.SkipLargerThan,
		Workers:        e.Config.Performance.Workers,
		Sniff:          e.Config.Organise.SniffExtensionless,
	}
}

func RunOrganise(ctx context.Context, env *Env, opts OrganiseOptions) (internal.ProcessStats, error) {
	notifiers := progress.Multi{progress.NewReporter(progress.DefaultStep)}
	if opts.Notifier != nil {
		notifiers = append(notifiers, opts.Notifier)
	}

	session, err := organiser.NewSession(env.FS, organiser.Options{
		Targets:            opts.Targets,
		Destination:        opts.Destination,
		Algorithm:          opts.Algorithm,
		SkipLargerThan:     opts.SkipLargerThan,
		Workers:            opts.Workers,
		SniffExtensionless: opts.Sniff,
		Notifier:           notifiers,
		Journal:            env.journal(),
	})
	if err != nil {
		return internal.ProcessStats{}, err
	}

	logger.Get().Info().Str("run", session.ID).Msgf("开始整理 %d 个目录到 %s，哈希算法: %s",
		len(opts.Targets), session.Options().Destination, session.Options().Algorithm)

	if opts.OnSession != nil {
		opts.OnSession(session)
	}
	return session.Run(ctx)
}
