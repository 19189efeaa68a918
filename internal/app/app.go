package app

import (
	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/config"
	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/internal/database"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

// SetupOptions 命令行中影响运行环境的参数，空值表示沿用配置文件
type SetupOptions struct {
	ConfigFile string
	LogLevel   string
	LogFile    string
	// Quiet 关闭控制台日志，TUI 模式使用
	Quiet bool
	// Journal 为 true 时无论配置如何都开启操作日志
	Journal bool
}

// Env 一次命令执行所需的配置、文件系统和操作日志
type Env struct {
	Config  *config.Config
	FS      afero.Fs
	Journal *database.Journal
}

func Setup(opts SetupOptions) (*Env, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	file := cfg.Logging.File
	if opts.LogFile != "" {
		file = opts.LogFile
	}

	if err := logger.Init(logger.Options{Level: level, File: file, Quiet: opts.Quiet}); err != nil {
		return nil, err
	}
	logger.Get().Debug().Msg("加载配置完成")

	env := &Env{Config: cfg, FS: afero.NewOsFs()}

	if cfg.Journal.Enabled || opts.Journal {
		j, err := database.Open(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		env.Journal = j
	}

	return env, nil
}

// journal 返回可以直接传给核心组件的接口值，未开启时为 nil
func (e *Env) journal() internal.Journal {
	if e.Journal == nil {
		return nil
	}
	return e.Journal
}

func (e *Env) Close() {
	if e.Journal == nil {
		return
	}
	if err := e.Journal.Close(); err != nil {
		logger.Get().Error().Err(err).Msg("关闭操作日志失败")
	}
}
