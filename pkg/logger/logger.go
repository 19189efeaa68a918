package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var Logger *zerolog.Logger

// Options 日志配置
type Options struct {
	Level string // "debug", "info", "warn", "error"
	File  string // 日志文件路径，为空时仅输出到控制台
	// Quiet 为 true 时不写控制台，用于 TUI 运行时避免打乱界面
	Quiet bool
}

// Init 初始化 zerolog 日志
func Init(opts Options) error {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if !opts.Quiet {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"})
	}

	if opts.File != "" {
		fileWriter, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		writers = append(writers, fileWriter)
	}

	var output io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		output = writers[0]
	default:
		output = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	Logger = &logger
	return nil
}

// Get 返回全局 logger 实例
// 如果 logger 未初始化，返回一个丢弃输出的 logger
func Get() *zerolog.Logger {
	if Logger == nil {
		logger := zerolog.New(io.Discard)
		Logger = &logger
	}
	return Logger
}
