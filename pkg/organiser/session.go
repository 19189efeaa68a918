package organiser

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

// State 编排器的运行状态
type State int32

const (
	Idle State = iota
	HashingDestination
	HashingSource
	Classifying
	Sweeping
	Done
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case HashingDestination:
		return "Hashing(destination)"
	case HashingSource:
		return "Hashing(source)"
	case Classifying:
		return "Classifying"
	case Sweeping:
		return "Sweeping"
	case Done:
		return "Done"
	case Aborted:
		return "Aborted"
	case Failed:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal 运行是否已经结束
func (s State) Terminal() bool {
	return s == Done || s == Aborted || s == Failed
}

type Options struct {
	// Targets 源目录，同时也是清理空目录的范围
	Targets []string
	// Files 已经解析好的文件列表，为空时从 Targets 收集
	Files       []internal.FileHandle
	Destination string

	Algorithm          string
	SkipLargerThan     int64
	Workers            int
	SniffExtensionless bool

	Notifier internal.Notifier
	Journal  internal.Journal
}

// Session 一次整理运行的全部状态，只能运行一次
type Session struct {
	ID   string
	fs   afero.Fs
	opts Options

	state   atomic.Int32
	stopped atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc

	stats internal.ProcessStats
}

// NewSession 校验参数并创建会话
func NewSession(fs afero.Fs, opts Options) (*Session, error) {
	if opts.Destination == "" {
		return nil, internal.ErrNoDestination
	}
	if len(opts.Targets) == 0 {
		return nil, internal.ErrNoSources
	}

	dest, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("解析目标目录失败: %w", err)
	}
	opts.Destination = dest

	targets := make([]string, 0, len(opts.Targets))
	for _, target := range opts.Targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, fmt.Errorf("解析源目录失败: %w", err)
		}
		info, err := fs.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("读取源目录失败: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", internal.ErrNotDirectory, abs)
		}
		if internal.Overlaps(abs, dest) {
			return nil, fmt.Errorf("%w: %s, %s", internal.ErrSameTree, abs, dest)
		}
		targets = append(targets, abs)
	}
	opts.Targets = targets

	if opts.Algorithm == "" {
		opts.Algorithm = internal.DefaultAlgorithm
	}
	if opts.Notifier == nil {
		opts.Notifier = internal.NopNotifier{}
	}

	s := &Session{
		ID:   uuid.NewString(),
		fs:   fs,
		opts: opts,
	}
	logger.Get().Debug().Str("run", s.ID).Msgf("创建整理会话，目标目录: %s", dest)
	return s, nil
}

// Cancel 请求停止运行，可以在任意 goroutine 中调用
func (s *Session) Cancel() {
	if s.stopped.Swap(true) {
		return
	}
	logger.Get().Warn().Str("run", s.ID).Msg("收到取消请求")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
	logger.Get().Info().Str("run", s.ID).Msgf("进入阶段: %s", state)
}

func (s *Session) Options() Options {
	return s.opts
}

// Stats 返回运行结束后的统计；取消或出错时计数为零
func (s *Session) Stats() internal.ProcessStats {
	return s.stats
}

func (s *Session) cancelled(ctx context.Context) bool {
	return s.stopped.Load() || ctx.Err() != nil
}

func (s *Session) record(entry internal.JournalEntry) {
	if s.opts.Journal == nil {
		return
	}
	entry.RunID = s.ID
	if err := s.opts.Journal.Record(entry); err != nil {
		logger.Get().Warn().Err(err).Msg("写入操作日志失败")
	}
}
