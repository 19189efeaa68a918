package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/pkg/logger"
	"github.com/moyu-x/file-organiser/pkg/mover"
)

// Sweeper 把清空后的目录整体移到待删除目录
type Sweeper struct {
	fs      afero.Fs
	mover   *mover.Mover
	holding string

	// OnError 单个目录移动失败时调用，不会中断清理
	OnError func(path string, err error)
	// OnMoved 目录移动成功后调用
	OnMoved func(src, dst string)
}

func New(fs afero.Fs, m *mover.Mover, holding string) *Sweeper {
	return &Sweeper{
		fs:      fs,
		mover:   m,
		holding: filepath.Clean(holding),
	}
}

// IsTransitivelyEmpty 目录中没有可见文件，且所有子目录也是如此
func (s *Sweeper) IsTransitivelyEmpty(dir string) bool {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return false
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if !s.IsTransitivelyEmpty(path) {
				return false
			}
			continue
		}
		if !isHidden(path, entry) {
			return false
		}
	}
	return true
}

// SweepOnce 自底向上处理 target 下的目录，返回移走的目录数
func (s *Sweeper) SweepOnce(ctx context.Context, target string) int {
	target = filepath.Clean(target)

	var dirs []string
	_ = afero.Walk(s.fs, target, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() || path == target {
			return nil
		}
		if within(path, s.holding) {
			return filepath.SkipDir
		}
		if within(s.holding, path) {
			return nil
		}
		dirs = append(dirs, path)
		return nil
	})

	moved := 0
	for i := len(dirs) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return moved
		}

		dir := dirs[i]
		if ok, _ := afero.DirExists(s.fs, dir); !ok {
			continue
		}
		if !s.IsTransitivelyEmpty(dir) {
			continue
		}

		final, err := s.mover.MoveDir(dir, s.holding)
		if err != nil {
			logger.Get().Error().Err(err).Msgf("移动空目录失败: %s", dir)
			if s.OnError != nil {
				s.OnError(dir, err)
			}
			continue
		}
		logger.Get().Debug().Msgf("空目录已移动: %s -> %s", dir, final)
		if s.OnMoved != nil {
			s.OnMoved(dir, final)
		}
		moved++
	}
	return moved
}

// Sweep 反复清理所有目标，直到一轮中没有目录被移动
func (s *Sweeper) Sweep(ctx context.Context, targets []string) (int, error) {
	total := 0
	for pass := 1; ; pass++ {
		moved := 0
		for _, target := range targets {
			moved += s.SweepOnce(ctx, target)
		}
		total += moved

		if err := ctx.Err(); err != nil {
			return total, err
		}
		if moved == 0 {
			break
		}
		logger.Get().Debug().Msgf("第 %d 轮清理移动了 %d 个空目录", pass, moved)
	}

	logger.Get().Info().Msgf("空目录清理完成，共移动 %d 个目录", total)
	return total, nil
}

// within path 等于 dir 或位于 dir 之下
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
