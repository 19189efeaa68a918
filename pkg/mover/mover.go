package mover

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

// Mover 移动文件和目录，目标已存在时追加 " (n)" 序号，从不覆盖
//
// 检查与重命名之间没有锁，调用方需要保证同一目标目录只在一个 goroutine 中移动。
type Mover struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Mover {
	return &Mover{fs: fs}
}

// SplitName 分离文件名和扩展名，开头的点不算扩展名分隔符
func SplitName(name string) (string, string) {
	ext := filepath.Ext(strings.TrimLeft(name, "."))
	return strings.TrimSuffix(name, ext), ext
}

// FreePath 返回第一个不存在的路径：dst, "name (1).ext", "name (2).ext", ...
func (m *Mover) FreePath(dst string) (string, error) {
	exists, err := afero.Exists(m.fs, dst)
	if err != nil {
		return "", fmt.Errorf("检查文件是否存在失败: %w", err)
	}
	if !exists {
		return dst, nil
	}

	dir := filepath.Dir(dst)
	stem, ext := SplitName(filepath.Base(dst))

	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, counter, ext))
		exists, err := afero.Exists(m.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("检查文件是否存在失败: %w", err)
		}
		if !exists {
			logger.Get().Debug().
				Str("original_path", dst).
				Str("new_path", candidate).
				Msg("文件名冲突，自动重命名")
			return candidate, nil
		}
	}
}

// MoveWithCollisionHandling 移动文件或目录到 dst，返回最终路径
func (m *Mover) MoveWithCollisionHandling(src, dst string) (string, error) {
	if err := m.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", &internal.MoveError{Src: src, Dst: dst, Err: err}
	}

	final, err := m.FreePath(dst)
	if err != nil {
		return "", &internal.MoveError{Src: src, Dst: dst, Err: err}
	}

	if err := m.move(src, final); err != nil {
		return "", err
	}

	logger.Get().Debug().Str("source", src).Str("destination", final).Msg("已移动")
	return final, nil
}

// MoveDir 把整个目录以其原名移动到 parent 下
func (m *Mover) MoveDir(src, parent string) (string, error) {
	return m.MoveWithCollisionHandling(src, filepath.Join(parent, filepath.Base(filepath.Clean(src))))
}

// move 先尝试 rename，失败（通常是跨卷）时复制后删除
func (m *Mover) move(src, dst string) error {
	info, err := m.fs.Stat(src)
	if err != nil {
		return &internal.MoveError{Src: src, Dst: dst, Err: err}
	}

	renameErr := m.fs.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	logger.Get().Debug().
		Err(renameErr).
		Str("source", src).
		Str("destination", dst).
		Msg("直接重命名失败，尝试复制后删除")

	if info.IsDir() {
		err = m.copyDir(src, dst)
		if err != nil {
			// 清理复制了一半的目录，源目录保持不动
			_ = m.fs.RemoveAll(dst)
		}
	} else {
		err = m.copyFile(src, dst, info)
	}
	if err != nil {
		return &internal.MoveError{Src: src, Dst: dst, Err: errors.Join(renameErr, err)}
	}

	if err := m.fs.RemoveAll(src); err != nil {
		return &internal.DeletionError{Path: src, Err: err}
	}
	return nil
}

func (m *Mover) copyFile(src, dst string, info os.FileInfo) error {
	sourceFile, err := m.fs.Open(src)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := m.fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("创建目标文件失败: %w", err)
	}

	_, err = io.Copy(destFile, sourceFile)
	if closeErr := destFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = m.fs.Remove(dst)
		return fmt.Errorf("复制文件内容失败: %w", err)
	}

	// 保留修改时间，分类依赖年份
	return m.fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

func (m *Mover) copyDir(src, dst string) error {
	return afero.Walk(m.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return m.fs.MkdirAll(target, info.Mode().Perm()|0700)
		}
		return m.copyFile(path, target, info)
	})
}
