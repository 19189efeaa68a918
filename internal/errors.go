package internal

import (
	"errors"
	"fmt"
)

var (
	ErrNoDestination = errors.New("destination root not specified")
	ErrNoSources     = errors.New("no source files or folders given")
	ErrSameTree      = errors.New("source and destination overlap")
	ErrNotDirectory  = errors.New("expected directory")
	ErrCancelled     = errors.New("run cancelled")
)

// HashError 计算摘要时的读取错误
type HashError struct {
	Path string
	Err  error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("hash %s: %v", e.Path, e.Err)
}

func (e *HashError) Unwrap() error { return e.Err }

// MoveError 冲突处理或移动失败
type MoveError struct {
	Src string
	Dst string
	Err error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s -> %s: %v", e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// DeletionError 复制完成后删除源文件失败，或合并时删除重复文件失败
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

// StageOf 返回错误对应的通知阶段
func StageOf(err error) ErrorStage {
	var hashErr *HashError
	var delErr *DeletionError
	switch {
	case errors.As(err, &hashErr):
		return StageHashing
	case errors.As(err, &delErr):
		return StageDeletion
	default:
		return StageMove
	}
}
