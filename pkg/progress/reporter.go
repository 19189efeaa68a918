package progress

import (
	"sync"
	"time"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

// DefaultStep 进度日志的最小百分比间隔
const DefaultStep = 10

// Reporter 把运行通知写入日志，并累计每个阶段的错误数
type Reporter struct {
	mu   sync.RWMutex
	step int

	hashSeen, hashLogged int
	moveSeen, moveLogged int

	errors        map[internal.ErrorStage]int
	status        internal.RunStatus
	duplicates    int
	nonDuplicates int
	finished      bool
}

func NewReporter(step int) *Reporter {
	if step <= 0 || step > 100 {
		step = DefaultStep
	}
	return &Reporter{
		step:       step,
		hashLogged: -1,
		moveLogged: -1,
		errors:     make(map[internal.ErrorStage]int),
	}
}

func (r *Reporter) HashProgress(processed, total int, etaSeconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 计数回退说明进入了下一棵树的哈希阶段
	if processed <= r.hashSeen {
		r.hashLogged = -1
	}
	r.hashSeen = processed

	pct, ok := r.due(processed, total, &r.hashLogged)
	if !ok {
		return
	}
	eta := time.Duration(etaSeconds * float64(time.Second)).Round(time.Second)
	logger.Get().Info().Msgf("哈希进度: %d/%d (%d%%)，预计剩余 %v", processed, total, pct, eta)
}

func (r *Reporter) MoveProgress(processed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if processed <= r.moveSeen {
		r.moveLogged = -1
	}
	r.moveSeen = processed

	pct, ok := r.due(processed, total, &r.moveLogged)
	if !ok {
		return
	}
	logger.Get().Info().Msgf("整理进度: %d/%d (%d%%)", processed, total, pct)
}

// due 到达下一个百分比间隔或最后一个文件时返回 true
func (r *Reporter) due(processed, total int, logged *int) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	pct := processed * 100 / total
	if processed < total && *logged >= 0 && pct < *logged+r.step {
		return pct, false
	}
	*logged = pct
	return pct, true
}

func (r *Reporter) FileError(stage internal.ErrorStage, path, message string) {
	r.mu.Lock()
	r.errors[stage]++
	r.mu.Unlock()

	logger.Get().Error().Str("stage", string(stage)).Msgf("处理文件失败: %s: %s", path, message)
}

func (r *Reporter) Done(status internal.RunStatus, duplicates, nonDuplicates int) {
	r.mu.Lock()
	r.status = status
	r.duplicates = duplicates
	r.nonDuplicates = nonDuplicates
	r.finished = true
	r.mu.Unlock()

	switch status {
	case internal.StatusSuccess:
		logger.Get().Info().Msgf("运行完成: 重复 %d 个，非重复 %d 个", duplicates, nonDuplicates)
	case internal.StatusAborted:
		logger.Get().Warn().Msg("运行已取消，已移动的文件不会回滚")
	default:
		logger.Get().Error().Msg("运行出错，最终状态未知，请手动检查目标目录")
	}
}

// Errors 返回各阶段的错误数
func (r *Reporter) Errors() map[internal.ErrorStage]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[internal.ErrorStage]int, len(r.errors))
	for k, v := range r.errors {
		out[k] = v
	}
	return out
}

// Result 返回结束通知的内容，运行尚未结束时 ok 为 false
func (r *Reporter) Result() (status internal.RunStatus, duplicates, nonDuplicates int, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status, r.duplicates, r.nonDuplicates, r.finished
}

// Multi 把通知转发给多个接收者
type Multi []internal.Notifier

func (m Multi) HashProgress(processed, total int, etaSeconds float64) {
	for _, n := range m {
		n.HashProgress(processed, total, etaSeconds)
	}
}

func (m Multi) MoveProgress(processed, total int) {
	for _, n := range m {
		n.MoveProgress(processed, total)
	}
}

func (m Multi) FileError(stage internal.ErrorStage, path, message string) {
	for _, n := range m {
		n.FileError(stage, path, message)
	}
}

func (m Multi) Done(status internal.RunStatus, duplicates, nonDuplicates int) {
	for _, n := range m {
		n.Done(status, duplicates, nonDuplicates)
	}
}
