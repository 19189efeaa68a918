package internal

import "time"

// FileHandle 扫描时记录的文件快照，之后文件可能被修改或删除
type FileHandle struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// RunStatus 一次运行的最终状态
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusAborted RunStatus = "aborted"
	StatusError   RunStatus = "error"
)

// ErrorStage 单个文件出错时所处的阶段
type ErrorStage string

const (
	StageHashing  ErrorStage = "Hashing"
	StageMove     ErrorStage = "MoveError"
	StageDeletion ErrorStage = "DeletionError"
)

// 处理统计
type ProcessStats struct {
	Duplicates    int
	NonDuplicates int
	Skipped       int
	Errors        int
	SweptFolders  int
	StartTime     time.Time
	EndTime       time.Time
}

// 合并统计
type MergeStats struct {
	Deleted    int
	Moved      int
	Errors     int
	FreedSpace int64
	StartTime  time.Time
	EndTime    time.Time
}

// JournalEntry 操作日志中的一条记录
type JournalEntry struct {
	RunID       string
	Action      string
	Source      string
	Destination string
	Digest      string
	Error       string
	CreatedAt   time.Time
}

// 操作日志中的动作类型
const (
	ActionCategorise = "categorise"
	ActionDuplicate  = "duplicate"
	ActionDelete     = "to-be-deleted"
	ActionSweep      = "sweep"
	ActionMerge      = "merge-move"
	ActionRemove     = "merge-remove"
	ActionFailed     = "failed"
)

// RunRecord 一次运行的汇总
type RunRecord struct {
	RunID         string
	Kind          string
	Status        RunStatus
	Duplicates    int
	NonDuplicates int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Journal 记录每次移动和删除，便于运行中断后人工核对
type Journal interface {
	Record(entry JournalEntry) error
	RecordRun(run RunRecord) error
}
