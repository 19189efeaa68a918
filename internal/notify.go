package internal

// Notifier 接收运行过程中的进度和错误通知
//
// 通知在运行所在的 goroutine 中同步调用，实现方如果需要响应界面应自行转发。
type Notifier interface {
	HashProgress(processed, total int, etaSeconds float64)
	MoveProgress(processed, total int)
	FileError(stage ErrorStage, path, message string)
	Done(status RunStatus, duplicates, nonDuplicates int)
}

// NopNotifier 丢弃所有通知
type NopNotifier struct{}

func (NopNotifier) HashProgress(int, int, float64)       {}
func (NopNotifier) MoveProgress(int, int)                {}
func (NopNotifier) FileError(ErrorStage, string, string) {}
func (NopNotifier) Done(RunStatus, int, int)             {}
