package tui

import "github.com/moyu-x/file-organiser/internal"

type hashProgressMsg struct {
	processed int
	total     int
	eta       float64
}

type moveProgressMsg struct {
	processed int
	total     int
}

type fileErrorMsg struct {
	stage   internal.ErrorStage
	path    string
	message string
}

type doneMsg struct {
	status        internal.RunStatus
	duplicates    int
	nonDuplicates int
}

// finishedMsg 后台任务已经返回
type finishedMsg struct {
	err error
}
