package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moyu-x/file-organiser/internal"
	"github.com/moyu-x/file-organiser/pkg/logger"
)

type teaModel struct {
	m *model
}

func (tm teaModel) Init() tea.Cmd {
	return tm.m.Init()
}

func (tm teaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	tm.m.Update(msg)
	return tm, tm.m.cmd
}

func (tm teaModel) View() string {
	return tm.m.View()
}

// Monitor 把运行通知转发给界面，可以在任意 goroutine 中调用
type Monitor struct {
	p *tea.Program
}

var _ internal.Notifier = (*Monitor)(nil)

func (mon *Monitor) HashProgress(processed, total int, etaSeconds float64) {
	mon.p.Send(hashProgressMsg{processed: processed, total: total, eta: etaSeconds})
}

func (mon *Monitor) MoveProgress(processed, total int) {
	mon.p.Send(moveProgressMsg{processed: processed, total: total})
}

func (mon *Monitor) FileError(stage internal.ErrorStage, path, message string) {
	mon.p.Send(fileErrorMsg{stage: stage, path: path, message: message})
}

func (mon *Monitor) Done(status internal.RunStatus, duplicates, nonDuplicates int) {
	mon.p.Send(doneMsg{status: status, duplicates: duplicates, nonDuplicates: nonDuplicates})
}

// Run 显示进度界面，并在后台执行 work
//
// cancel 在用户按下 Ctrl+C 时调用；界面退出后会等待 work 返回。
func Run(title string, work func(n internal.Notifier) error, cancel func()) error {
	logger.Get().Info().Msg("启动 TUI 界面")

	m := newModel(title, cancel)
	p := tea.NewProgram(teaModel{m: m}, tea.WithAltScreen())

	done := make(chan error, 1)
	go func() {
		err := work(&Monitor{p: p})
		p.Send(finishedMsg{err: err})
		done <- err
	}()

	if _, err := p.Run(); err != nil {
		logger.Get().Error().Err(err).Msg("TUI 运行错误")
		cancel()
		<-done
		return err
	}

	cancel()
	workErr := <-done
	logger.Get().Info().Msg("TUI 正常退出")
	return workErr
}
