package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moyu-x/file-organiser/pkg/logger"
)

// Update 处理一条消息，产生的命令保存在 m.cmd
func (m *model) Update(msg tea.Msg) {
	m.cmd = nil

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.handleResize(msg)

	case hashProgressMsg:
		// 计数回退说明开始了下一棵树
		if msg.processed <= m.hashProcessed || m.hashRound == 0 {
			m.hashRound++
		}
		m.hashProcessed = msg.processed
		m.hashTotal = msg.total
		m.eta = msg.eta

	case moveProgressMsg:
		m.phase = PhaseMoving
		m.moveProcessed = msg.processed
		m.moveTotal = msg.total

	case fileErrorMsg:
		m.errCount++
		m.errorList.InsertItem(len(m.errorList.Items()), errorItem{stage: msg.stage, path: msg.path, message: msg.message})

	case doneMsg:
		m.phase = PhaseComplete
		m.status = msg.status
		m.duplicates = msg.duplicates
		m.nonDuplicates = msg.nonDuplicates
		m.elapsed = time.Since(m.startTime)

	case finishedMsg:
		m.finished = true
		m.err = msg.err
		if m.phase != PhaseComplete {
			m.phase = PhaseComplete
			m.elapsed = time.Since(m.startTime)
		}
		if m.cancelling {
			logger.Get().Info().Msg("任务已取消，退出界面")
			m.cmd = tea.Quit
		}

	case spinner.TickMsg:
		if m.phase != PhaseComplete {
			m.spinner, m.cmd = m.spinner.Update(msg)
		}
	}
}

func (m *model) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c":
		if m.finished {
			m.cmd = tea.Quit
			return
		}
		if !m.cancelling {
			logger.Get().Warn().Msg("用户请求取消")
			m.cancelling = true
			m.cancel()
		}

	case "q", "enter", "esc":
		if m.finished {
			m.cmd = tea.Quit
		}

	default:
		if m.phase == PhaseComplete {
			m.errorList, m.cmd = m.errorList.Update(msg)
		}
	}
}

func (m *model) handleResize(msg tea.WindowSizeMsg) {
	width := msg.Width
	if width > 10 {
		m.progressBar.Width = width - 10
	}
	m.errorList.SetWidth(width - 4)
	if msg.Height > 20 {
		m.errorList.SetHeight(msg.Height - 16)
	}
}

func (m *model) hashPercent() float64 {
	if m.hashTotal == 0 {
		return 0
	}
	return float64(m.hashProcessed) / float64(m.hashTotal)
}

func (m *model) movePercent() float64 {
	if m.moveTotal == 0 {
		return 0
	}
	return float64(m.moveProcessed) / float64(m.moveTotal)
}
