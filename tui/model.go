package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moyu-x/file-organiser/internal"
)

type Phase int

const (
	PhaseHashing Phase = iota
	PhaseMoving
	PhaseComplete
)

type model struct {
	title  string
	phase  Phase
	cancel func()

	hashProcessed int
	hashTotal     int
	hashRound     int
	eta           float64

	moveProcessed int
	moveTotal     int

	status        internal.RunStatus
	duplicates    int
	nonDuplicates int
	errCount      int
	cancelling    bool
	finished      bool
	err           error
	startTime     time.Time
	elapsed       time.Duration

	errorList   list.Model
	progressBar progress.Model
	spinner     spinner.Model

	// cmd Update 产生的命令，由 teaModel 返回给 bubbletea
	cmd tea.Cmd
}

func newModel(title string, cancel func()) *model {
	if cancel == nil {
		cancel = func() {}
	}

	errorList := list.New([]list.Item{}, list.NewDefaultDelegate(), 60, 10)
	errorList.Title = "处理失败的文件"
	errorList.SetShowStatusBar(false)
	errorList.SetFilteringEnabled(false)
	errorList.Styles.Title = titleStyle

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.PercentageStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Width(4)

	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		FPS:    time.Second / 10,
	}
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &model{
		title:       title,
		phase:       PhaseHashing,
		cancel:      cancel,
		errorList:   errorList,
		progressBar: progressBar,
		spinner:     s,
		startTime:   time.Now(),
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

type errorItem struct {
	stage   internal.ErrorStage
	path    string
	message string
}

func (e errorItem) Title() string       { return e.path }
func (e errorItem) Description() string { return string(e.stage) + ": " + e.message }
func (e errorItem) FilterValue() string { return e.path }
