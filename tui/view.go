package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/moyu-x/file-organiser/internal"
)

func (m *model) View() string {
	switch m.phase {
	case PhaseHashing:
		return m.hashingView()
	case PhaseMoving:
		return m.movingView()
	case PhaseComplete:
		return m.completeView()
	default:
		return "未知状态"
	}
}

func (m *model) hashingView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🔍 "+m.title) + "\n\n")

	label := "正在索引目标目录"
	if m.hashRound > 1 {
		label = "正在计算源文件哈希"
	}
	b.WriteString(m.spinner.View() + " " + labelStyle.Render(label) + "\n\n")
	b.WriteString(m.progressBar.ViewAs(m.hashPercent()) + "\n")
	b.WriteString(fmt.Sprintf("  %d / %d，预计剩余 %v\n", m.hashProcessed, m.hashTotal,
		time.Duration(m.eta*float64(time.Second)).Round(time.Second)))

	b.WriteString(m.footer())
	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m *model) movingView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🔄 "+m.title) + "\n\n")
	b.WriteString(m.spinner.View() + " " + labelStyle.Render("正在整理文件") + "\n\n")
	b.WriteString(m.progressBar.ViewAs(m.movePercent()) + "\n")
	b.WriteString(fmt.Sprintf("  %d / %d\n", m.moveProcessed, m.moveTotal))

	b.WriteString(m.footer())
	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m *model) footer() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.errCount > 0 {
		b.WriteString(errorCountStyle.Render(fmt.Sprintf("  失败: %d 个文件", m.errCount)) + "\n")
	}
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)) + "\n")
	if m.cancelling {
		b.WriteString(hintStyle.Render("正在取消，等待当前任务结束...") + "\n")
	} else {
		b.WriteString(hintStyle.Render("Ctrl+C 取消") + "\n")
	}
	return b.String()
}

func (m *model) completeView() string {
	var b strings.Builder

	switch {
	case m.status == internal.StatusSuccess:
		b.WriteString(successTitleStyle.Render("✅ 处理完成！") + "\n\n")
	case m.status == internal.StatusAborted:
		b.WriteString(warnTitleStyle.Render("⚠️ 已取消，已移动的文件不会回滚") + "\n\n")
	default:
		b.WriteString(errorTitleStyle.Render("❌ 运行出错，请手动检查目标目录") + "\n\n")
	}

	b.WriteString(statsBoxStyle.Render(m.renderFinalStats()) + "\n\n")

	if len(m.errorList.Items()) > 0 {
		b.WriteString(m.errorList.View() + "\n\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", 60)) + "\n")
	if m.finished {
		b.WriteString(hintStyle.Render("按 Enter 或 q 退出") + "\n")
	} else {
		b.WriteString(hintStyle.Render("正在收尾...") + "\n")
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m *model) renderFinalStats() string {
	var b strings.Builder
	b.WriteString("📊 最终统计：\n\n")
	b.WriteString(fmt.Sprintf("  • 重复文件：     %d 个\n", m.duplicates))
	b.WriteString(fmt.Sprintf("  • 非重复文件：   %d 个\n", m.nonDuplicates))
	b.WriteString(fmt.Sprintf("  • 失败：         %d 个\n", m.errCount))
	b.WriteString(fmt.Sprintf("  • 总耗时：       %s\n", m.elapsed.Round(time.Millisecond)))
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  • 错误：         %v\n", m.err))
	}
	return b.String()
}
