package main

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.showHelp {
		// Recreated each render so the background reflects the latest state.
		helpOverlay := overlay.New(
			helpView{model: &m},
			mainView{model: &m},
			overlay.Center,
			overlay.Center,
			0,
			0,
		)
		return helpOverlay.View()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderBlockMap(),
		m.renderBlockTable(),
		m.renderStatus(),
	)
}

// renderHeader renders the title, the source file and the replay position
func (m Model) renderHeader() string {
	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("Heap Viewer"),
		"  ",
		pathStyle.Render(filepath.Base(m.source)),
	)
	if m.tr == nil {
		return lipgloss.JoinVertical(lipgloss.Left, header, "saved heap (read-only)")
	}

	line := fmt.Sprintf("op %s/%d  %s/%s",
		statusCountStyle.Render(fmt.Sprint(m.pos())), m.total(), m.opts.Strategy, m.opts.Realloc)
	if m.lastOp != "" {
		line += "  last: " + m.lastOp
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, line)
}

func (m Model) renderBlockMap() string {
	width := max(m.width-4, 10)
	cells := mapCells(m.blocks, m.a.HeapSize(), width, m.touched)
	return paneStyle.Width(width).Render(renderBar(cells))
}

// blockRows is the number of table rows that fit under the header and map.
func (m Model) blockRows() int {
	return max(m.height-12, 3)
}

func (m Model) renderBlockTable() string {
	var sb strings.Builder
	sb.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-10s %-10s %-10s %s", "PAYLOAD", "SIZE", "PAYLOAD B", "STATE")))
	sb.WriteString("\n")

	end := min(m.scroll+m.blockRows(), len(m.blocks))
	for _, b := range m.blocks[m.scroll:end] {
		state := "free"
		if b.Allocated {
			state = "alloc"
		}
		row := fmt.Sprintf("%-10d %-10d %-10d %s", b.Ptr, b.Size, b.PayloadSize(), state)
		if m.touched != 0 && b.Ptr == m.touched {
			row = tableSelectedStyle.Render(row)
		}
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	if rest := len(m.blocks) - end; rest > 0 {
		sb.WriteString(fmt.Sprintf("... %d more\n", rest))
	}
	return sb.String()
}

func (m Model) renderStatus() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("heap %d B", m.a.HeapSize()))
	if m.player != nil {
		res := m.player.Result()
		parts = append(parts,
			fmt.Sprintf("live %d B", m.player.LivePayload()),
			fmt.Sprintf("peak util %.1f%%", res.Utilization*100))
	}

	switch {
	case m.stepErr != nil:
		parts = append(parts, errorStyle.Render(m.stepErr.Error()))
	case m.tr != nil && m.pos() == m.total():
		parts = append(parts, okStyle.Render("trace complete"))
	}
	if m.statusMessage != "" {
		parts = append(parts, m.statusMessage)
	}

	status := statusStyle.Width(m.width).Render(strings.Join(parts, " │ "))
	return lipgloss.JoinVertical(lipgloss.Left, status, m.help.View(m.keys))
}

// helpView is the foreground of the help overlay.
type helpView struct{ model *Model }

func (h helpView) Init() tea.Cmd                       { return nil }
func (h helpView) Update(tea.Msg) (tea.Model, tea.Cmd) { return h, nil }
func (h helpView) View() string {
	body := helpTitleStyle.Render("Keyboard Shortcuts") + "\n" +
		h.model.help.FullHelpView(h.model.keys.FullHelp())
	return modalStyle.Render(body)
}

// mainView wraps the main UI for use as overlay background
type mainView struct{ model *Model }

func (v mainView) Init() tea.Cmd                       { return nil }
func (v mainView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v mainView) View() string                        { return v.model.renderMain() }
