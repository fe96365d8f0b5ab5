package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Help) {
				m.showHelp = false
				return m, nil
			}
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		m.statusMessage = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case m.err != nil:
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Next):
			m.seek(m.pos() + 1)
		case key.Matches(msg, m.keys.Prev):
			m.seek(m.pos() - 1)
		case key.Matches(msg, m.keys.First):
			m.seek(0)
		case key.Matches(msg, m.keys.Last):
			m.seek(m.total())
		case key.Matches(msg, m.keys.Up):
			m.scroll = max(0, m.scroll-1)
		case key.Matches(msg, m.keys.Down):
			m.scroll = min(m.scroll+1, max(0, len(m.blocks)-1))
		case key.Matches(msg, m.keys.Copy):
			m.copyBlockMap()
		}
	}
	return m, nil
}
