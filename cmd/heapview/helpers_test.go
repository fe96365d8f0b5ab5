package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/internal/testutil"
)

const shortTrace = testutil.ShortTrace

func writeTrace(t *testing.T, body string) string {
	t.Helper()
	return testutil.WriteTrace(t, "short.rep", body)
}

// TestHelper drives a Model through Update like the bubbletea runtime would.
type TestHelper struct {
	model   Model
	lastCmd tea.Cmd
	copied  []string
}

func NewTestHelper(t *testing.T, m Model) *TestHelper {
	t.Helper()
	h := &TestHelper{}
	m.copyFn = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	h.model = m
	t.Cleanup(func() { _ = h.model.Close() })
	return h
}

// SendKey simulates a special key press
func (h *TestHelper) SendKey(keyType tea.KeyType) *TestHelper {
	return h.send(tea.KeyMsg{Type: keyType})
}

// SendKeyRune simulates a character key press
func (h *TestHelper) SendKeyRune(r rune) *TestHelper {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// SendWindowSize simulates a window resize
func (h *TestHelper) SendWindowSize(width, height int) *TestHelper {
	return h.send(tea.WindowSizeMsg{Width: width, Height: height})
}

func (h *TestHelper) send(msg tea.Msg) *TestHelper {
	updated, cmd := h.model.Update(msg)
	h.model = updated.(Model)
	h.lastCmd = cmd
	return h
}

func (h *TestHelper) GetModel() Model { return h.model }

func (h *TestHelper) GetView() string { return h.model.View() }
