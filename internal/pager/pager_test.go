package pager

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func sized(t *testing.T, m Model, w, h int) Model {
	t.Helper()
	next, cmd := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	require.Nil(t, cmd)
	return next.(Model)
}

func TestViewBeforeSize(t *testing.T) {
	require.Empty(t, New("a.c", "int x;").View())
}

func TestViewShowsTitleAndContent(t *testing.T) {
	m := sized(t, New("demo.c", "int x;\nint y;"), 40, 10)
	view := m.View()
	require.Contains(t, view, "demo.c")
	require.Contains(t, view, "int x;")
	require.Contains(t, view, "q quit")
}

func TestQuitKeys(t *testing.T) {
	m := sized(t, New("a.c", "x"), 20, 5)
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		require.NotNil(t, cmd, key.String())
		require.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestScrollKeys(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "line"
	}
	m := sized(t, New("a.c", strings.Join(lines, "\n")), 20, 12)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	m = next.(Model)
	require.True(t, m.vp.AtBottom())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	m = next.(Model)
	require.True(t, m.vp.AtTop())
}

func TestResizeKeepsContent(t *testing.T) {
	m := sized(t, New("a.c", "int x;"), 20, 5)
	m = sized(t, m, 60, 20)
	require.Equal(t, 60, m.vp.Width)
	require.Equal(t, 18, m.vp.Height)
}

func TestTruncateText(t *testing.T) {
	require.Equal(t, "", truncateText("abc", 0))
	require.Equal(t, "abc", truncateText("abc", 5))
	require.Equal(t, "ab...", truncateText("abcdefgh", 5))
	require.Equal(t, "a b", truncateText("a\nb", 5))
}
