// Package pager shows rendered terminal output in a scrollable viewer.
package pager

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const chromeLines = 2

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
	footerStyle = lipgloss.NewStyle().Faint(true)
)

type Model struct {
	title   string
	content string
	vp      viewport.Model
	ready   bool
	width   int
	height  int
}

func New(title, content string) Model {
	return Model{title: title, content: content}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(msg.Height-chromeLines, 1)
		if !m.ready {
			m.vp = viewport.New(msg.Width, h)
			m.vp.SetContent(m.content)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = h
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "g", "home":
			m.vp.GotoTop()
			return m, nil
		case "G", "end":
			m.vp.GotoBottom()
			return m, nil
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return ""
	}
	header := titleStyle.Render(truncateText(" "+m.title+" ", m.width))
	status := fmt.Sprintf("%3.f%%  j/k scroll  g/G top/bottom  q quit", m.vp.ScrollPercent()*100)
	footer := footerStyle.Render(truncateText(status, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.vp.View(), footer)
}

// Run blocks until the user quits the viewer.
func Run(title, content string, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(title, content), tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return nil
}

func truncateText(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", "    ")

	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
