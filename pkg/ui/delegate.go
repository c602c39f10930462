package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// OptionDelegate renders one dropdown option per row
type OptionDelegate struct {
	Theme   Theme
	Current string // value of the current selection, marked with a check
}

func (d OptionDelegate) Height() int {
	return 1
}

func (d OptionDelegate) Spacing() int {
	return 0
}

func (d OptionDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d OptionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(OptionItem)
	if !ok {
		return
	}
	t := d.Theme

	prefix := "  "
	style := t.Renderer.NewStyle().Foreground(t.Base.GetForeground())
	if index == m.Index() {
		prefix = "▸ "
		style = style.Foreground(t.Primary).Bold(true).Background(t.Highlight)
	}

	mark := ""
	if i.Value == d.Current {
		mark = " ✓"
	}

	available := m.Width() - runewidth.StringWidth(prefix+mark)
	if available < 8 {
		available = 8
	}
	label := runewidth.Truncate(i.Label, available, "…")

	fmt.Fprint(w, style.Render(prefix+label+mark))
}
