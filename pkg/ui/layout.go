package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppimalaysia/regform/pkg/selection"
)

// line is one rendered row tagged with the element it belongs to, so mouse
// presses can be mapped back onto controls.
type line struct {
	text   string
	el     selection.Element
	option int // option index within a menu, or -1
}

func plain(text string) line {
	return line{text: text, option: -1}
}

// tagged splits a (possibly multi-line) block and tags every row with el
func tagged(block string, el selection.Element) []line {
	rows := strings.Split(block, "\n")
	out := make([]line, len(rows))
	for i, r := range rows {
		out[i] = line{text: r, el: el, option: -1}
	}
	return out
}

// hit is the result of a hit test
type hit struct {
	el     selection.Element
	option int
}

// screen is the last rendered frame. It is shared by pointer between the
// model value and View so the hit map survives value copies.
type screen struct {
	lines []line
	left  int // horizontal offset of the frame
}

func (s *screen) set(lines []line, left int) {
	s.lines = lines
	s.left = left
}

// hitTest maps a terminal cell to the element rendered there. Rows outside
// the frame, or past the end of a row's visible text, hit nothing.
func (s *screen) hitTest(x, y int) hit {
	if s == nil || y < 0 || y >= len(s.lines) {
		return hit{option: -1}
	}
	ln := s.lines[y]
	if ln.el == "" {
		return hit{option: -1}
	}
	if x < s.left || x >= s.left+lipgloss.Width(ln.text) {
		return hit{option: -1}
	}
	return hit{el: ln.el, option: ln.option}
}

func joinLines(lines []line) string {
	rows := make([]string, len(lines))
	for i, l := range lines {
		rows[i] = l.text
	}
	return strings.Join(rows, "\n")
}
