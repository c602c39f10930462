package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/ppimalaysia/regform/pkg/selection"
)

const formSteps = 3

// View renders the current step and records the frame for hit testing
func (m *FormModel) View() string {
	if m.help.IsVisible() {
		m.scr.set(nil, 0)
		return m.help.View()
	}

	t := m.theme
	var lines []line

	title := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).Render("PPI Malaysia · Student Registration")
	lines = append(lines, plain(title))
	lines = append(lines, plain(RenderStepBadge(t, m.stepNumber(), formSteps, m.step.String())))
	lines = append(lines, plain(RenderDivider(t, m.dividerWidth())))

	switch m.step {
	case stepIdentity:
		lines = append(lines, m.identityLines()...)
	case stepContact:
		lines = append(lines, m.contactLines()...)
	case stepConfirm:
		lines = append(lines, m.confirmLines()...)
	case stepSummary, stepDone:
		for _, r := range strings.Split(m.summary.View(), "\n") {
			lines = append(lines, plain(r))
		}
	case stepProfile:
		lines = append(lines, m.profileLines()...)
	}

	lines = append(lines, plain(""))
	if m.status != "" {
		style := t.Renderer.NewStyle().Foreground(t.Open)
		if m.statusErr {
			style = style.Foreground(t.Blocked)
		}
		lines = append(lines, plain(style.Render(m.status)))
	}
	lines = append(lines, plain(RenderSubtleDivider(t, m.dividerWidth())))
	lines = append(lines, plain(t.Renderer.NewStyle().Foreground(t.Subtext).Render(m.footer())))

	m.scr.set(lines, 0)
	return joinLines(lines)
}

func (m *FormModel) stepNumber() int {
	switch m.step {
	case stepContact:
		return 2
	case stepSummary, stepDone, stepProfile:
		return 3
	}
	return 1
}

func (m *FormModel) dividerWidth() int {
	w := m.width - 2
	if w > 70 {
		w = 70
	}
	return w
}

func (m *FormModel) fieldWidth() int {
	w := m.width - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m *FormModel) footer() string {
	switch m.step {
	case stepConfirm:
		return "←/→ choose • enter confirm • f1 help • ctrl+c quit"
	case stepSummary:
		return "enter submit • ctrl+b back • ctrl+y copy • f1 help • ctrl+c quit"
	case stepDone:
		if m.canOpenProfile() {
			return "p profile • enter exit • ctrl+y copy"
		}
		return "enter exit • ctrl+y copy"
	case stepProfile:
		if m.prof.mode == profileView {
			return "u edit university • e edit personal • ctrl+r reload • ctrl+y copy • ctrl+c quit"
		}
		return "tab next • ctrl+s save • esc cancel • f1 help • ctrl+c quit"
	}
	hint := "tab next • ctrl+s continue • f1 help • ctrl+c quit"
	if m.step == stepContact {
		hint = "tab next • ctrl+s review • ctrl+b back • f1 help • ctrl+c quit"
	}
	return hint
}

func (m *FormModel) textFieldLines(title, name string, ti textinput.Model, el selection.Element, f field) []line {
	return m.boxLines(title, m.focus == f, m.missing[name], ti.View(), el)
}

// boxLines renders a labelled input box tagged with el
func (m *FormModel) boxLines(title string, focused, missing bool, content string, el selection.Element) []line {
	t := m.theme
	out := []line{plain(RenderFieldLabel(t, title, true, missing))}
	box := inputBoxStyle(t, focused, m.fieldWidth()-2).Render(content)
	return append(out, tagged(box, el)...)
}

func (m *FormModel) identityLines() []line {
	var out []line
	out = append(out, m.textFieldLines("Full name", "fullname", m.name, elName, fieldName)...)
	out = append(out, m.textFieldLines("Date of birth", "dob", m.dob, elDOB, fieldDOB)...)
	out = append(out, m.textFieldLines("Passport number", "passport", m.passport, elPassport, fieldPassport)...)
	out = append(out, m.prefix.lines()...)
	out = append(out, m.textFieldLines("Phone number", "phone_number", m.phone, elPhone, fieldPhone)...)
	out = append(out, m.university.lines()...)
	return out
}

func (m *FormModel) contactLines() []line {
	var out []line
	out = append(out, m.textFieldLines("Email", "email", m.email, elEmail, fieldEmail)...)
	out = append(out, m.postcode.lines()...)
	return out
}

func (m *FormModel) confirmLines() []line {
	var out []line
	for _, r := range strings.Split(m.summary.View(), "\n") {
		out = append(out, plain(r))
	}
	if m.confirm != nil {
		for _, r := range strings.Split(m.confirm.View(), "\n") {
			out = append(out, plain(r))
		}
	}
	return out
}
