package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/ppimalaysia/regform/pkg/selection"
)

// maxHintCandidates bounds the fuzzy "did you mean" scan
const maxHintCandidates = 20000

// Typeahead renders a selection.Control as a bordered text input with a
// drop-down menu of matches. The control owns all selection state; the
// typeahead only mirrors its text into a textinput and draws it.
type Typeahead[R any] struct {
	id       string
	title    string
	dataset  string
	required bool

	ctrl     *selection.Control[R]
	label    func(R) string
	sub      *selection.Subscription
	onCommit func(selection.Committed)

	input   textinput.Model
	theme   Theme
	width   int
	focused bool
	loading bool
	missing bool
	hint    string
}

// TypeaheadElements returns the element ids a typeahead registers
func TypeaheadElements(id string) selection.Elements {
	return selection.Elements{
		Input: selection.Element(id + "-input"),
		Menu:  selection.Element(id + "-menu"),
		Clear: selection.Element(id + "-clear"),
	}
}

// NewTypeahead creates a typeahead over src. dataset names the shared source
// so load notifications can be routed back.
func NewTypeahead[R any](id, title, dataset string, src selection.Source[R], opts selection.Options[R], q selection.Queue, theme Theme) *Typeahead[R] {
	opts.Elements = TypeaheadElements(id)
	opts.Queue = q

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128
	ti.Placeholder = opts.Placeholder

	return &Typeahead[R]{
		id:       id,
		title:    title,
		dataset:  dataset,
		required: true,
		ctrl:     selection.New(src, opts),
		label:    opts.Label,
		input:    ti,
		theme:    theme,
		width:    50,
	}
}

// Init wires the control onto bus
func (t *Typeahead[R]) Init(bus *selection.PointerBus) {
	t.sub = t.ctrl.Init(bus)
}

// Dispose detaches the control
func (t *Typeahead[R]) Dispose() {
	t.ctrl.Dispose()
	t.sub.Unsubscribe()
}

// Control exposes the underlying state machine
func (t *Typeahead[R]) Control() *selection.Control[R] {
	return t.ctrl
}

// Elements returns the element ids this typeahead owns
func (t *Typeahead[R]) Elements() selection.Elements {
	return t.ctrl.Elements()
}

// Committed returns the locked-in selection
func (t *Typeahead[R]) Committed() (selection.Committed, bool) {
	return t.ctrl.Committed()
}

// OnCommit registers fn to run after every commit, whether it came from a
// key, a click or Select.
func (t *Typeahead[R]) OnCommit(fn func(selection.Committed)) {
	t.onCommit = fn
}

// SetWidth sets the rendered width
func (t *Typeahead[R]) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	t.width = w
	t.input.Width = w - 6
}

// SetTheme swaps the theme after a config reload
func (t *Typeahead[R]) SetTheme(theme Theme) {
	t.theme = theme
}

// SetMissing flags the field as failing validation
func (t *Typeahead[R]) SetMissing(missing bool) {
	t.missing = missing
}

// Loading reports whether input is waiting on the dataset
func (t *Typeahead[R]) Loading() bool {
	return t.loading
}

// Hint returns the current "no match" hint
func (t *Typeahead[R]) Hint() string {
	return t.hint
}

// Focus gives the typeahead keyboard focus.
func (t *Typeahead[R]) Focus(ctx context.Context) tea.Cmd {
	t.focused = true
	cmd := t.input.Focus()
	if t.ctrl.Locked() {
		return cmd
	}
	if t.ctrl.NeedsLoad(t.input.Value()) {
		return tea.Batch(cmd, t.startLoad(ctx))
	}
	t.ctrl.Focus(ctx)
	return cmd
}

// Blur removes keyboard focus. The menu closes after the grace period.
func (t *Typeahead[R]) Blur() {
	t.focused = false
	t.input.Blur()
	t.ctrl.Blur()
}

// Update handles a key while the typeahead is focused. It reports whether
// the key was consumed.
func (t *Typeahead[R]) Update(ctx context.Context, msg tea.KeyMsg, keys KeyMap) (bool, tea.Cmd) {
	if t.ctrl.Locked() {
		if key.Matches(msg, keys.Clear) {
			t.Clear()
			return true, nil
		}
		// Read-only while locked
		return msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace || msg.Type == tea.KeySpace, nil
	}

	switch {
	case key.Matches(msg, keys.Down):
		t.ctrl.ArrowDown()
		return true, nil
	case key.Matches(msg, keys.Up):
		t.ctrl.ArrowUp()
		return true, nil
	case key.Matches(msg, keys.Choose):
		if t.ctrl.Enter() {
			t.afterCommit()
			return true, nil
		}
		return t.ctrl.MenuOpen(), nil
	case key.Matches(msg, keys.Close):
		if !t.ctrl.MenuOpen() {
			return false, nil
		}
		t.ctrl.Escape()
		return true, nil
	}

	before := t.input.Value()
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	if t.input.Value() == before {
		return msg.Type == tea.KeyRunes, cmd
	}
	return true, tea.Batch(cmd, t.textChanged(ctx))
}

// SetText replaces the input text as if typed
func (t *Typeahead[R]) SetText(ctx context.Context, text string) tea.Cmd {
	if t.ctrl.Locked() {
		return nil
	}
	t.input.SetValue(text)
	return t.textChanged(ctx)
}

func (t *Typeahead[R]) textChanged(ctx context.Context) tea.Cmd {
	text := t.input.Value()
	if t.ctrl.NeedsLoad(text) {
		return t.startLoad(ctx)
	}
	t.ctrl.TextChanged(ctx, text)
	t.updateHint()
	return nil
}

func (t *Typeahead[R]) startLoad(ctx context.Context) tea.Cmd {
	if t.loading {
		return nil
	}
	t.loading = true
	return warmCmd(ctx, t.dataset, t.ctrl)
}

// HandleLoaded replays the pending input once the dataset is in
func (t *Typeahead[R]) HandleLoaded(ctx context.Context, dataset string) {
	if dataset != t.dataset || !t.loading || !t.ctrl.Ready() {
		return
	}
	t.loading = false
	if t.focused {
		t.ctrl.TextChanged(ctx, t.input.Value())
		t.updateHint()
	}
}

// ClickOption commits the rendered option at index i
func (t *Typeahead[R]) ClickOption(i int) bool {
	if !t.ctrl.ClickOption(i) {
		return false
	}
	t.afterCommit()
	return true
}

// Select commits value/label directly
func (t *Typeahead[R]) Select(value, label string) {
	t.ctrl.Select(value, label)
	if t.ctrl.Locked() {
		t.afterCommit()
	}
}

// Clear releases the committed selection
func (t *Typeahead[R]) Clear() {
	t.ctrl.Clear()
	t.input.SetValue("")
	t.input.Placeholder = t.ctrl.Placeholder()
	t.hint = ""
}

func (t *Typeahead[R]) afterCommit() {
	t.input.SetValue("")
	t.input.Placeholder = t.ctrl.Placeholder()
	t.hint = ""
	t.missing = false
	if c, ok := t.ctrl.Committed(); ok && t.onCommit != nil {
		t.onCommit(c)
	}
}

// updateHint suggests the closest label when the term matched nothing.
// This is a hint only; the menu itself never ranks.
func (t *Typeahead[R]) updateHint() {
	t.hint = ""
	term := strings.TrimSpace(t.input.Value())
	if t.ctrl.MenuOpen() || len(t.ctrl.Options()) > 0 || term == "" || len([]rune(term)) < t.ctrl.MinChars() {
		return
	}

	recs := t.ctrl.Records()
	if len(recs) == 0 || t.label == nil {
		return
	}
	if len(recs) > maxHintCandidates {
		recs = recs[:maxHintCandidates]
	}
	labels := make([]string, len(recs))
	for i, r := range recs {
		labels[i] = t.label(r)
	}
	matches := fuzzy.Find(term, labels)
	if len(matches) > 0 {
		t.hint = "No matches. Did you mean " + matches[0].Str + "?"
	} else {
		t.hint = "No matches"
	}
}

// lines renders the typeahead as tagged rows
func (t *Typeahead[R]) lines() []line {
	th := t.theme
	els := t.ctrl.Elements()
	var out []line

	out = append(out, plain(RenderFieldLabel(th, t.title, t.required, t.missing)))

	box := inputBoxStyle(th, t.focused, t.width-2)
	if sel, ok := t.ctrl.Committed(); ok {
		text := th.Renderer.NewStyle().Foreground(th.Open).Bold(true).
			Render(runewidth.Truncate(sel.Label, t.width-6, "…"))
		out = append(out, tagged(box.Render(text), els.Input)...)
		clearBtn := th.Renderer.NewStyle().Foreground(th.Subtext).Render("  [✕ clear]")
		out = append(out, line{text: clearBtn, el: els.Clear, option: -1})
		return out
	}

	t.input.Placeholder = t.ctrl.Placeholder()
	out = append(out, tagged(box.Render(t.input.View()), els.Input)...)

	if t.loading {
		out = append(out, plain(th.Renderer.NewStyle().Foreground(th.Subtext).Italic(true).Render("  Loading…")))
	}

	// Drawn from the listbox contract
	if a := t.ctrl.Accessibility(); a.Expanded {
		for i, opt := range a.Options {
			out = append(out, line{text: t.renderOption(opt.Label, opt.Selected), el: els.Menu, option: i})
		}
	} else if t.hint != "" {
		out = append(out, plain(th.Renderer.NewStyle().Foreground(th.Warning).Render("  "+t.hint)))
	}
	return out
}

func (t *Typeahead[R]) renderOption(label string, active bool) string {
	th := t.theme
	prefix := "  "
	style := th.Renderer.NewStyle().Foreground(th.Base.GetForeground())
	if active {
		prefix = "▸ "
		style = style.Foreground(th.Primary).Bold(true).Background(th.Highlight)
	}
	text := runewidth.Truncate(label, t.width-4, "…")
	return style.Render(prefix + text)
}

// View renders the typeahead
func (t *Typeahead[R]) View() string {
	return joinLines(t.lines())
}
