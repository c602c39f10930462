package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppimalaysia/regform/pkg/model"
	"github.com/ppimalaysia/regform/pkg/selection"
)

const maxPickerRows = 6

// PrefixPicker is the phone country-code dropdown: a button showing the
// current code and, when open, a list of every region.
type PrefixPicker struct {
	id      string
	picker  *selection.Picker[model.RegionCode]
	els     selection.Elements
	sub     *selection.Subscription
	list    list.Model
	theme   Theme
	width   int
	focused bool
	loading bool
}

// PickerElements returns the element ids a picker registers
func PickerElements(id string) selection.Elements {
	return selection.Elements{
		Input: selection.Element(id + "-button"),
		Menu:  selection.Element(id + "-menu"),
	}
}

// NewPrefixPicker creates a picker over src. onSelect fires with the
// default code once the dataset settles, and on every pick.
func NewPrefixPicker(id string, src selection.Source[model.RegionCode], onSelect func(selection.Committed) error, theme Theme) *PrefixPicker {
	els := PickerElements(id)
	p := selection.NewPicker(src, selection.PickerOptions[model.RegionCode]{
		Label:          model.RegionLabel,
		Value:          model.RegionValue,
		Default:        selection.Committed{Value: model.DefaultPhonePrefix, Label: model.DefaultPhonePrefix},
		OnSelect:       onSelect,
		OptionIDPrefix: id + "-option",
		Elements:       els,
	})

	l := list.New(nil, OptionDelegate{Theme: theme}, 30, maxPickerRows)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)

	return &PrefixPicker{
		id:     id,
		picker: p,
		els:    els,
		list:   l,
		theme:  theme,
		width:  30,
	}
}

// Init loads the regions. If the shared source is still cold the load runs
// as a command and the picker initialises when it lands.
func (p *PrefixPicker) Init(ctx context.Context, bus *selection.PointerBus) tea.Cmd {
	if bus != nil {
		p.sub.Unsubscribe()
		p.sub = bus.Subscribe(p.pointerDown)
	}
	if p.picker.Ready() {
		p.initPicker(ctx)
		return nil
	}
	p.loading = true
	return warmCmd(ctx, DatasetRegionCodes, p.picker)
}

// HandleLoaded finishes initialisation once the regions are in
func (p *PrefixPicker) HandleLoaded(ctx context.Context, dataset string) {
	if dataset != DatasetRegionCodes || !p.loading || !p.picker.Ready() {
		return
	}
	p.loading = false
	p.initPicker(ctx)
}

func (p *PrefixPicker) initPicker(ctx context.Context) {
	p.picker.Init(ctx)
	opts := p.picker.Options()
	items := make([]list.Item, len(opts))
	for i, o := range opts {
		items[i] = optionItem(o)
	}
	p.list.SetItems(items)
	p.syncList()
}

func (p *PrefixPicker) syncList() {
	rows := len(p.list.Items())
	if rows > maxPickerRows {
		rows = maxPickerRows
	}
	if rows < 1 {
		rows = 1
	}
	p.list.SetHeight(rows)
	p.list.SetDelegate(OptionDelegate{Theme: p.theme, Current: p.picker.Current().Value})
}

func (p *PrefixPicker) pointerDown(target selection.Element) {
	if target != p.els.Input && target != p.els.Menu {
		p.picker.Close()
	}
}

// Dispose releases the pointer subscription
func (p *PrefixPicker) Dispose() {
	p.sub.Unsubscribe()
}

// Current returns the selected code
func (p *PrefixPicker) Current() selection.Committed {
	return p.picker.Current()
}

// IsOpen reports whether the dropdown is showing
func (p *PrefixPicker) IsOpen() bool {
	return p.picker.IsOpen()
}

// Elements returns the element ids this picker owns
func (p *PrefixPicker) Elements() selection.Elements {
	return p.els
}

// SetTheme swaps the theme after a config reload
func (p *PrefixPicker) SetTheme(theme Theme) {
	p.theme = theme
	p.syncList()
}

// SetWidth sets the dropdown width
func (p *PrefixPicker) SetWidth(w int) {
	if w < 20 {
		w = 20
	}
	p.width = w
	p.list.SetWidth(w)
}

// Focus gives the picker keyboard focus
func (p *PrefixPicker) Focus() {
	p.focused = true
}

// Blur removes focus and closes the dropdown
func (p *PrefixPicker) Blur() {
	p.focused = false
	p.picker.Close()
}

// Toggle opens or closes the dropdown, keeping the cursor on the current code
func (p *PrefixPicker) Toggle() {
	p.picker.Toggle()
	if p.picker.IsOpen() {
		p.selectCurrent()
	}
}

func (p *PrefixPicker) selectCurrent() {
	cur := p.picker.Current().Value
	for i, o := range p.picker.Options() {
		if o.Value == cur {
			p.list.Select(i)
			return
		}
	}
	p.list.Select(0)
}

// Pick selects the option at index i
func (p *PrefixPicker) Pick(i int) bool {
	if !p.picker.Pick(i) {
		return false
	}
	p.syncList()
	return true
}

// Update handles a key while the picker is focused
func (p *PrefixPicker) Update(msg tea.KeyMsg, keys KeyMap) bool {
	if !p.picker.IsOpen() {
		if key.Matches(msg, keys.Toggle) || key.Matches(msg, keys.Down) {
			p.Toggle()
			return true
		}
		return false
	}

	switch {
	case key.Matches(msg, keys.Down):
		p.list.CursorDown()
	case key.Matches(msg, keys.Up):
		p.list.CursorUp()
	case key.Matches(msg, keys.Choose), key.Matches(msg, keys.Toggle):
		p.Pick(p.list.Index())
	case key.Matches(msg, keys.Close):
		p.picker.Close()
	default:
		return false
	}
	return true
}

// lines renders the picker as tagged rows
func (p *PrefixPicker) lines() []line {
	t := p.theme
	out := []line{plain(RenderFieldLabel(t, "Phone prefix", true, false))}

	label := p.picker.Current().Value
	if p.loading {
		label += " …"
	}
	arrow := "▾"
	if p.picker.IsOpen() {
		arrow = "▴"
	}
	out = append(out, tagged(inputBoxStyle(t, p.focused, 14).Render(label+" "+arrow), p.els.Input)...)

	if p.picker.IsOpen() && len(p.list.Items()) > 0 {
		start := p.list.Paginator.Page * p.list.Paginator.PerPage
		rows := strings.Split(p.list.View(), "\n")
		for i, r := range rows {
			idx := start + i
			if idx >= len(p.list.Items()) {
				break
			}
			out = append(out, line{text: r, el: p.els.Menu, option: idx})
		}
	}
	return out
}

// View renders the picker
func (p *PrefixPicker) View() string {
	return joinLines(p.lines())
}
