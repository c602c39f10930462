// Package selection implements the asynchronously-populated single-selection
// control (a typeahead / combobox) and its fixed dropdown variant, with no
// dependency on a rendering surface.
//
// A Control is driven by one event loop: every method must be called from
// the goroutine that owns it. The only suspension point is the dataset load
// inside TextChanged and Focus. Hosts that cannot block their loop call Warm
// from a background task and replay TextChanged once Ready reports true.
package selection

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/ppimalaysia/regform/pkg/watcher"
)

// Source provides the dataset behind a control. datasource.Source
// satisfies it.
type Source[R any] interface {
	All(ctx context.Context) []R
}

type loadReporter interface {
	Loaded() bool
}

// State is the visible state of a control
type State int

const (
	StateClosed State = iota
	StateOpen
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateLocked:
		return "locked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option is one rendered match
type Option[R any] struct {
	ID     string
	Value  string
	Label  string
	Record R
}

// Snapshot is a copy of a control's selection state
type Snapshot[R any] struct {
	Text        string
	Options     []Option[R]
	ActiveIndex int
	Committed   *Committed
	Locked      bool
	MenuOpen    bool
	ReadOnly    bool
	Placeholder string
}

// Control is the single-selection typeahead state machine.
type Control[R any] struct {
	opts   Options[R]
	src    Source[R]
	filter FilterFunc[R]

	data   []R
	loaded bool

	text        string
	options     []Option[R]
	active      int
	committed   *Committed
	menuOpen    bool
	readOnly    bool
	placeholder string

	focused     bool
	menuFocused bool
	nextID      uint64
	// blurGen invalidates blur checks already posted to the queue
	blurGen uint64

	inert    bool
	disposed bool
	sub      *Subscription
	blur     *watcher.Debouncer
}

// New creates a control over src. A nil src behaves as an empty dataset.
func New[R any](src Source[R], opts Options[R]) *Control[R] {
	opts = opts.withDefaults()
	filter := opts.Filter
	if filter == nil {
		filter = ContainsFilter(opts.Label)
	}
	return &Control[R]{
		opts:        opts,
		src:         src,
		filter:      filter,
		active:      -1,
		placeholder: opts.Placeholder,
		blur:        watcher.NewDebouncer(opts.BlurGrace),
	}
}

// Init wires the control's outside-pointer listener onto bus and returns the
// subscription so the host can release it on teardown. If the input or menu
// element is missing the control stays inert and Init wires nothing.
func (c *Control[R]) Init(bus *PointerBus) *Subscription {
	if !c.opts.Elements.valid() {
		log.Printf("Warning: %s: input or menu element missing, control disabled", c.opts.OptionIDPrefix)
		c.inert = true
		return &Subscription{}
	}
	c.closeMenu()
	if bus == nil {
		return &Subscription{}
	}
	c.sub.Unsubscribe()
	c.sub = bus.Subscribe(c.PointerDown)
	return c.sub
}

// Dispose detaches the control. A load that completes afterwards is ignored.
func (c *Control[R]) Dispose() {
	c.disposed = true
	c.cancelBlur()
	c.sub.Unsubscribe()
	c.options = nil
	c.closeMenu()
}

func (c *Control[R]) live() bool {
	return !c.inert && !c.disposed
}

// TextChanged handles an edit of the input text.
func (c *Control[R]) TextChanged(ctx context.Context, term string) {
	if !c.live() || c.Locked() {
		return
	}
	c.text = term

	trimmed := strings.TrimSpace(term)
	if !c.meetsMinChars(trimmed) {
		c.options = nil
		c.closeMenu()
		return
	}

	data, ok := c.ensureData(ctx)
	// The load may have suspended; re-check before touching state.
	if !c.live() || c.Locked() {
		return
	}
	if !ok {
		c.options = nil
		c.closeMenu()
		return
	}

	matches := c.filter(trimmed, data)
	if len(matches) > c.opts.MaxItems {
		matches = matches[:c.opts.MaxItems]
	}
	c.render(matches)
}

func (c *Control[R]) meetsMinChars(trimmed string) bool {
	return utf8.RuneCountInString(trimmed) >= c.opts.MinChars
}

// ensureData reports false when the dataset is still not loaded, which
// happens when ctx expired before the source settled.
func (c *Control[R]) ensureData(ctx context.Context) ([]R, bool) {
	if c.loaded {
		return c.data, true
	}
	if c.src == nil {
		c.data, c.loaded = []R{}, true
		return c.data, true
	}

	data := c.src.All(ctx)
	if lr, ok := c.src.(loadReporter); ok && !lr.Loaded() {
		return nil, false
	}
	c.data, c.loaded = data, true
	return data, true
}

func (c *Control[R]) render(matches []R) {
	if len(matches) == 0 && c.opts.Fallback != nil {
		matches = []R{*c.opts.Fallback}
	}

	options := make([]Option[R], 0, len(matches))
	for _, rec := range matches {
		label := c.opts.Label(rec)
		if strings.TrimSpace(label) == "" {
			continue
		}
		value := c.opts.Value(rec)
		if value == "" {
			value = label
		}
		options = append(options, Option[R]{
			ID:     c.nextOptionID(),
			Value:  value,
			Label:  label,
			Record: rec,
		})
	}

	if len(options) == 0 {
		c.options = nil
		c.closeMenu()
		return
	}
	c.options = options
	c.active = -1
	c.menuOpen = true
}

func (c *Control[R]) nextOptionID() string {
	id := fmt.Sprintf("%s-%d", c.opts.OptionIDPrefix, c.nextID)
	c.nextID++
	return id
}

func (c *Control[R]) closeMenu() {
	c.menuOpen = false
	c.active = -1
}

// Focus handles the input gaining focus. It re-runs matching for text that
// already meets MinChars and cancels a pending blur close.
func (c *Control[R]) Focus(ctx context.Context) {
	if !c.live() || c.Locked() {
		return
	}
	c.focused = true
	c.cancelBlur()
	if c.meetsMinChars(strings.TrimSpace(c.text)) {
		c.TextChanged(ctx, c.text)
	}
}

// Blur handles the input losing focus. The close is deferred by BlurGrace
// and posted onto the Queue, so an option click delivered on the same loop
// before the check runs always commits first.
func (c *Control[R]) Blur() {
	if !c.live() {
		return
	}
	c.focused = false
	c.blurGen++
	gen := c.blurGen
	q := c.opts.Queue
	if q == nil {
		c.closeAfterBlur(gen)
		return
	}
	c.blur.Trigger(func() {
		q.Post(func() { c.closeAfterBlur(gen) })
	})
}

// cancelBlur drops a pending blur check, including one the timer has
// already posted to the queue.
func (c *Control[R]) cancelBlur() {
	c.blurGen++
	c.blur.Cancel()
}

func (c *Control[R]) closeAfterBlur(gen uint64) {
	if gen != c.blurGen || c.disposed || c.focused || c.menuFocused {
		return
	}
	c.closeMenu()
}

// SetMenuFocus records whether focus is inside the menu, which keeps a
// blurred control open. It is for hosts whose menu can take focus on its
// own; the terminal form commits on press and never needs it.
func (c *Control[R]) SetMenuFocus(focused bool) {
	c.menuFocused = focused
}

// ArrowDown moves the active option down, wrapping to the first.
func (c *Control[R]) ArrowDown() {
	if !c.live() || c.Locked() || len(c.options) == 0 {
		return
	}
	c.menuOpen = true
	if c.active+1 >= len(c.options) {
		c.active = 0
	} else {
		c.active++
	}
}

// ArrowUp moves the active option up, wrapping to the last.
func (c *Control[R]) ArrowUp() {
	if !c.live() || c.Locked() || len(c.options) == 0 {
		return
	}
	c.menuOpen = true
	if c.active <= 0 {
		c.active = len(c.options) - 1
	} else {
		c.active--
	}
}

// Enter commits the active option, if any. It reports whether it committed.
func (c *Control[R]) Enter() bool {
	if !c.live() || c.Locked() || c.active < 0 {
		return false
	}
	return c.ClickOption(c.active)
}

// Escape closes the menu and keeps the typed text.
func (c *Control[R]) Escape() {
	if !c.live() {
		return
	}
	c.closeMenu()
}

// ClickOption commits the rendered option at index i.
func (c *Control[R]) ClickOption(i int) bool {
	if !c.live() || c.Locked() || i < 0 || i >= len(c.options) {
		return false
	}
	opt := c.options[i]
	c.Select(opt.Value, opt.Label)
	return true
}

// Select commits value/label, locks the control and notifies the host.
// An empty value falls back to the label.
func (c *Control[R]) Select(value, label string) {
	if !c.live() {
		return
	}
	if value == "" {
		value = label
	}
	committed := Committed{Value: value, Label: label}
	c.committed = &committed
	c.options = nil
	c.closeMenu()
	c.text = ""
	c.readOnly = true
	c.placeholder = ""
	c.focused = false
	c.cancelBlur()

	if c.opts.OnSelect != nil {
		c.notify("OnSelect", func() error { return c.opts.OnSelect(committed) })
		return
	}
	for _, m := range c.opts.Mirrors {
		if m != nil {
			m.SetText(label)
		}
	}
}

// Clear releases the committed selection and makes the input editable again.
func (c *Control[R]) Clear() {
	if !c.live() {
		return
	}
	c.committed = nil
	c.readOnly = false
	c.placeholder = c.opts.Placeholder
	c.text = ""
	c.options = nil
	c.closeMenu()

	if c.opts.OnClear != nil {
		c.notify("OnClear", c.opts.OnClear)
	}
}

// notify runs a host callback. Failures are logged and never roll back the
// transition that triggered them.
func (c *Control[R]) notify(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: %s %s panicked: %v", c.opts.OptionIDPrefix, name, r)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("Warning: %s %s failed: %v", c.opts.OptionIDPrefix, name, err)
	}
}

// PointerDown closes the menu when target lies outside the control.
func (c *Control[R]) PointerDown(target Element) {
	if !c.live() || c.opts.Elements.contains(target) {
		return
	}
	c.closeMenu()
}

// Ready reports whether matching can run without waiting for a load.
func (c *Control[R]) Ready() bool {
	if c.loaded || c.src == nil {
		return true
	}
	if lr, ok := c.src.(loadReporter); ok {
		return lr.Loaded()
	}
	return false
}

// NeedsLoad reports whether TextChanged(text) would block on a load.
func (c *Control[R]) NeedsLoad(text string) bool {
	return c.live() && !c.Locked() && c.meetsMinChars(strings.TrimSpace(text)) && !c.Ready()
}

// Warm loads the shared dataset without touching control state. Unlike
// every other method it may be called from any goroutine.
func (c *Control[R]) Warm(ctx context.Context) {
	if c.src != nil {
		c.src.All(ctx)
	}
}

// State returns the visible state
func (c *Control[R]) State() State {
	switch {
	case c.committed != nil:
		return StateLocked
	case c.menuOpen:
		return StateOpen
	default:
		return StateClosed
	}
}

// Locked reports whether a selection is committed
func (c *Control[R]) Locked() bool {
	return c.committed != nil
}

// Committed returns the locked-in selection, if any
func (c *Control[R]) Committed() (Committed, bool) {
	if c.committed == nil {
		return Committed{}, false
	}
	return *c.committed, true
}

// Text returns the input text as the control last saw it
func (c *Control[R]) Text() string { return c.text }

// Placeholder returns the placeholder the input should show
func (c *Control[R]) Placeholder() string { return c.placeholder }

// ReadOnly reports whether the input is frozen
func (c *Control[R]) ReadOnly() bool { return c.readOnly }

// MenuOpen reports whether the menu is visible
func (c *Control[R]) MenuOpen() bool { return c.menuOpen }

// ActiveIndex returns the highlighted option or -1
func (c *Control[R]) ActiveIndex() int { return c.active }

// Options returns the rendered matches
func (c *Control[R]) Options() []Option[R] { return c.options }

// Records returns the dataset the control has loaded so far
func (c *Control[R]) Records() []R { return c.data }

// MinChars returns the effective minimum term length
func (c *Control[R]) MinChars() int { return c.opts.MinChars }

// Elements returns the regions the control owns
func (c *Control[R]) Elements() Elements { return c.opts.Elements }

// Inert reports whether Init disabled the control
func (c *Control[R]) Inert() bool { return c.inert }

// Snapshot copies the selection state
func (c *Control[R]) Snapshot() Snapshot[R] {
	s := Snapshot[R]{
		Text:        c.text,
		Options:     append([]Option[R](nil), c.options...),
		ActiveIndex: c.active,
		Locked:      c.Locked(),
		MenuOpen:    c.menuOpen,
		ReadOnly:    c.readOnly,
		Placeholder: c.placeholder,
	}
	if c.committed != nil {
		v := *c.committed
		s.Committed = &v
	}
	return s
}
