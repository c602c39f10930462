package selection

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// PickerOptions configures a Picker.
type PickerOptions[R any] struct {
	Label func(R) string
	Value func(R) string

	// Default is the selection used before the user picks anything, and
	// the only selection when the dataset is empty or failed to load.
	Default Committed

	OnSelect func(Committed) error

	OptionIDPrefix string
	// Elements.Input is the toggle button, Elements.Menu the dropdown.
	Elements Elements
}

// Picker is the fixed dropdown variant: a small, fully loaded list with no
// text filtering. Picking replaces the current selection in place; there is
// no lock and no clear.
type Picker[R any] struct {
	src  Source[R]
	opts PickerOptions[R]

	options     []Option[R]
	current     Committed
	open        bool
	initialized bool
	inert       bool
	nextID      uint64
}

// NewPicker creates a picker over src
func NewPicker[R any](src Source[R], opts PickerOptions[R]) *Picker[R] {
	if opts.Label == nil {
		opts.Label = func(R) string { return "" }
	}
	if opts.Value == nil {
		opts.Value = func(R) string { return "" }
	}
	if opts.OptionIDPrefix == "" {
		opts.OptionIDPrefix = "picker-option"
	}
	return &Picker[R]{src: src, opts: opts, current: opts.Default}
}

// Init loads the dataset, keeps the records with both a label and a value,
// and announces the default selection. It announces the default even when
// nothing loaded so dependent UI can proceed.
func (p *Picker[R]) Init(ctx context.Context) {
	if !p.opts.Elements.valid() {
		log.Printf("Warning: %s: button or menu element missing, picker disabled", p.opts.OptionIDPrefix)
		p.inert = true
		return
	}

	var data []R
	if p.src != nil {
		data = p.src.All(ctx)
	}

	p.options = p.options[:0]
	for _, rec := range data {
		label := p.opts.Label(rec)
		value := p.opts.Value(rec)
		if strings.TrimSpace(label) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		p.options = append(p.options, Option[R]{
			ID:     fmt.Sprintf("%s-%d", p.opts.OptionIDPrefix, p.nextID),
			Value:  value,
			Label:  label,
			Record: rec,
		})
		p.nextID++
	}

	p.initialized = true
	p.setCurrent(p.opts.Default)
}

// Pick selects the option at index i and closes the dropdown.
func (p *Picker[R]) Pick(i int) bool {
	if p.inert || i < 0 || i >= len(p.options) {
		return false
	}
	opt := p.options[i]
	p.open = false
	p.setCurrent(Committed{Value: opt.Value, Label: opt.Label})
	return true
}

// PickValue selects the first option whose value equals value.
func (p *Picker[R]) PickValue(value string) bool {
	for i, opt := range p.options {
		if opt.Value == value {
			return p.Pick(i)
		}
	}
	return false
}

func (p *Picker[R]) setCurrent(c Committed) {
	p.current = c
	if p.opts.OnSelect == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: %s OnSelect panicked: %v", p.opts.OptionIDPrefix, r)
		}
	}()
	if err := p.opts.OnSelect(c); err != nil {
		log.Printf("Warning: %s OnSelect failed: %v", p.opts.OptionIDPrefix, err)
	}
}

// Open shows the dropdown
func (p *Picker[R]) Open() {
	if !p.inert {
		p.open = true
	}
}

// Close hides the dropdown
func (p *Picker[R]) Close() { p.open = false }

// Toggle flips dropdown visibility
func (p *Picker[R]) Toggle() {
	if p.open {
		p.Close()
	} else {
		p.Open()
	}
}

// IsOpen reports whether the dropdown is visible
func (p *Picker[R]) IsOpen() bool { return p.open }

// Current returns the current selection
func (p *Picker[R]) Current() Committed { return p.current }

// Options returns the valid records as options
func (p *Picker[R]) Options() []Option[R] { return p.options }

// Initialized reports whether Init has run
func (p *Picker[R]) Initialized() bool { return p.initialized }

// Inert reports whether Init disabled the picker
func (p *Picker[R]) Inert() bool { return p.inert }

// Ready reports whether Init can run without waiting for a load.
func (p *Picker[R]) Ready() bool {
	if p.src == nil {
		return true
	}
	if lr, ok := p.src.(loadReporter); ok {
		return lr.Loaded()
	}
	return false
}

// Warm loads the dataset without touching picker state. It may be called
// from any goroutine.
func (p *Picker[R]) Warm(ctx context.Context) {
	if p.src != nil {
		p.src.All(ctx)
	}
}
