package selection

import (
	"strings"
	"time"
)

const (
	// DefaultMinChars is the shortest trimmed term that triggers matching
	DefaultMinChars = 2
	// DefaultMaxItems caps the rendered matches per keystroke
	DefaultMaxItems = 8
	// DefaultOptionIDPrefix namespaces generated option ids
	DefaultOptionIDPrefix = "typeahead-option"
	// DefaultBlurGrace is how long a blur waits before closing the menu
	DefaultBlurGrace = 100 * time.Millisecond
)

// Committed is a locked-in selection
type Committed struct {
	Value string
	Label string
}

// FilterFunc selects the records matching a search term. It must preserve
// dataset order.
type FilterFunc[R any] func(term string, data []R) []R

// Element identifies a region of the host surface (an input, a menu, a
// clear button). The zero value is never a control's own element.
type Element string

// Elements names the regions a control owns. Input and Menu are required.
type Elements struct {
	Input Element
	Menu  Element
	Clear Element
}

func (e Elements) contains(target Element) bool {
	if target == "" {
		return false
	}
	return target == e.Input || target == e.Menu || (e.Clear != "" && target == e.Clear)
}

func (e Elements) valid() bool {
	return e.Input != "" && e.Menu != ""
}

// Mirror receives the committed label when no OnSelect callback is wired.
type Mirror interface {
	SetText(text string)
}

// MirrorFunc adapts a function to the Mirror interface
type MirrorFunc func(text string)

// SetText implements Mirror
func (f MirrorFunc) SetText(text string) { f(text) }

// Queue serializes deferred work onto the goroutine that owns a control.
// Post may be called from any goroutine.
type Queue interface {
	Post(fn func())
}

// QueueFunc adapts a function to the Queue interface
type QueueFunc func(fn func())

// Post implements Queue
func (f QueueFunc) Post(fn func()) { f(fn) }

// Options configures a Control.
type Options[R any] struct {
	// MinChars below this trimmed length matching is suppressed.
	// Zero means DefaultMinChars; use a negative value for "always match".
	MinChars int
	// MaxItems is the hard cap on rendered matches. Zero means DefaultMaxItems.
	MaxItems int

	Label func(R) string
	Value func(R) string

	// Filter overrides the default case-insensitive label containment.
	Filter FilterFunc[R]

	// Fallback is shown alone when filtering yields nothing. Nil disables it.
	Fallback *R

	OnSelect func(Committed) error
	OnClear  func() error

	// Mirrors receive the committed label when OnSelect is nil.
	Mirrors []Mirror

	OptionIDPrefix string
	Placeholder    string
	Elements       Elements

	// BlurGrace delays the blur-driven close so an option click that
	// caused the blur can commit first. Zero means DefaultBlurGrace.
	BlurGrace time.Duration
	// Queue receives the delayed blur check. Without one the check runs
	// synchronously inside Blur.
	Queue Queue
}

func (o Options[R]) withDefaults() Options[R] {
	if o.MinChars == 0 {
		o.MinChars = DefaultMinChars
	}
	if o.MinChars < 0 {
		o.MinChars = 0
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.OptionIDPrefix == "" {
		o.OptionIDPrefix = DefaultOptionIDPrefix
	}
	if o.BlurGrace <= 0 {
		o.BlurGrace = DefaultBlurGrace
	}
	if o.Label == nil {
		o.Label = func(R) string { return "" }
	}
	if o.Value == nil {
		o.Value = func(R) string { return "" }
	}
	return o
}

// ContainsFilter returns the default predicate: case-insensitive substring
// containment on the projected label.
func ContainsFilter[R any](label func(R) string) FilterFunc[R] {
	return func(term string, data []R) []R {
		lower := strings.ToLower(term)
		var out []R
		for _, rec := range data {
			if strings.Contains(strings.ToLower(label(rec)), lower) {
				out = append(out, rec)
			}
		}
		return out
	}
}
