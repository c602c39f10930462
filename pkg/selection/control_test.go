package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ppimalaysia/regform/pkg/datasource"
	"github.com/ppimalaysia/regform/pkg/loader"
	"github.com/ppimalaysia/regform/pkg/model"
)

var testElements = Elements{Input: "uni-input", Menu: "uni-menu", Clear: "uni-clear"}

func testUniversities() []model.University {
	return []model.University{
		{ID: "1", Name: "Example University"},
		{ID: "2", Name: "Other University"},
	}
}

func newUniversityControl(src Source[model.University], mutate func(*Options[model.University])) *Control[model.University] {
	opts := Options[model.University]{
		MinChars: 2,
		Label:    model.UniversityLabel,
		Value:    model.UniversityValue,
		Elements: testElements,
	}
	if mutate != nil {
		mutate(&opts)
	}
	c := New(src, opts)
	c.Init(nil)
	return c
}

func optionValues[R any](opts []Option[R]) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func TestTextChanged_BelowMinChars(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)

	for _, term := range []string{"", "e", " e ", "x"} {
		c.TextChanged(context.Background(), term)
		if c.MenuOpen() {
			t.Errorf("term %q: menu open, want closed", term)
		}
		if len(c.Options()) != 0 {
			t.Errorf("term %q: %d options, want 0", term, len(c.Options()))
		}
		if c.State() != StateClosed {
			t.Errorf("term %q: state = %v, want closed", term, c.State())
		}
	}
}

func TestTextChanged_BelowMinCharsDoesNotLoad(t *testing.T) {
	var fetches int
	src := datasource.New[model.University]("u", loader.FetcherFunc(func(ctx context.Context) ([]byte, error) {
		fetches++
		return []byte(`[]`), nil
	}))
	c := newUniversityControl(src, nil)
	c.TextChanged(context.Background(), "e")
	if fetches != 0 {
		t.Errorf("fetches = %d, want 0 below MinChars", fetches)
	}
}

func TestUniversityScenario(t *testing.T) {
	var got []Committed
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.OnSelect = func(sel Committed) error {
			got = append(got, sel)
			return nil
		}
	})

	c.TextChanged(context.Background(), "exa")
	if vals := optionValues(c.Options()); len(vals) != 1 || vals[0] != "1" {
		t.Fatalf("options = %v, want [1]", vals)
	}
	if c.State() != StateOpen {
		t.Fatalf("state = %v, want open", c.State())
	}
	if c.ActiveIndex() != -1 {
		t.Errorf("ActiveIndex = %d, want -1", c.ActiveIndex())
	}

	if !c.ClickOption(0) {
		t.Fatal("ClickOption(0) = false")
	}
	want := Committed{Value: "1", Label: "Example University"}
	if sel, ok := c.Committed(); !ok || sel != want {
		t.Errorf("Committed = %+v, %v; want %+v", sel, ok, want)
	}
	if c.Text() != "" {
		t.Errorf("Text = %q, want cleared", c.Text())
	}
	if !c.ReadOnly() {
		t.Error("input should be read-only after select")
	}
	if c.Placeholder() != "" {
		t.Errorf("Placeholder = %q, want empty while locked", c.Placeholder())
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("OnSelect calls = %+v", got)
	}
}

func TestTextChanged_MaxItemsPreservesOrder(t *testing.T) {
	var unis []model.University
	for i := 0; i < 30; i++ {
		unis = append(unis, model.University{ID: model.FlexString(fmt.Sprint(i)), Name: fmt.Sprintf("University %02d", i)})
	}
	c := newUniversityControl(datasource.Static("u", unis), func(o *Options[model.University]) {
		o.MaxItems = 5
	})

	c.TextChanged(context.Background(), "university")
	vals := optionValues(c.Options())
	want := []string{"0", "1", "2", "3", "4"}
	if strings.Join(vals, ",") != strings.Join(want, ",") {
		t.Errorf("options = %v, want %v", vals, want)
	}
}

func TestTextChanged_DefaultMaxItems(t *testing.T) {
	var unis []model.University
	for i := 0; i < 20; i++ {
		unis = append(unis, model.University{ID: model.FlexString(fmt.Sprint(i)), Name: "Uni"})
	}
	c := newUniversityControl(datasource.Static("u", unis), nil)
	c.TextChanged(context.Background(), "uni")
	if len(c.Options()) != DefaultMaxItems {
		t.Errorf("options = %d, want %d", len(c.Options()), DefaultMaxItems)
	}
}

func TestTextChanged_DuplicateLabelsStable(t *testing.T) {
	unis := []model.University{{ID: "a", Name: "Same"}, {ID: "b", Name: "Same"}, {ID: "c", Name: "Same"}}
	c := newUniversityControl(datasource.Static("u", unis), nil)
	c.TextChanged(context.Background(), "same")
	if got := strings.Join(optionValues(c.Options()), ""); got != "abc" {
		t.Errorf("order = %q, want abc", got)
	}
}

func TestTextChanged_BlankLabelsDropped(t *testing.T) {
	unis := []model.University{{ID: "1", Name: "  "}, {ID: "2", Name: "Uni Two"}}
	c := newUniversityControl(datasource.Static("u", unis), func(o *Options[model.University]) {
		o.Filter = func(term string, data []model.University) []model.University { return data }
	})
	c.TextChanged(context.Background(), "un")
	if vals := optionValues(c.Options()); len(vals) != 1 || vals[0] != "2" {
		t.Errorf("options = %v, want [2]", vals)
	}

	c2 := newUniversityControl(datasource.Static("u", unis[:1]), func(o *Options[model.University]) {
		o.Filter = func(term string, data []model.University) []model.University { return data }
	})
	c2.TextChanged(context.Background(), "un")
	if c2.State() != StateClosed {
		t.Errorf("state = %v, want closed when every label is blank", c2.State())
	}
}

func TestTextChanged_EmptyValueFallsBackToLabel(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", []model.University{{Name: "No Id University"}}), nil)
	c.TextChanged(context.Background(), "no id")
	c.ClickOption(0)
	if sel, _ := c.Committed(); sel.Value != "No Id University" {
		t.Errorf("Value = %q, want label", sel.Value)
	}
}

func TestArrows_Cyclic(t *testing.T) {
	unis := []model.University{{ID: "1", Name: "Uni A"}, {ID: "2", Name: "Uni B"}, {ID: "3", Name: "Uni C"}}
	c := newUniversityControl(datasource.Static("u", unis), nil)
	c.TextChanged(context.Background(), "uni")

	steps := []struct {
		down bool
		want int
	}{
		{true, 0}, {true, 1}, {true, 2}, {true, 0}, // wraps forward
		{false, 2}, {false, 1}, {false, 0}, {false, 2}, // wraps backward
	}
	for i, s := range steps {
		if s.down {
			c.ArrowDown()
		} else {
			c.ArrowUp()
		}
		if c.ActiveIndex() != s.want {
			t.Fatalf("step %d: ActiveIndex = %d, want %d", i, c.ActiveIndex(), s.want)
		}
	}

	t.Run("UpFromNoneGoesToLast", func(t *testing.T) {
		c.Escape()
		c.ArrowUp()
		if c.ActiveIndex() != 2 || !c.MenuOpen() {
			t.Errorf("ActiveIndex = %d, open = %v; want 2, true", c.ActiveIndex(), c.MenuOpen())
		}
	})

	t.Run("IgnoredWhenEmpty", func(t *testing.T) {
		empty := newUniversityControl(datasource.Static("u", unis), nil)
		empty.ArrowDown()
		if empty.ActiveIndex() != -1 || empty.MenuOpen() {
			t.Errorf("arrow on empty control changed state")
		}
	})
}

func TestEnter(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)
	c.TextChanged(context.Background(), "university")

	if c.Enter() {
		t.Error("Enter with no active option should not commit")
	}
	c.ArrowDown()
	c.ArrowDown()
	if !c.Enter() {
		t.Fatal("Enter should commit the active option")
	}
	if sel, _ := c.Committed(); sel.Value != "2" {
		t.Errorf("committed %q, want 2", sel.Value)
	}
}

func TestEscape_KeepsText(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)
	c.TextChanged(context.Background(), "exa")
	c.ArrowDown()
	c.Escape()

	if c.MenuOpen() || c.ActiveIndex() != -1 {
		t.Errorf("open = %v, active = %d; want closed, -1", c.MenuOpen(), c.ActiveIndex())
	}
	if c.Text() != "exa" {
		t.Errorf("Text = %q, want exa", c.Text())
	}
}

func TestSelect_LocksAndIgnoresInput(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)
	c.TextChanged(context.Background(), "exa")
	c.Select("1", "Example University")

	before := c.Snapshot()
	c.TextChanged(context.Background(), "other")
	c.Focus(context.Background())
	c.ArrowDown()
	c.ArrowUp()
	after := c.Snapshot()

	if !after.Locked || after.Committed == nil || *after.Committed != (Committed{"1", "Example University"}) {
		t.Fatalf("unexpected state after input while locked: %+v", after)
	}
	if after.Text != before.Text || after.MenuOpen != before.MenuOpen || len(after.Options) != len(before.Options) || after.ActiveIndex != before.ActiveIndex {
		t.Errorf("state changed while locked: before %+v after %+v", before, after)
	}
	if c.Enter() {
		t.Error("Enter while locked should not commit")
	}
}

func TestClear_UnlocksAndTypingReopens(t *testing.T) {
	cleared := 0
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.Placeholder = "Search university"
		o.OnClear = func() error {
			cleared++
			return nil
		}
	})
	c.TextChanged(context.Background(), "exa")
	c.ClickOption(0)
	c.Clear()

	if c.Locked() {
		t.Error("Locked after Clear")
	}
	if _, ok := c.Committed(); ok {
		t.Error("Committed after Clear")
	}
	if c.ReadOnly() {
		t.Error("ReadOnly after Clear")
	}
	if c.Placeholder() != "Search university" {
		t.Errorf("Placeholder = %q, want restored", c.Placeholder())
	}
	if c.MenuOpen() || len(c.Options()) != 0 {
		t.Error("menu should be closed and empty after Clear")
	}
	if cleared != 1 {
		t.Errorf("OnClear calls = %d, want 1", cleared)
	}

	c.TextChanged(context.Background(), "e")
	if c.MenuOpen() {
		t.Error("menu opened below MinChars after Clear")
	}
	c.TextChanged(context.Background(), "ot")
	if !c.MenuOpen() || optionValues(c.Options())[0] != "2" {
		t.Errorf("typing after Clear should reopen: options %v", optionValues(c.Options()))
	}
}

func TestSelectClearSelect_RoundTrip(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)
	c.Select("1", "Example University")
	first, _ := c.Committed()
	c.Clear()
	c.Select("1", "Example University")
	second, _ := c.Committed()
	if first != second {
		t.Errorf("round trip: %+v != %+v", first, second)
	}
}

func TestFallbackScenario(t *testing.T) {
	fallback := model.University{ID: "108", Name: "Other University"}
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.Fallback = &fallback
	})

	c.TextChanged(context.Background(), "zzz")
	opts := c.Options()
	if len(opts) != 1 || opts[0].Value != "108" || opts[0].Label != "Other University" {
		t.Fatalf("options = %+v, want fallback only", opts)
	}
	if !c.MenuOpen() {
		t.Error("menu should open with the fallback")
	}
}

func TestNoFallback_NoMatchesCloses(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)
	c.TextChanged(context.Background(), "exa")
	c.TextChanged(context.Background(), "zzz")
	if c.State() != StateClosed || len(c.Options()) != 0 {
		t.Errorf("state = %v, options = %d; want closed, 0", c.State(), len(c.Options()))
	}
}

func TestCustomFilterNilIsNoMatches(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.Filter = func(string, []model.University) []model.University { return nil }
	})
	c.TextChanged(context.Background(), "exa")
	if c.MenuOpen() {
		t.Error("nil filter result should keep the menu closed")
	}
}

func TestFailingSourceScenario(t *testing.T) {
	var fetches int
	src := datasource.New[model.University]("universities", loader.FetcherFunc(func(ctx context.Context) ([]byte, error) {
		fetches++
		return nil, errors.New("network down")
	}))
	c := newUniversityControl(src, nil)

	c.TextChanged(context.Background(), "exa")
	c.TextChanged(context.Background(), "exam")
	if c.MenuOpen() {
		t.Error("menu should stay closed with an empty dataset")
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1", fetches)
	}
}

func TestTextChanged_ExpiredContextBeforeLoad(t *testing.T) {
	release := make(chan struct{})
	src := datasource.New[model.University]("universities", loader.FetcherFunc(func(ctx context.Context) ([]byte, error) {
		<-release
		return []byte(`[{"id":"1","name":"Example University"}]`), nil
	}))
	other := model.OtherUniversity
	c := newUniversityControl(src, func(o *Options[model.University]) {
		o.Fallback = &other
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.TextChanged(ctx, "zzz")
	if c.MenuOpen() || len(c.Options()) != 0 {
		t.Fatalf("unloaded dataset rendered options %v", optionValues(c.Options()))
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for !src.Loaded() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	c.TextChanged(context.Background(), "exa")
	if got := optionValues(c.Options()); len(got) != 1 || got[0] != "1" {
		t.Errorf("options after load = %v, want [1]", got)
	}
}

func TestPointerDown(t *testing.T) {
	bus := NewPointerBus()
	c := New(datasource.Static("u", testUniversities()), Options[model.University]{
		Label:    model.UniversityLabel,
		Value:    model.UniversityValue,
		Elements: testElements,
	})
	sub := c.Init(bus)

	c.TextChanged(context.Background(), "university")
	c.ArrowDown()

	for _, inside := range []Element{"uni-input", "uni-menu", "uni-clear"} {
		bus.Publish(inside)
		if !c.MenuOpen() {
			t.Fatalf("pointer-down on %s closed the menu", inside)
		}
	}

	bus.Publish("page-body")
	if c.State() != StateClosed || c.ActiveIndex() != -1 {
		t.Errorf("state = %v, active = %d; want closed, -1", c.State(), c.ActiveIndex())
	}

	sub.Unsubscribe()
	sub.Unsubscribe()
	if bus.Len() != 0 {
		t.Errorf("bus has %d listeners after Unsubscribe", bus.Len())
	}
}

func TestInit_MissingElementsIsInert(t *testing.T) {
	bus := NewPointerBus()
	c := New(datasource.Static("u", testUniversities()), Options[model.University]{
		Label:    model.UniversityLabel,
		Elements: Elements{Input: "only-input"},
	})
	sub := c.Init(bus)
	if sub == nil {
		t.Fatal("Init must return a usable subscription")
	}
	sub.Unsubscribe()
	if bus.Len() != 0 {
		t.Errorf("inert control subscribed to the bus")
	}
	if !c.Inert() {
		t.Error("Inert() = false")
	}

	c.TextChanged(context.Background(), "exa")
	c.Select("1", "x")
	if c.MenuOpen() || c.Locked() {
		t.Error("inert control reacted to input")
	}
}

func TestOptionIDs_NeverReused(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.OptionIDPrefix = "uni-opt"
	})

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		c.TextChanged(context.Background(), "university")
		for _, opt := range c.Options() {
			if seen[opt.ID] {
				t.Fatalf("option id %s reused", opt.ID)
			}
			if !strings.HasPrefix(opt.ID, "uni-opt-") {
				t.Errorf("id %q missing prefix", opt.ID)
			}
			seen[opt.ID] = true
		}
		c.Escape()
	}
	if len(seen) != 10 {
		t.Errorf("saw %d ids, want 10", len(seen))
	}
}

func TestCallbackFailuresDoNotRollBack(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.OnSelect = func(Committed) error { panic("host bug") }
		o.OnClear = func() error { return errors.New("host refused") }
	})

	c.Select("1", "Example University")
	if !c.Locked() {
		t.Fatal("panicking OnSelect rolled back the commit")
	}
	c.Clear()
	if c.Locked() {
		t.Fatal("failing OnClear rolled back the clear")
	}
}

func TestMirrorsWithoutOnSelect(t *testing.T) {
	var a, b string
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.Mirrors = []Mirror{
			MirrorFunc(func(s string) { a = s }),
			nil,
			MirrorFunc(func(s string) { b = s }),
		}
	})
	c.Select("1", "Example University")
	if a != "Example University" || b != "Example University" {
		t.Errorf("mirrors = %q, %q", a, b)
	}

	var mirrored bool
	c2 := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.OnSelect = func(Committed) error { return nil }
		o.Mirrors = []Mirror{MirrorFunc(func(string) { mirrored = true })}
	})
	c2.Select("1", "Example University")
	if mirrored {
		t.Error("mirrors must not be written when OnSelect is wired")
	}
}

func TestBlur_ClickCommitsBeforeClose(t *testing.T) {
	queue := make(chan func(), 4)
	var selected int
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.BlurGrace = time.Millisecond
		o.Queue = QueueFunc(func(fn func()) { queue <- fn })
		o.OnSelect = func(Committed) error {
			selected++
			return nil
		}
	})

	c.Focus(context.Background())
	c.TextChanged(context.Background(), "exa")
	// Pointer-down on the option blurs the input, then the click lands.
	c.Blur()
	c.ClickOption(0)

	if selected != 1 || !c.Locked() {
		t.Fatalf("commit did not complete before the blur check: selected=%d", selected)
	}

	// Select cancelled the pending close; nothing should arrive.
	select {
	case fn := <-queue:
		fn()
	case <-time.After(30 * time.Millisecond):
	}
	if !c.Locked() || selected != 1 {
		t.Errorf("blur check disturbed the commit")
	}
}

func TestBlur_ClosesAfterGrace(t *testing.T) {
	queue := make(chan func(), 4)
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.BlurGrace = time.Millisecond
		o.Queue = QueueFunc(func(fn func()) { queue <- fn })
	})
	c.Focus(context.Background())
	c.TextChanged(context.Background(), "university")
	c.Blur()

	if !c.MenuOpen() {
		t.Fatal("Blur closed the menu before the grace period")
	}

	select {
	case fn := <-queue:
		fn()
	case <-time.After(time.Second):
		t.Fatal("blur check never posted")
	}
	if c.MenuOpen() {
		t.Error("menu still open after blur check")
	}
}

func TestBlur_MenuFocusKeepsOpen(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)
	c.TextChanged(context.Background(), "university")
	c.SetMenuFocus(true)
	c.Blur()
	if !c.MenuOpen() {
		t.Error("focus in menu should keep it open")
	}
	c.SetMenuFocus(false)
	c.Blur()
	if c.MenuOpen() {
		t.Error("without a queue the blur check runs immediately")
	}
}

func TestFocus_CancelsPendingBlurAndReopens(t *testing.T) {
	queue := make(chan func(), 4)
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.BlurGrace = 5 * time.Millisecond
		o.Queue = QueueFunc(func(fn func()) { queue <- fn })
	})
	c.TextChanged(context.Background(), "exa")
	c.Escape()
	c.Blur()
	c.Focus(context.Background())

	if !c.MenuOpen() {
		t.Error("Focus with text past MinChars should reopen the menu")
	}
	select {
	case fn := <-queue:
		fn()
		if !c.MenuOpen() {
			t.Error("stale blur check closed a refocused control")
		}
	case <-time.After(30 * time.Millisecond):
	}
}

func TestBlur_RefocusThenBlurWaitsForNewGrace(t *testing.T) {
	queue := make(chan func(), 4)
	c := newUniversityControl(datasource.Static("u", testUniversities()), func(o *Options[model.University]) {
		o.BlurGrace = time.Millisecond
		o.Queue = QueueFunc(func(fn func()) { queue <- fn })
	})
	next := func() func() {
		select {
		case fn := <-queue:
			return fn
		case <-time.After(time.Second):
			t.Fatal("blur check never posted")
			return nil
		}
	}

	c.Focus(context.Background())
	c.TextChanged(context.Background(), "university")
	c.Blur()
	first := next()

	// The first check is already queued when the input regains focus and
	// loses it again.
	c.Focus(context.Background())
	c.Blur()
	first()
	if !c.MenuOpen() {
		t.Fatal("check from the earlier blur closed the menu")
	}

	next()()
	if c.MenuOpen() {
		t.Error("menu still open after the latest blur check")
	}
}

// disposingSource disposes the control mid-load, the way a host tearing
// down a modal would while a fetch is in flight.
type disposingSource struct {
	c *Control[model.University]
}

func (d *disposingSource) All(ctx context.Context) []model.University {
	d.c.Dispose()
	return testUniversities()
}

func TestDispose_LateLoadIsIgnored(t *testing.T) {
	src := &disposingSource{}
	c := newUniversityControl(src, nil)
	src.c = c

	c.TextChanged(context.Background(), "exa")
	if c.MenuOpen() || len(c.Options()) != 0 {
		t.Error("disposed control rendered a late load")
	}
}

func TestSharedSource_OneFetchForManyControls(t *testing.T) {
	var fetches int
	src := datasource.New[model.University]("u", loader.FetcherFunc(func(ctx context.Context) ([]byte, error) {
		fetches++
		return []byte(`[{"id":"1","name":"Example University"}]`), nil
	}))
	a := newUniversityControl(src, func(o *Options[model.University]) { o.OptionIDPrefix = "a" })
	b := newUniversityControl(src, func(o *Options[model.University]) { o.OptionIDPrefix = "b" })

	if !a.NeedsLoad("exa") {
		t.Error("NeedsLoad should be true before the first load")
	}
	a.TextChanged(context.Background(), "exa")
	if b.NeedsLoad("exa") {
		t.Error("second control should see the shared cache")
	}
	b.TextChanged(context.Background(), "exa")

	if fetches != 1 {
		t.Errorf("fetches = %d, want 1", fetches)
	}
	if a.Options()[0].ID == b.Options()[0].ID {
		t.Error("controls with distinct prefixes produced colliding ids")
	}
}

func TestAccessibility(t *testing.T) {
	c := newUniversityControl(datasource.Static("u", testUniversities()), nil)
	c.TextChanged(context.Background(), "university")

	a := c.Accessibility()
	if a.Role != "listbox" || !a.Expanded || a.ActiveDescendant != "" {
		t.Errorf("open, no active: %+v", a)
	}
	if len(a.Options) != 2 || a.Options[0].Role != "option" {
		t.Fatalf("options = %+v", a.Options)
	}

	c.ArrowDown()
	a = c.Accessibility()
	if a.ActiveDescendant != c.Options()[0].ID || !a.Options[0].Selected || a.Options[1].Selected {
		t.Errorf("active option not tracked: %+v", a)
	}

	c.Escape()
	a = c.Accessibility()
	if a.Expanded || a.ActiveDescendant != "" {
		t.Errorf("closed menu still expanded: %+v", a)
	}
}

func TestStateString(t *testing.T) {
	if StateLocked.String() != "locked" || State(9).String() != "State(9)" {
		t.Error("unexpected State.String()")
	}
}
