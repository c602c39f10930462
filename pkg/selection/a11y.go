package selection

// Accessibility mirrors the listbox contract an assistive surface needs:
// the menu is a listbox, every option has a unique id, and the expanded
// flag and active descendant track the menu exactly.
type Accessibility struct {
	Role             string
	Expanded         bool
	ActiveDescendant string
	ReadOnly         bool
	Options          []AccessibleOption
}

// AccessibleOption is one option in the listbox
type AccessibleOption struct {
	ID       string
	Role     string
	Label    string
	Selected bool
}

// Accessibility returns the current listbox contract. ActiveDescendant is
// empty whenever the menu is closed or nothing is highlighted.
func (c *Control[R]) Accessibility() Accessibility {
	a := Accessibility{
		Role:     "listbox",
		Expanded: c.menuOpen,
		ReadOnly: c.readOnly,
	}
	for i, opt := range c.options {
		active := c.menuOpen && i == c.active
		if active {
			a.ActiveDescendant = opt.ID
		}
		a.Options = append(a.Options, AccessibleOption{
			ID:       opt.ID,
			Role:     "option",
			Label:    opt.Label,
			Selected: active,
		})
	}
	return a
}
