package ui

import "github.com/ppimalaysia/regform/pkg/selection"

// OptionItem wraps a committed-able option to implement list.Item
type OptionItem struct {
	ID    string
	Value string
	Label string
}

func optionItem[R any](o selection.Option[R]) OptionItem {
	return OptionItem{ID: o.ID, Value: o.Value, Label: o.Label}
}

func (i OptionItem) Title() string {
	return i.Label
}

func (i OptionItem) Description() string {
	return i.Value
}

func (i OptionItem) FilterValue() string {
	return i.Label + " " + i.Value
}
