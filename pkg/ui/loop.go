package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppimalaysia/regform/pkg/selection"
)

// loopQueue carries deferred control work (the blur check) from timer
// goroutines back onto the Update goroutine. Work is delivered as
// queuedMsg, so anything Update handles first (a click) runs first.
type loopQueue struct {
	ch chan func()
}

func newLoopQueue() *loopQueue {
	return &loopQueue{ch: make(chan func(), 32)}
}

// Post implements selection.Queue
func (q *loopQueue) Post(fn func()) {
	q.ch <- fn
}

var _ selection.Queue = (*loopQueue)(nil)

type queuedMsg struct {
	fn func()
}

// wait returns a command that delivers the next queued function
func (q *loopQueue) wait() tea.Cmd {
	return func() tea.Msg {
		return queuedMsg{fn: <-q.ch}
	}
}

// datasetLoadedMsg reports that a shared dataset finished loading. Every
// component waiting on that dataset replays its pending input.
type datasetLoadedMsg struct {
	name string
}

// warmer is anything that can load its dataset off the loop
type warmer interface {
	Warm(ctx context.Context)
}

func warmCmd(ctx context.Context, name string, w warmer) tea.Cmd {
	return func() tea.Msg {
		w.Warm(ctx)
		return datasetLoadedMsg{name: name}
	}
}
