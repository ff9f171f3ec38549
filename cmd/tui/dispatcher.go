package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/view"
)

const dispatchQueueSize = 64

// dispatcher feeds actions to one session in the order they were enqueued.
// Update runs on a single goroutine, so enqueueing from it preserves key order.
type dispatcher struct {
	session *session.Session
	actions chan view.Action
	results chan tea.Msg
}

func newDispatcher(s *session.Session) *dispatcher {
	d := &dispatcher{
		session: s,
		actions: make(chan view.Action, dispatchQueueSize),
		results: make(chan tea.Msg, dispatchQueueSize),
	}

	go d.run()

	return d
}

func (d *dispatcher) run() {
	for action := range d.actions {
		snapshot, err := d.session.Dispatch(context.Background(), action)
		if err != nil {
			d.results <- DispatchErrorMsg{Err: err}

			continue
		}

		d.results <- SnapshotMsg{Snapshot: snapshot}
	}
}

// enqueue queues action and returns a command that delivers one result.
func (d *dispatcher) enqueue(action view.Action) tea.Cmd {
	d.actions <- action

	results := d.results

	return func() tea.Msg {
		return <-results
	}
}

// close stops the worker once the queued actions are done.
func (d *dispatcher) close() {
	close(d.actions)
}
