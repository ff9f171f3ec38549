package main

import "github.com/rxtech-lab/stockview/internal/session"

// SnapshotMsg carries the result of a dispatched action.
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

// DispatchErrorMsg reports a dispatch that could not run at all.
type DispatchErrorMsg struct {
	Err error
}

// SessionStartedMsg signals that a provider was opened and the session exists.
type SessionStartedMsg struct {
	Session *session.Session
}
