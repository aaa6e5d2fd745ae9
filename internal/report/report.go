// Package report defines the status events emitted by a running session
// and the console reporter that displays them.
package report

import (
	"time"

	"pks/internal/keys"
)

// Event is a status update from the scheduling coordinator. The concrete
// types below are the only implementations.
type Event interface {
	isEvent()
}

// KeySent reports one successful key emission. Step/Of are 1-based
// sequence positions; both are zero in independent mode.
type KeySent struct {
	Combo   keys.Combo
	Process string
	Step    int
	Of      int
}

// SendFailed reports a non-fatal emission failure.
type SendFailed struct {
	Combo keys.Combo
	Err   error
}

// ProcessRelocated reports that the target process was (re-)resolved.
type ProcessRelocated struct {
	PID uint32
}

// ProcessUnavailable reports one failed location attempt out of the
// configured bound.
type ProcessUnavailable struct {
	Attempt int
	Max     int
}

// Paused reports that the session stopped emitting.
type Paused struct{}

// Resumed reports that the session continues emitting.
type Resumed struct{}

// CycleDone reports completion of the N-th full pass over the sequence.
type CycleDone struct {
	N int
}

// Stopped is the terminal event for a cleanly ended session.
type Stopped struct {
	Reason  string
	Sent    int
	Elapsed time.Duration
}

// Failed is the terminal event for a fatally ended session.
type Failed struct {
	Err     error
	Sent    int
	Elapsed time.Duration
}

func (KeySent) isEvent()            {}
func (SendFailed) isEvent()         {}
func (ProcessRelocated) isEvent()   {}
func (ProcessUnavailable) isEvent() {}
func (Paused) isEvent()             {}
func (Resumed) isEvent()            {}
func (CycleDone) isEvent()          {}
func (Stopped) isEvent()            {}
func (Failed) isEvent()             {}

// Reporter receives session status events. Implementations must be safe
// for concurrent use; the coordinator may report from multiple goroutines.
type Reporter interface {
	Report(Event)
}

// Nop discards all events.
type Nop struct{}

// Report implements Reporter.
func (Nop) Report(Event) {}
