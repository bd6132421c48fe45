// Package fsm is a small table driven finite state machine.
//
// A Ruleset maps (state, event) pairs onto callbacks. The callback performs
// the work of entering the next state and returns that state, which the
// Machine then records through its StateEvent.
package fsm

import (
	"fmt"
)

type State int

type Event int

// Callback is invoked on a valid transition. The returned State becomes the
// current state of the machine.
type Callback func(m Machine, data interface{}) State

// StateEvent tracks current and previous state/event of a Machine.
type StateEvent interface {
	CurrentState() State
	PreviousState() State
	CurrentEvent() Event
	PreviousEvent() Event
	SetState(s State)
	SetEvent(src string, e Event)
	EnableLogging(ena bool)
	IsLoggerEna() bool
}

type Transition struct {
	S State
	E Event
}

type Ruleset map[Transition]Callback

// AddRule registers cb to be run when event e is seen in state s.  A later
// rule for the same pair replaces the earlier one.
func (r Ruleset) AddRule(s State, e Event, cb Callback) {
	r[Transition{S: s, E: e}] = cb
}

// HasRule reports whether a rule exists for the pair.
func (r Ruleset) HasRule(s State, e Event) bool {
	_, ok := r[Transition{S: s, E: e}]
	return ok
}

type Machine struct {
	Curr  StateEvent
	Rules *Ruleset
}

// InvalidTransitionError is returned by ProcessEvent when no rule matches.
type InvalidTransitionError struct {
	Src   string
	State State
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("fsm: no transition for state %d event %d (src %s)", e.State, e.Event, e.Src)
}

// Start forces the machine into state s without running any callback.
func (m *Machine) Start(s State) {
	m.Curr.SetState(s)
}

// ProcessEvent runs the callback registered for the current state and e.
func (m *Machine) ProcessEvent(src string, e Event, data interface{}) error {
	if m.Rules == nil || m.Curr == nil {
		return fmt.Errorf("fsm: machine not initialized")
	}
	cb, ok := (*m.Rules)[Transition{S: m.Curr.CurrentState(), E: e}]
	if !ok {
		return &InvalidTransitionError{Src: src, State: m.Curr.CurrentState(), Event: e}
	}
	m.Curr.SetEvent(src, e)
	m.Curr.SetState(cb(*m, data))
	return nil
}
