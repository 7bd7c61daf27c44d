// Package lifecycle validates document status transitions against a fixed
// transition table. Documents only ever move forward; terminal states have no
// outgoing edges.
package lifecycle

import "errors"

var (
	ErrUnknownStatus     = errors.New("unknown_status")
	ErrIllegalTransition = errors.New("illegal_transition")
)

type Status interface {
	~string
}

type Machine[S Status] struct {
	transitions map[S][]S
}

func New[S Status](transitions map[S][]S) Machine[S] {
	return Machine[S]{transitions: transitions}
}

// Known reports whether s is a recognized status value.
func (m Machine[S]) Known(s S) bool {
	_, ok := m.transitions[s]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (m Machine[S]) Terminal(s S) bool {
	next, ok := m.transitions[s]
	return ok && len(next) == 0
}

// Transition validates moving from one status to another.
func (m Machine[S]) Transition(from, to S) error {
	if !m.Known(from) || !m.Known(to) {
		return ErrUnknownStatus
	}
	for _, next := range m.transitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrIllegalTransition
}
