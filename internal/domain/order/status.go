package order

import "fmt"

// Status is the closed set of order states. The backend is the final arbiter
// of transitions; the client-side table exists so impossible states are never
// rendered or sent.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// UnknownStatusError indicates a status string outside the closed set.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Value)
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusInProgress, StatusCompleted, StatusCanceled:
		return Status(s), nil
	}
	return "", &UnknownStatusError{Value: s}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no transition leads out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// transitions lists the permitted next states per status. Self-transitions
// are allowed idempotently and are handled in CanTransitionTo.
var transitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusCanceled},
	StatusInProgress: {StatusCompleted, StatusCanceled},
	StatusCompleted:  {},
	StatusCanceled:   {},
}

// CanTransitionTo reports whether s may transition to next. Any status may
// transition to itself.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
