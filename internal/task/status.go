package task

import (
	"fmt"
	"strings"
)

// Status represents a task status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusSkip       Status = "skip"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusSkip, StatusInProgress, StatusDone}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusSkip, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the human-readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "Todo"
	case StatusSkip:
		return "Skip"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// String returns the wire value of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts user input into a Status.
// Matching is case-insensitive and accepts "in-progress" for "in_progress".
func ParseStatus(input string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	status := Status(normalized)
	if !status.Valid() {
		return "", fmt.Errorf("%w %q, must be one of: todo, skip, in_progress, done", ErrInvalidStatus, input)
	}
	return status, nil
}
