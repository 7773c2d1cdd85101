package task

import "time"

// Status tracks task progress.
type Status string

const (
	// StatusOpen marks a task not yet started.
	StatusOpen Status = "open"
	// StatusInProgress marks a task being worked on.
	StatusInProgress Status = "in_progress"
	// StatusDone marks a finished task.
	StatusDone Status = "done"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Priority buckets used by the desk's board.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Task is a unit of team work.
type Task struct {
	ID          string
	Title       string
	Description string
	Assignee    string
	Status      Status
	Priority    string
	DueDate     time.Time // zero when no deadline
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
