package task

import (
	"strings"
	"time"
)

// TaskOption is one field of a partial update.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = strings.TrimSpace(title)
	}
}

// WithDescription sets the description, an empty string clears it.
func WithDescription(description string) TaskOption {
	return func(task *Task) {
		if description == "" {
			task.Description = nil
			return
		}
		task.Description = &description
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

// WithDueDate sets the due date, a zero time clears it.
func WithDueDate(dueDate time.Time) TaskOption {
	return func(task *Task) {
		if dueDate.IsZero() {
			task.DueDate = nil
			return
		}
		d := Stamp(dueDate)
		task.DueDate = &d
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.Completed = completed
	}
}

func WithPinned(pinned bool) TaskOption {
	return func(task *Task) {
		task.Pinned = pinned
	}
}

// Apply runs opts on t, nil options are skipped.
func Apply(t *Task, opts ...TaskOption) {
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
}
