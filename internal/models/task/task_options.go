package task

import (
	"time"
)

type TaskOption func(*Task)

func WithID(id string) TaskOption {
	if id == "" {
		return nil
	}
	return func(task *Task) {
		task.ID = id
	}
}

// WithCreatedAt stamps both timestamps; a fresh task has never been updated.
func WithCreatedAt(at time.Time) TaskOption {
	if at.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.CreatedAt = at
		task.UpdatedAt = at
	}
}

func WithUpdatedAt(at time.Time) TaskOption {
	if at.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.UpdatedAt = at
	}
}
