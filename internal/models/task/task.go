package task

import (
	"time"
)

type Status string

type Priority string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Fields is the client-controlled part of a task. A Fields value is only
// ever produced by the validation package, so it always satisfies the
// field constraints.
type Fields struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	Category    string
	Assignee    string
	Tags        []string
}

// Task is the stored record. JSON names follow the browser client, BSON
// names the tasks collection.
type Task struct {
	ID          string     `json:"_id" bson:"_id" db:"id"`
	Title       string     `json:"title" bson:"title" db:"title"`
	Description string     `json:"description" bson:"description" db:"description"`
	Status      Status     `json:"status" bson:"status" db:"status"`
	Priority    Priority   `json:"priority" bson:"priority" db:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty" bson:"dueDate" db:"due_date"`
	Category    string     `json:"category" bson:"category" db:"category"`
	Assignee    string     `json:"assignee" bson:"assignee" db:"assignee"`
	Tags        []string   `json:"tags" bson:"tags" db:"tags"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// New builds an unsaved task from validated fields. Id and timestamps are
// assigned through options by the store.
func New(f Fields, opts ...TaskOption) *Task {
	t := &Task{}
	t.Apply(f)
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Apply overwrites every mutable field. Nothing from the previous version
// survives, which is what makes updates a full replace.
func (t *Task) Apply(f Fields) {
	t.Title = f.Title
	t.Description = f.Description
	t.Status = f.Status
	t.Priority = f.Priority
	t.DueDate = cloneTime(f.DueDate)
	t.Category = f.Category
	t.Assignee = f.Assignee
	t.Tags = cloneTags(f.Tags)
}

func (t *Task) Fields() Fields {
	return Fields{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     cloneTime(t.DueDate),
		Category:    t.Category,
		Assignee:    t.Assignee,
		Tags:        cloneTags(t.Tags),
	}
}

func (t *Task) Clone() *Task {
	c := *t
	c.DueDate = cloneTime(t.DueDate)
	c.Tags = cloneTags(t.Tags)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
