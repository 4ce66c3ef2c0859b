// Package validation turns an untyped request payload into task fields that
// are safe to persist. It has no side effects and does not read the clock.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/models/task"
)

const (
	TitleMinLen       = 2
	TitleMaxLen       = 120
	DescriptionMaxLen = 2000
	CategoryMaxLen    = 100
	AssigneeMaxLen    = 120
	MaxTags           = 10

	// Due dates must encode as RFC3339 once moved to UTC.
	MinDueYear = 1
	MaxDueYear = 9999
)

const (
	MsgTitleRequired  = "Title is required."
	MsgInvalidStatus  = "Invalid status."
	MsgInvalidPrio    = "Invalid priority."
	MsgInvalidDueDate = "Due date must be a valid date (YYYY-MM-DD or RFC3339)."
	MsgInvalidTags    = "Tags must be a list of strings or a comma-separated string."
)

var (
	MsgTitleLength       = fmt.Sprintf("Title must be between %d and %d characters.", TitleMinLen, TitleMaxLen)
	MsgDescriptionLength = fmt.Sprintf("Description must be at most %d characters.", DescriptionMaxLen)
	MsgCategoryLength    = fmt.Sprintf("Category must be at most %d characters.", CategoryMaxLen)
	MsgAssigneeLength    = fmt.Sprintf("Assignee must be at most %d characters.", AssigneeMaxLen)
	MsgTooManyTags       = fmt.Sprintf("A task can have at most %d tags.", MaxTags)
)

var dueDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// Task validates every rule and collects all violations in field order.
// It returns either the validated fields or a non-empty error list.
func Task(payload map[string]any) (task.Fields, []string) {
	var (
		f    task.Fields
		errs []string
	)

	title, ok := optionalString(payload, "title")
	switch {
	case !ok:
		errs = append(errs, "Title must be a string.")
	case title == "":
		errs = append(errs, MsgTitleRequired)
	case !lengthBetween(title, TitleMinLen, TitleMaxLen):
		errs = append(errs, MsgTitleLength)
	default:
		f.Title = title
	}

	description, ok := optionalString(payload, "description")
	switch {
	case !ok:
		errs = append(errs, "Description must be a string.")
	case !lengthBetween(description, 0, DescriptionMaxLen):
		errs = append(errs, MsgDescriptionLength)
	default:
		f.Description = description
	}

	status, ok := optionalString(payload, "status")
	switch {
	case !ok:
		errs = append(errs, MsgInvalidStatus)
	case status == "":
		f.Status = task.StatusPending
	case !task.Status(status).Valid():
		errs = append(errs, MsgInvalidStatus)
	default:
		f.Status = task.Status(status)
	}

	priority, ok := optionalString(payload, "priority")
	switch {
	case !ok:
		errs = append(errs, MsgInvalidPrio)
	case priority == "":
		f.Priority = task.PriorityMedium
	case !task.Priority(priority).Valid():
		errs = append(errs, MsgInvalidPrio)
	default:
		f.Priority = task.Priority(priority)
	}

	if due, err := dueDate(payload["dueDate"]); err != nil {
		errs = append(errs, MsgInvalidDueDate)
	} else {
		f.DueDate = due
	}

	category, ok := optionalString(payload, "category")
	switch {
	case !ok:
		errs = append(errs, "Category must be a string.")
	case !lengthBetween(category, 0, CategoryMaxLen):
		errs = append(errs, MsgCategoryLength)
	default:
		f.Category = category
	}

	assignee, ok := optionalString(payload, "assignee")
	switch {
	case !ok:
		errs = append(errs, "Assignee must be a string.")
	case !lengthBetween(assignee, 0, AssigneeMaxLen):
		errs = append(errs, MsgAssigneeLength)
	default:
		f.Assignee = assignee
	}

	tags, ok := normalizeTags(payload["tags"])
	switch {
	case !ok:
		errs = append(errs, MsgInvalidTags)
	case len(tags) > MaxTags:
		errs = append(errs, MsgTooManyTags)
	default:
		f.Tags = tags
	}

	if len(errs) > 0 {
		return task.Fields{}, errs
	}
	return f, nil
}

// optionalString returns the trimmed value; absent and null read as "".
// ok is false only when the value is present but not a string.
func optionalString(payload map[string]any, key string) (string, bool) {
	raw, present := payload[key]
	if !present || raw == nil {
		return "", true
	}
	s, isString := raw.(string)
	if !isString {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func dueDate(raw any) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("dueDate: want string, got %T", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		parsed = parsed.UTC()
		if parsed.Year() < MinDueYear || parsed.Year() > MaxDueYear {
			return nil, fmt.Errorf("dueDate: %q falls outside years %d-%d", s, MinDueYear, MaxDueYear)
		}
		return &parsed, nil
	}
	return nil, fmt.Errorf("dueDate: unparsable value %q", s)
}

// normalizeTags accepts a list of strings or a comma-separated string.
// Entries are trimmed, empties dropped and repeats collapsed to the first
// occurrence, so the result keeps input order.
func normalizeTags(raw any) ([]string, bool) {
	var parts []string
	switch v := raw.(type) {
	case nil:
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		parts = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			parts = append(parts, s)
		}
	default:
		return nil, false
	}

	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		tags = append(tags, p)
	}
	return tags, true
}
