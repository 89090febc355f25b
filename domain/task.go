package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskID is the canonical identifier for tasks and subtasks.
type TaskID string

// Status is one of the four fixed board columns.
type Status string

const (
	StatusDraft      Status = "Draft"
	StatusInProgress Status = "In Progress"
	StatusEditing    Status = "Editing"
	StatusDone       Status = "Done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusDraft, StatusInProgress, StatusEditing, StatusDone}

// ParseStatus converts a column label into a Status.
func ParseStatus(label string) (Status, error) {
	for _, s := range Statuses {
		if strings.EqualFold(strings.TrimSpace(label), string(s)) {
			return s, nil
		}
	}
	return "", WrapError(ErrCodeInvalid, ErrInvalidStatus.Message, fmt.Errorf("unknown status %q", label))
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TaskType only affects how a card is styled.
type TaskType string

const (
	TaskTypeMain      TaskType = "Main Task"
	TaskTypeSecondary TaskType = "Secondary Task"
	TaskTypeTertiary  TaskType = "Tertiary Task"
)

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// TimeTracking records accumulated work on a task. TimeSpent is in minutes.
type TimeTracking struct {
	TimeSpent   float64    `json:"timeSpent"`
	IsRunning   bool       `json:"isRunning"`
	LastStarted *time.Time `json:"lastStarted,omitempty"`
}

type Subtask struct {
	ID        TaskID `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	AuthorID  string `json:"authorId"`
}

// UnmarshalJSON accepts both "id" and the legacy "_id" field.
func (s *Subtask) UnmarshalJSON(data []byte) error {
	type plain Subtask
	var wire struct {
		plain
		LegacyID TaskID `json:"_id"`
	}
	previous := s.ID
	wire.plain = plain(*s)
	wire.ID = ""
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*s = Subtask(wire.plain)
	switch {
	case s.ID != "":
	case wire.LegacyID != "":
		s.ID = wire.LegacyID
	default:
		s.ID = previous
	}
	return nil
}

// Task is a card on the board.
type Task struct {
	ID           TaskID        `json:"id"`
	UserID       string        `json:"userId,omitempty"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Status       Status        `json:"status"`
	Type         TaskType      `json:"type,omitempty"`
	Progress     int           `json:"progress"`
	Subtasks     []Subtask     `json:"subtasks"`
	Tags         []string      `json:"tags,omitempty"`
	Priority     Priority      `json:"priority,omitempty"`
	Comments     int           `json:"comments,omitempty"`
	Files        int           `json:"files,omitempty"`
	Starred      bool          `json:"starred,omitempty"`
	DueDate      string        `json:"dueDate,omitempty"`
	AssignedTo   string        `json:"assignedTo,omitempty"`
	Category     string        `json:"category,omitempty"`
	TimeTracking *TimeTracking `json:"timeTracking,omitempty"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// UnmarshalJSON collapses the "id"/"_id" pair into ID so the rest of the
// code only ever compares one field.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var wire struct {
		plain
		LegacyID TaskID `json:"_id"`
	}
	previous := t.ID
	wire.plain = plain(*t)
	wire.ID = ""
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*t = Task(wire.plain)
	switch {
	case t.ID != "":
	case wire.LegacyID != "":
		t.ID = wire.LegacyID
	default:
		t.ID = previous
	}
	return nil
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// Validate checks the fields a task needs before it can be stored.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return NewError(ErrCodeInvalid, "invalid task priority")
	}
	if t.DueDate != "" {
		if _, ok := t.Due(); !ok {
			return NewError(ErrCodeInvalid, "invalid due date")
		}
	}
	if t.Progress < 0 {
		t.Progress = 0
	}
	if t.Progress > 100 {
		t.Progress = 100
	}
	return nil
}

// Due parses DueDate. Both plain dates and RFC3339 timestamps are accepted.
func (t *Task) Due() (time.Time, bool) {
	if t == nil || t.DueDate == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(DateLayout, t.DueDate); err == nil {
		return d, true
	}
	if ts, err := time.Parse(time.RFC3339, t.DueDate); err == nil {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// HasAnyTag reports whether the task carries any of the given tags.
func (t *Task) HasAnyTag(tags []string) bool {
	for _, have := range t.Tags {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate board state through shared slices.
// Empty slices stay empty rather than becoming nil, so they still encode as [].
func (t Task) Clone() Task {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = append(make([]Subtask, 0, len(t.Subtasks)), t.Subtasks...)
	}
	if t.Tags != nil {
		out.Tags = append(make([]string, 0, len(t.Tags)), t.Tags...)
	}
	if t.TimeTracking != nil {
		tt := *t.TimeTracking
		if tt.LastStarted != nil {
			ls := *tt.LastStarted
			tt.LastStarted = &ls
		}
		out.TimeTracking = &tt
	}
	return out
}
