package board

import (
	"strings"

	"github.com/fastygo/taskboard/domain"
)

// FilterAll disables the priority or category predicate.
const FilterAll = "all"

// Filter is the conjunction of the four board filter controls.
type Filter struct {
	Search   string
	Tags     []string
	Priority string
	Category string
}

// Matches reports whether the task passes every predicate.
func (f Filter) Matches(task domain.Task) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Tags) > 0 && !task.HasAnyTag(f.Tags) {
		return false
	}
	if !isAll(f.Priority) && string(task.Priority) != f.Priority {
		return false
	}
	if !isAll(f.Category) && task.Category != f.Category {
		return false
	}
	return true
}

// Apply keeps the matching tasks in their original order.
func (f Filter) Apply(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Matches(task) {
			out = append(out, task)
		}
	}
	return out
}

// Reset clears every control.
func (f *Filter) Reset() {
	*f = Filter{}
}

// Active is true when any control narrows the result.
func (f Filter) Active() bool {
	return f.Search != "" || len(f.Tags) > 0 || !isAll(f.Priority) || !isAll(f.Category)
}

func isAll(value string) bool {
	return value == "" || value == FilterAll
}
