package board

import (
	"sort"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Summary is the analytics snapshot of the board.
type Summary struct {
	Counts         map[domain.Status]int `json:"counts"`
	Total          int                   `json:"total"`
	CompletionRate float64               `json:"completionRate"`
	TrackedMinutes float64               `json:"trackedMinutes"`
	Running        int                   `json:"running"`
}

// Categories returns the distinct non-empty categories, sorted.
func (b *Board) Categories() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, status := range domain.Statuses {
		for _, task := range b.columns[status] {
			if task.Category != "" {
				seen[task.Category] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Tags returns the distinct tags on the board, sorted.
func (b *Board) Tags() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, status := range domain.Statuses {
		for _, task := range b.columns[status] {
			for _, tag := range task.Tags {
				seen[tag] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// TasksDueOn lists the tasks due on the calendar day of date.
func (b *Board) TasksDueOn(date time.Time) []domain.Task {
	day := date.Format(domain.DateLayout)
	var out []domain.Task
	for _, task := range b.All() {
		if due, ok := task.Due(); ok && due.Format(domain.DateLayout) == day {
			out = append(out, task)
		}
	}
	return out
}

// DueDates returns every day that has at least one task due, ascending.
func (b *Board) DueDates() []time.Time {
	seen := make(map[string]time.Time)
	for _, task := range b.All() {
		if due, ok := task.Due(); ok {
			seen[due.Format(domain.DateLayout)] = due
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (b *Board) Summary() Summary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Summary{Counts: make(map[domain.Status]int, len(domain.Statuses))}
	for _, status := range domain.Statuses {
		for _, task := range b.columns[status] {
			s.Counts[status]++
			s.Total++
			if task.TimeTracking != nil {
				s.TrackedMinutes += task.TimeTracking.TimeSpent
				if task.TimeTracking.IsRunning {
					s.Running++
				}
			}
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Counts[domain.StatusDone]) / float64(s.Total)
	}
	return s
}
