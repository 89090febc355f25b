package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestFilter_Search(t *testing.T) {
	tasks := []domain.Task{{Title: "Fix bug"}, {Title: "Write docs"}}

	got := Filter{Search: "bug"}.Apply(tasks)
	assert.Equal(t, []string{"Fix bug"}, titles(got))

	got = Filter{Search: "BUG"}.Apply(tasks)
	assert.Equal(t, []string{"Fix bug"}, titles(got), "search is case-insensitive")
}

func TestFilter_Priority(t *testing.T) {
	tasks := []domain.Task{
		{Title: "a", Priority: domain.PriorityHigh},
		{Title: "b", Priority: domain.PriorityLow},
	}

	assert.Len(t, Filter{Priority: "High"}.Apply(tasks), 1)
	assert.Len(t, Filter{Priority: FilterAll}.Apply(tasks), 2)
	assert.Len(t, Filter{}.Apply(tasks), 2)
}

func TestFilter_TagsAnyOf(t *testing.T) {
	tasks := []domain.Task{
		{Title: "a", Tags: []string{"Bug", "Urgent"}},
		{Title: "b", Tags: []string{"Design"}},
		{Title: "c"},
	}

	got := Filter{Tags: []string{"Urgent", "Design"}}.Apply(tasks)
	assert.Equal(t, []string{"a", "b"}, titles(got))
}

func TestFilter_CategoryAndConjunction(t *testing.T) {
	tasks := []domain.Task{
		{Title: "Fix login bug", Category: "Work", Priority: domain.PriorityHigh, Tags: []string{"Bug"}},
		{Title: "Fix sink", Category: "Home", Priority: domain.PriorityHigh, Tags: []string{"Bug"}},
		{Title: "Fix bug report", Category: "Work", Priority: domain.PriorityLow, Tags: []string{"Bug"}},
		{Title: "Fix bug in CI", Category: "Work", Priority: domain.PriorityHigh},
	}

	f := Filter{Search: "fix", Tags: []string{"Bug"}, Priority: "High", Category: "Work"}
	assert.Equal(t, []string{"Fix login bug"}, titles(f.Apply(tasks)))
}

func TestFilter_StableAndIdempotent(t *testing.T) {
	tasks := []domain.Task{
		{Title: "t1", Priority: domain.PriorityHigh},
		{Title: "t2", Priority: domain.PriorityLow},
		{Title: "t3", Priority: domain.PriorityHigh},
		{Title: "t4", Priority: domain.PriorityHigh},
	}
	filters := []Filter{
		{},
		{Priority: "High"},
		{Search: "t"},
		{Search: "3"},
		{Tags: []string{"none"}},
	}

	for _, f := range filters {
		once := f.Apply(tasks)
		twice := f.Apply(once)
		assert.Equal(t, once, twice)
	}
	assert.Equal(t, []string{"t1", "t3", "t4"}, titles(Filter{Priority: "High"}.Apply(tasks)))
}

func TestFilter_ResetAndActive(t *testing.T) {
	f := Filter{Search: "x", Tags: []string{"a"}, Priority: "Low", Category: "Work"}
	require.True(t, f.Active())

	f.Reset()

	assert.Equal(t, Filter{}, f)
	assert.False(t, f.Active())
	assert.False(t, Filter{Priority: FilterAll, Category: FilterAll}.Active())
}

func TestVisible_PerColumn(t *testing.T) {
	b, _ := newTestBoard(t, map[domain.Status][]domain.Task{
		domain.StatusDraft:      {{ID: "a", Title: "Fix bug"}, {ID: "b", Title: "Docs"}},
		domain.StatusInProgress: {{ID: "c", Title: "Bug bash"}},
	})

	visible := b.Visible(Filter{Search: "bug"})

	assert.Equal(t, []string{"Fix bug"}, titles(visible[domain.StatusDraft]))
	assert.Equal(t, []string{"Bug bash"}, titles(visible[domain.StatusInProgress]))
	assert.Empty(t, visible[domain.StatusDone])
	assert.Len(t, b.All(), 3, "filtering does not change the board")
}

func TestCalendarAndSummary(t *testing.T) {
	b, _ := newTestBoard(t, map[domain.Status][]domain.Task{
		domain.StatusDraft: {
			{ID: "a", Title: "A", DueDate: "2024-03-15"},
			{ID: "b", Title: "B", DueDate: "2024-03-14T10:00:00Z"},
		},
		domain.StatusDone: {
			{ID: "c", Title: "C", DueDate: "2024-03-15", TimeTracking: &domain.TimeTracking{TimeSpent: 30}},
			{ID: "d", Title: "D", TimeTracking: &domain.TimeTracking{TimeSpent: 12.5, IsRunning: true}},
		},
	})

	due := b.TasksDueOn(time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"A", "C"}, titles(due))

	dates := b.DueDates()
	require.Len(t, dates, 2)
	assert.Equal(t, "2024-03-14", dates[0].Format(domain.DateLayout))
	assert.Equal(t, "2024-03-15", dates[1].Format(domain.DateLayout))

	s := b.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Counts[domain.StatusDone])
	assert.InDelta(t, 0.5, s.CompletionRate, 1e-9)
	assert.InDelta(t, 42.5, s.TrackedMinutes, 1e-9)
	assert.Equal(t, 1, s.Running)
}
