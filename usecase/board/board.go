package board

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/taskboard/domain"
)

// LoadFailedMessage is shown when the initial fetch fails.
const LoadFailedMessage = "Failed to load tasks. Please try again."

// TaskSource fetches one status column from the task API.
type TaskSource interface {
	ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error)
}

// Board holds the four status columns. A task lives in exactly one column and
// its Status always names that column.
type Board struct {
	source   TaskSource
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func(time.Time) domain.TaskID

	mu      sync.RWMutex
	columns map[domain.Status][]domain.Task
}

type Option func(*Board)

func WithNotifier(n Notifier) Option {
	return func(b *Board) {
		if n != nil {
			b.notifier = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator replaces the generator used for tasks added without an id.
func WithIDGenerator(fn func(time.Time) domain.TaskID) Option {
	return func(b *Board) {
		if fn != nil {
			b.newID = fn
		}
	}
}

func New(source TaskSource, opts ...Option) *Board {
	b := &Board{
		source:   source,
		notifier: nopNotifier{},
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    localID,
		columns:  emptyColumns(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load fetches all four columns in parallel. Any failure empties the whole
// board and raises one destructive notification; there is no retry.
func (b *Board) Load(ctx context.Context) error {
	results := make([][]domain.Task, len(domain.Statuses))

	g, gctx := errgroup.WithContext(ctx)
	for i, status := range domain.Statuses {
		i, status := i, status
		g.Go(func() error {
			tasks, err := b.source.ListTasks(gctx, status)
			if err != nil {
				return fmt.Errorf("list %s tasks: %w", status, err)
			}
			results[i] = tasks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.mu.Lock()
		b.columns = emptyColumns()
		b.mu.Unlock()

		b.logger.Error("failed to load tasks", zap.Error(err))
		b.notifier.Notify(Notification{Title: "Error", Description: LoadFailedMessage, Variant: VariantDestructive})
		return err
	}

	columns := emptyColumns()
	seen := make(map[domain.TaskID]struct{})
	for i, status := range domain.Statuses {
		for _, task := range results[i] {
			if task.ID != "" {
				if _, dup := seen[task.ID]; dup {
					b.logger.Warn("duplicate task id dropped", zap.String("task_id", string(task.ID)))
					continue
				}
				seen[task.ID] = struct{}{}
			}
			task.Status = status
			columns[status] = append(columns[status], task.Clone())
		}
	}

	b.mu.Lock()
	b.columns = columns
	b.mu.Unlock()

	b.logger.Debug("board loaded", zap.Int("tasks", len(seen)))
	return nil
}

// MoveTask relocates a task to the end of dest and rewrites its status.
// Unknown ids and invalid statuses are ignored.
func (b *Board) MoveTask(id domain.TaskID, dest domain.Status) bool {
	if !dest.Valid() {
		return false
	}

	b.mu.Lock()
	task, ok := b.take(id)
	if !ok {
		b.mu.Unlock()
		return false
	}
	task.Status = dest
	b.columns[dest] = append(b.columns[dest], task)
	b.mu.Unlock()

	b.notifier.Notify(Notification{
		Title:       "Task Moved",
		Description: fmt.Sprintf("%s moved to %s", task.Title, dest),
	})
	return true
}

// ApplyTimeUpdate replaces the tracking record of a task. The last write wins.
func (b *Board) ApplyTimeUpdate(id domain.TaskID, timeSpent float64, isRunning bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	status, idx, ok := b.locate(id)
	if !ok {
		return false
	}
	record := &domain.TimeTracking{TimeSpent: timeSpent, IsRunning: isRunning}
	if isRunning {
		now := b.now()
		record.LastStarted = &now
	}
	b.columns[status][idx].TimeTracking = record
	return true
}

// AddTask validates a draft, fills the defaults of a new card and appends it
// to its column.
func (b *Board) AddTask(draft domain.Task) (domain.Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		b.notifier.Notify(Notification{Title: "Error", Description: domain.ErrTitleRequired.Message, Variant: VariantDestructive})
		return domain.Task{}, domain.ErrTitleRequired
	}

	now := b.now()
	task := draft.Clone()
	if task.Status == "" {
		task.Status = domain.StatusDraft
	}
	if !task.Status.Valid() {
		b.notifier.Notify(Notification{Title: "Error", Description: domain.ErrInvalidStatus.Message, Variant: VariantDestructive})
		return domain.Task{}, domain.ErrInvalidStatus
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	if task.TimeTracking == nil {
		task.TimeTracking = &domain.TimeTracking{}
	}
	if task.CreatedAt == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		task.CreatedAt = &today
	}

	b.mu.Lock()
	if task.ID == "" {
		task.ID = b.newID(now)
	}
	if _, _, exists := b.locate(task.ID); exists {
		b.mu.Unlock()
		return domain.Task{}, domain.NewError(domain.ErrCodeConflict, "task already on the board")
	}
	b.columns[task.Status] = append(b.columns[task.Status], task)
	b.mu.Unlock()

	b.notifier.Notify(Notification{Title: "Task Created", Description: "Your task has been added successfully"})
	return task.Clone(), nil
}

// EditTask replaces a task by id. A changed status moves the task to the end
// of its new column; otherwise it keeps its position.
func (b *Board) EditTask(updated domain.Task) bool {
	if !updated.Status.Valid() {
		return false
	}

	b.mu.Lock()
	status, idx, ok := b.locate(updated.ID)
	if !ok {
		b.mu.Unlock()
		return false
	}
	task := updated.Clone()
	if status == task.Status {
		b.columns[status][idx] = task
	} else {
		b.removeAt(status, idx)
		b.columns[task.Status] = append(b.columns[task.Status], task)
	}
	b.mu.Unlock()

	b.notifier.Notify(Notification{Title: "Task Updated", Description: "Your task has been updated successfully."})
	return true
}

// RemoveTask drops a task from whichever column holds it.
func (b *Board) RemoveTask(id domain.TaskID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.take(id)
	return ok
}

// Find returns a copy of the task with the given id.
func (b *Board) Find(id domain.TaskID) (domain.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	status, idx, ok := b.locate(id)
	if !ok {
		return domain.Task{}, false
	}
	return b.columns[status][idx].Clone(), true
}

// Column returns a copy of one column in board order.
func (b *Board) Column(status domain.Status) []domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneTasks(b.columns[status])
}

// Columns returns a copy of every column keyed by status.
func (b *Board) Columns() map[domain.Status][]domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[domain.Status][]domain.Task, len(domain.Statuses))
	for _, status := range domain.Statuses {
		out[status] = cloneTasks(b.columns[status])
	}
	return out
}

// All returns every task, column by column in status order.
func (b *Board) All() []domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domain.Task
	for _, status := range domain.Statuses {
		out = append(out, cloneTasks(b.columns[status])...)
	}
	return out
}

// Visible applies the filter to each column independently.
func (b *Board) Visible(filter Filter) map[domain.Status][]domain.Task {
	columns := b.Columns()
	for status, tasks := range columns {
		columns[status] = filter.Apply(tasks)
	}
	return columns
}

// locate scans the columns in status order. Callers hold the lock.
func (b *Board) locate(id domain.TaskID) (domain.Status, int, bool) {
	if id == "" {
		return "", 0, false
	}
	for _, status := range domain.Statuses {
		for i := range b.columns[status] {
			if b.columns[status][i].ID == id {
				return status, i, true
			}
		}
	}
	return "", 0, false
}

func (b *Board) take(id domain.TaskID) (domain.Task, bool) {
	status, idx, ok := b.locate(id)
	if !ok {
		return domain.Task{}, false
	}
	task := b.columns[status][idx]
	b.removeAt(status, idx)
	return task, true
}

func (b *Board) removeAt(status domain.Status, idx int) {
	column := b.columns[status]
	b.columns[status] = append(column[:idx:idx], column[idx+1:]...)
}

func emptyColumns() map[domain.Status][]domain.Task {
	columns := make(map[domain.Status][]domain.Task, len(domain.Statuses))
	for _, status := range domain.Statuses {
		columns[status] = []domain.Task{}
	}
	return columns
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

func localID(now time.Time) domain.TaskID {
	return domain.TaskID("task-" + strconv.FormatInt(now.UnixMilli(), 10))
}
