package tracker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// MinutePerTick is added to a running session on every tick of the default
// one-second interval.
const MinutePerTick = 1.0 / 60.0

// Reporter receives the tracking record whenever a session starts or stops.
type Reporter interface {
	ApplyTimeUpdate(id domain.TaskID, timeSpent float64, isRunning bool) bool
}

// TickerFunc returns a tick channel and its stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type session struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	spent float64
}

func (s *session) elapsed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spent
}

// Tracker runs one ticking session per task. Every session must be stopped,
// or the tracker closed, so no goroutine keeps mutating a task nobody shows.
type Tracker struct {
	reporter Reporter
	interval time.Duration
	ticker   TickerFunc
	onTick   func(id domain.TaskID, spent float64)
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[domain.TaskID]*session
}

type Option func(*Tracker)

func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

func WithTicker(fn TickerFunc) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.ticker = fn
		}
	}
}

// WithTickHook is called after each increment, from the session goroutine.
func WithTickHook(fn func(id domain.TaskID, spent float64)) Option {
	return func(t *Tracker) { t.onTick = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func New(reporter Reporter, opts ...Option) *Tracker {
	t := &Tracker{
		reporter: reporter,
		interval: time.Second,
		ticker:   systemTicker,
		logger:   zap.NewNop(),
		sessions: make(map[domain.TaskID]*session),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Toggle starts tracking a stopped task or stops a running one. It returns
// the new record values.
func (t *Tracker) Toggle(task domain.Task) (float64, bool) {
	if t.Running(task.ID) {
		spent, _ := t.Stop(task.ID)
		return spent, false
	}
	var initial float64
	if task.TimeTracking != nil {
		initial = task.TimeTracking.TimeSpent
	}
	t.Start(task.ID, initial)
	return initial, true
}

// Start begins a session from initial minutes. Starting a running task is a no-op.
func (t *Tracker) Start(id domain.TaskID, initial float64) bool {
	t.mu.Lock()
	if _, ok := t.sessions[id]; ok {
		t.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{cancel: cancel, done: make(chan struct{}), spent: initial}
	t.sessions[id] = s
	t.mu.Unlock()

	go t.run(ctx, id, s)

	t.report(id, initial, true)
	t.logger.Debug("tracking started", zap.String("task_id", string(id)), zap.Float64("minutes", initial))
	return true
}

// Stop ends a session, waits for its goroutine and reports the frozen value.
func (t *Tracker) Stop(id domain.TaskID) (float64, bool) {
	t.mu.Lock()
	s, ok := t.sessions[id]
	if ok {
		delete(t.sessions, id)
	}
	t.mu.Unlock()
	if !ok {
		return 0, false
	}

	s.cancel()
	<-s.done
	spent := s.elapsed()

	t.report(id, spent, false)
	t.logger.Debug("tracking stopped", zap.String("task_id", string(id)), zap.Float64("minutes", spent))
	return spent, true
}

// Elapsed returns the live value of a running session.
func (t *Tracker) Elapsed(id domain.TaskID) (float64, bool) {
	t.mu.Lock()
	s, ok := t.sessions[id]
	t.mu.Unlock()
	if !ok {
		return 0, false
	}
	return s.elapsed(), true
}

func (t *Tracker) Running(id domain.TaskID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[id]
	return ok
}

// Close stops every running session.
func (t *Tracker) Close() {
	t.mu.Lock()
	ids := make([]domain.TaskID, 0, len(t.sessions))
	for id := range t.sessions {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	for _, id := range ids {
		t.Stop(id)
	}
}

func (t *Tracker) run(ctx context.Context, id domain.TaskID, s *session) {
	defer close(s.done)
	ticks, stop := t.ticker(t.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			s.mu.Lock()
			s.spent += MinutePerTick
			spent := s.spent
			s.mu.Unlock()
			if t.onTick != nil {
				t.onTick(id, spent)
			}
		}
	}
}

func (t *Tracker) report(id domain.TaskID, spent float64, running bool) {
	if t.reporter == nil {
		return
	}
	if !t.reporter.ApplyTimeUpdate(id, spent, running) {
		t.logger.Debug("tracked task not on board", zap.String("task_id", string(id)))
	}
}

// FormatDuration renders minutes as "1h 05m" from an hour up and as "4m 30s" below.
func FormatDuration(minutes float64) string {
	if minutes < 0 {
		minutes = 0
	}
	total := int(math.Round(minutes * 60))
	hours := total / 3600
	mins := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, mins)
	}
	return fmt.Sprintf("%dm %ds", mins, total%60)
}
