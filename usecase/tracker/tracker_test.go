package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

type update struct {
	id      domain.TaskID
	spent   float64
	running bool
}

type fakeReporter struct {
	mu      sync.Mutex
	updates []update
}

func (f *fakeReporter) ApplyTimeUpdate(id domain.TaskID, spent float64, running bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update{id, spent, running})
	return true
}

func (f *fakeReporter) last() update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[len(f.updates)-1]
}

// manualTicker hands out one channel per session so tests decide when ticks happen.
type manualTicker struct {
	mu      sync.Mutex
	chans   []chan time.Time
	stopped int
}

func (m *manualTicker) new(time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time)
	m.mu.Lock()
	m.chans = append(m.chans, ch)
	m.mu.Unlock()
	return ch, func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

func (m *manualTicker) tick(t *testing.T, session, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.chans) > session
	}, time.Second, time.Millisecond)
	m.mu.Lock()
	ch := m.chans[session]
	m.mu.Unlock()
	for i := 0; i < n; i++ {
		ch <- time.Now()
	}
}

func TestToggle_AccumulatesOneSixtiethPerTick(t *testing.T) {
	rep := &fakeReporter{}
	ticks := &manualTicker{}
	tr := New(rep, WithTicker(ticks.new))
	task := domain.Task{ID: "t1", TimeTracking: &domain.TimeTracking{TimeSpent: 10}}

	spent, running := tr.Toggle(task)
	require.True(t, running)
	assert.Equal(t, 10.0, spent)
	assert.Equal(t, update{"t1", 10, true}, rep.last())

	ticks.tick(t, 0, 90)

	spent, running = tr.Toggle(task)
	assert.False(t, running)
	assert.InDelta(t, 11.5, spent, 1e-9)
	last := rep.last()
	assert.False(t, last.running)
	assert.InDelta(t, 11.5, last.spent, 1e-9)
	assert.False(t, tr.Running("t1"))
	assert.Equal(t, 1, ticks.stopped)
}

func TestElapsedIsNonDecreasingWhileRunning(t *testing.T) {
	ticks := &manualTicker{}
	tr := New(nil, WithTicker(ticks.new))
	tr.Start("t1", 0)
	defer tr.Close()

	prev := 0.0
	for i := 0; i < 5; i++ {
		ticks.tick(t, 0, 1)
		now, ok := tr.Elapsed("t1")
		require.True(t, ok)
		assert.GreaterOrEqual(t, now, prev)
		prev = now
	}
}

func TestStart_TwiceIsNoop(t *testing.T) {
	ticks := &manualTicker{}
	tr := New(nil, WithTicker(ticks.new))
	defer tr.Close()

	assert.True(t, tr.Start("t1", 0))
	assert.False(t, tr.Start("t1", 50))
	elapsed, _ := tr.Elapsed("t1")
	assert.Equal(t, 0.0, elapsed)
}

func TestStop_UnknownTask(t *testing.T) {
	tr := New(nil)
	_, ok := tr.Stop("missing")
	assert.False(t, ok)
}

func TestClose_StopsEverySession(t *testing.T) {
	rep := &fakeReporter{}
	ticks := &manualTicker{}
	tr := New(rep, WithTicker(ticks.new))
	tr.Start("a", 1)
	tr.Start("b", 2)

	tr.Close()

	assert.False(t, tr.Running("a"))
	assert.False(t, tr.Running("b"))
	assert.Equal(t, 2, ticks.stopped)
	rep.mu.Lock()
	defer rep.mu.Unlock()
	stops := 0
	for _, u := range rep.updates {
		if !u.running {
			stops++
		}
	}
	assert.Equal(t, 2, stops)
}

func TestRealTickerAdvances(t *testing.T) {
	tr := New(nil, WithInterval(5*time.Millisecond))
	tr.Start("t1", 0)

	require.Eventually(t, func() bool {
		v, _ := tr.Elapsed("t1")
		return v > 0
	}, time.Second, 5*time.Millisecond)

	spent, ok := tr.Stop("t1")
	require.True(t, ok)
	assert.Greater(t, spent, 0.0)
}

func TestFormatDuration(t *testing.T) {
	cases := map[float64]string{
		0:     "0m 0s",
		4.5:   "4m 30s",
		0.25:  "0m 15s",
		59.99: "59m 59s",
		60:    "1h 00m",
		65:    "1h 05m",
		150.7: "2h 30m",
		-3:    "0m 0s",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDuration(in), "minutes=%v", in)
	}
}

func TestFormatDuration_AccumulatedTicks(t *testing.T) {
	accumulate := func(start float64, ticks int) float64 {
		spent := start
		for i := 0; i < ticks; i++ {
			spent += MinutePerTick
		}
		return spent
	}

	assert.Equal(t, "1m 0s", FormatDuration(accumulate(0, 60)))
	assert.Equal(t, "1h 00m", FormatDuration(accumulate(59, 60)))
	assert.Equal(t, "1m 30s", FormatDuration(accumulate(0, 90)))
	assert.Equal(t, "1m 0s", FormatDuration(0.99999999999))
}
