package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/infrastructure/buffer"
)

// Ping returns nil while the dependency is reachable.
type Ping func(ctx context.Context) error

// Check is a named ping. Critical checks decide IsOnline.
type Check struct {
	Name     string
	Critical bool
	Timeout  time.Duration
	Ping     Ping
}

// PostgresCheck pings the pool.
func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgresql", Critical: true, Timeout: 3 * time.Second, Ping: func(ctx context.Context) error {
		return pool.Ping(ctx)
	}}
}

// RedisCheck pings the client.
func RedisCheck(client *redislib.Client) Check {
	return Check{Name: "redis", Critical: true, Timeout: 2 * time.Second, Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

type Monitor struct {
	checks []Check
	buffer *buffer.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(buf *buffer.Store, interval time.Duration, logger *zap.Logger, checks ...Check) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline is true when every critical check passed on the last refresh.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.checks {
		if c.Critical && !m.status.Services[c.Name] {
			return false
		}
	}
	return true
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		services[k] = v
	}
	out := m.status
	out.Services = services
	return out
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and records the result.
func (m *Monitor) Refresh() {
	status := Status{
		Services:  make(map[string]bool, len(m.checks)+1),
		LastCheck: time.Now(),
	}
	for _, c := range m.checks {
		ok := m.run(c)
		if !ok && m.wasOnline(c.Name) {
			m.logger.Warn("dependency went offline", zap.String("service", c.Name))
		}
		status.Services[c.Name] = ok
	}
	status.Services["buffer"], status.BufferSize = m.checkBuffer()

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) run(c Check) bool {
	if c.Ping == nil {
		return false
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Ping(ctx) == nil
}

func (m *Monitor) wasOnline(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Services[name]
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
