package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Check probes one dependency. Optional checks are reported but do not affect Online.
type Check struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Probe    func(ctx context.Context) error
}

// Sizer reports the number of buffered writes.
type Sizer interface {
	Size() (int, error)
}

func PostgresCheck(pool *pgxpool.Pool, required bool) Check {
	return Check{
		Name:     "postgresql",
		Required: required,
		Timeout:  3 * time.Second,
		Probe: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	}
}

func RedisCheck(client *redislib.Client, required bool) Check {
	return Check{
		Name:     "redis",
		Required: required,
		Timeout:  2 * time.Second,
		Probe: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

type Monitor struct {
	checks   []Check
	buffer   Sizer
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(checks []Check, buf Sizer, interval time.Duration, logger *zap.Logger) *Monitor {
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
	m.wg.Add(1)
	go m.loop()
}

// Stop ends the probe loop and waits for it to exit. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := m.status
	status.Components = make(map[string]bool, len(m.status.Components))
	for k, v := range m.status.Components {
		status.Components[k] = v
	}
	return status
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Online:     true,
		Components: make(map[string]bool, len(m.checks)+1),
		LastCheck:  time.Now(),
	}
	for _, check := range m.checks {
		ok := m.probe(ctx, check)
		status.Components[check.Name] = ok
		if check.Required && !ok {
			status.Online = false
		}
	}
	if m.buffer != nil {
		size, err := m.buffer.Size()
		if err != nil {
			m.logger.Warn("buffer size check failed", zap.Error(err))
		}
		status.Components["buffer"] = err == nil
		status.BufferSize = size
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Online != status.Online {
		m.logger.Info("connectivity changed", zap.Bool("online", status.Online))
	}
	return status
}

func (m *Monitor) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context, check Check) bool {
	if check.Probe == nil {
		return false
	}
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := check.Probe(probeCtx); err != nil {
		m.logger.Debug("dependency check failed", zap.String("component", check.Name), zap.Error(err))
		return false
	}
	return true
}
