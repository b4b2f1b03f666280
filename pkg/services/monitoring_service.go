package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ascot-inc/intake-hub/pkg/metrics"
	"github.com/ascot-inc/intake-hub/pkg/providers"
)

// Monitor periodically health-checks every enabled provider and keeps the
// latest result per provider. Rounds fan out concurrently; within a round the
// last writer wins per provider, which is fine because entries are keyed by
// provider name and one round probes each provider once.
type Monitor struct {
	registry *providers.Registry
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu     sync.RWMutex
	status map[string]providers.HealthStatus
}

// NewMonitor creates a health monitor.
func NewMonitor(registry *providers.Registry, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Monitor {
	return &Monitor{
		registry: registry,
		interval: interval,
		metrics:  m,
		logger:   logger,
		status:   make(map[string]providers.HealthStatus),
	}
}

// Start runs an immediate round, then one round per interval until the
// context is cancelled. Blocks; run it in its own goroutine.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("Starting provider health monitor", zap.Duration("interval", m.interval))

	m.CheckNow(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Stopping provider health monitor")
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs a single health round immediately.
func (m *Monitor) CheckNow(ctx context.Context) {
	adapters, err := m.registry.GetPrioritized(ctx)
	if err != nil {
		m.logger.Error("Health round failed to load providers", zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	for _, adapter := range adapters {
		wg.Add(1)
		go func(adapter providers.Adapter) {
			defer wg.Done()
			m.checkOne(ctx, adapter)
		}(adapter)
	}
	wg.Wait()
}

func (m *Monitor) checkOne(ctx context.Context, adapter providers.Adapter) {
	// A hung upstream must not stall the round past its schedule.
	checkCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	name := adapter.Name()
	status := adapter.HealthCheck(checkCtx)

	m.mu.Lock()
	m.status[name] = status
	m.mu.Unlock()

	up := 0.0
	if status.Healthy {
		up = 1.0
	}
	m.metrics.ProviderUp.WithLabelValues(name).Set(up)
	m.metrics.HealthCheckDuration.WithLabelValues(name).Observe(float64(status.ResponseTimeMs) / 1000)

	if status.Healthy {
		m.logger.Info("Provider healthy",
			zap.String("provider", name),
			zap.Int64("response_time_ms", status.ResponseTimeMs),
		)
	} else {
		m.logger.Warn("Provider unhealthy",
			zap.String("provider", name),
			zap.Int64("response_time_ms", status.ResponseTimeMs),
			zap.String("message", status.Message),
		)
	}
}

// GetAll returns a snapshot of the latest health status per provider.
func (m *Monitor) GetAll() map[string]providers.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]providers.HealthStatus, len(m.status))
	for k, v := range m.status {
		out[k] = v
	}
	return out
}

// GetOne returns the latest status for a provider. A provider that has never
// been checked reports unhealthy.
func (m *Monitor) GetOne(name string) providers.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.status[name]; ok {
		return s
	}
	return providers.HealthStatus{Healthy: false, Message: "not yet checked"}
}
