package health

import (
	"context"
	"sync"
	"time"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/infra/rpc/provider"
)

// SessionSource exposes the current wallet session.
type SessionSource interface {
	Session() domain.WalletSession
}

// Pinger checks a backing service such as the snapshot cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor aggregates health status from the session, RPC endpoints and cache.
type Monitor struct {
	session       SessionSource
	requiredChain domain.ChainID
	endpoints     []provider.Provider
	cache         Pinger
	minInterval   time.Duration

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport *HealthReport
}

// NewMonitor creates a new health monitor. endpoints and cache may be empty.
func NewMonitor(session SessionSource, requiredChain domain.ChainID, endpoints []provider.Provider, cache Pinger) *Monitor {
	return &Monitor{
		session:       session,
		requiredChain: requiredChain,
		endpoints:     endpoints,
		cache:         cache,
		minInterval:   10 * time.Second,
	}
}

// CheckHealth builds a report. Endpoint and cache checks are rate limited to
// one per minInterval; the session is always read fresh.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport == nil || time.Since(m.lastCheck) >= m.minInterval {
		m.lastReport = m.checkInfra(ctx)
		m.lastCheck = time.Now()
	}

	report := *m.lastReport
	report.Endpoints = append([]EndpointHealth(nil), m.lastReport.Endpoints...)
	report.Session = m.session.Session()
	report.RequiredChain = m.requiredChain
	report.ChainMatches = report.Session.ChainID == m.requiredChain

	// A connected wallet on the wrong chain cannot sign for this client
	if report.Session.IsConnected() && !report.ChainMatches {
		report.SystemStatus = worse(report.SystemStatus, StatusDegraded)
	}
	return report
}

func (m *Monitor) checkInfra(ctx context.Context) *HealthReport {
	report := &HealthReport{
		SystemStatus: StatusHealthy,
		Endpoints:    make([]EndpointHealth, 0, len(m.endpoints)),
	}

	// 1. RPC endpoints
	available := 0
	for _, p := range m.endpoints {
		h := p.GetHealth()
		eh := EndpointHealth{
			Name:         p.GetName(),
			Status:       StatusHealthy,
			Throttled:    h.Throttled,
			LatencyMs:    h.Latency.Milliseconds(),
			RPCErrorRate: h.ErrorRate,
		}
		switch {
		case !h.Available:
			eh.Status = StatusCritical
		case h.Throttled || h.ErrorRate > 0.1:
			eh.Status = StatusDegraded
		}
		if h.Available {
			available++
		}
		if eh.Status != StatusHealthy {
			report.SystemStatus = worse(report.SystemStatus, StatusDegraded)
		}
		report.Endpoints = append(report.Endpoints, eh)
	}
	if len(m.endpoints) > 0 && available == 0 {
		report.SystemStatus = StatusCritical
	}

	// 2. Snapshot cache
	if m.cache != nil {
		report.Cache = StatusHealthy
		if err := m.cache.Ping(ctx); err != nil {
			report.Cache = StatusDegraded
			report.SystemStatus = worse(report.SystemStatus, StatusDegraded)
		}
	}
	return report
}
