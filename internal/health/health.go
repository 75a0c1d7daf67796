// Package health provides client health reporting over HTTP.
package health

import (
	"github.com/Agileeo/nft-client/internal/core/domain"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// EndpointHealth contains health metrics for one RPC endpoint.
type EndpointHealth struct {
	Name         string       `json:"name"`
	Status       SystemStatus `json:"status"`
	Throttled    bool         `json:"throttled"`
	LatencyMs    int64        `json:"latency_ms"`
	RPCErrorRate float64      `json:"rpc_error_rate"`
}

// HealthReport contains the full client health report.
type HealthReport struct {
	SystemStatus  SystemStatus         `json:"system_status"`
	Session       domain.WalletSession `json:"session"`
	RequiredChain domain.ChainID       `json:"required_chain"`
	ChainMatches  bool                 `json:"chain_matches"`
	Endpoints     []EndpointHealth     `json:"endpoints"`
	Cache         SystemStatus         `json:"cache,omitempty"`
}

// worse returns the more severe of a and b.
func worse(a, b SystemStatus) SystemStatus {
	rank := map[SystemStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
