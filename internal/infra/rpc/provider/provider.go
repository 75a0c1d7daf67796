// Package provider implements the JSON-RPC transport to EVM nodes.
//
// This package contains:
//   - Provider interface: a named JSON-RPC endpoint with health tracking
//   - HTTPProvider: JSON-RPC 2.0 over HTTP
//   - RPCError: a JSON-RPC error object carrying its numeric code
//   - throttle: 429/403 back-off bookkeeping
package provider

import (
	"context"
	"fmt"
	"time"
)

// Provider defines a JSON-RPC endpoint.
type Provider interface {
	// GetName returns provider identifier (e.g., "fuji-public")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// Call makes a single RPC request
	Call(ctx context.Context, method string, params []any) (any, error)

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Throttled     bool          `json:"throttled"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
}

// RPCError is a JSON-RPC error object. It satisfies go-ethereum's rpc.Error
// and rpc.DataError so callers can inspect the code without string matching.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RPCError) ErrorCode() int {
	return e.Code
}

func (e *RPCError) ErrorData() any {
	return e.Data
}
