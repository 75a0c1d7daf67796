package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/Agileeo/nft-client/internal/infra/rpc/provider"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    500 * time.Millisecond,
	MaxDelay:        10 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFailover
	ActionFatal
)

func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFailover:
		return "failover"
	default:
		return "fatal"
	}
}

// nonIdempotent methods are never re-sent: a retried send could submit twice
// or prompt the user twice.
var nonIdempotent = map[string]bool{
	"eth_sendTransaction":        true,
	"eth_sendRawTransaction":     true,
	"eth_requestAccounts":        true,
	"wallet_switchEthereumChain": true,
	"wallet_addEthereumChain":    true,
}

// Idempotent reports whether method may be retried or failed over.
func Idempotent(method string) bool {
	return !nonIdempotent[method]
}

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionFatal
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ActionFatal
	}

	s := err.Error()
	sLower := strings.ToLower(s)

	// Failover (Provider specific issues)
	if strings.Contains(s, "429") || strings.Contains(sLower, "too many requests") ||
		strings.Contains(s, "403") || strings.Contains(sLower, "forbidden") ||
		strings.Contains(sLower, "throttle") || strings.Contains(sLower, "quota") ||
		strings.Contains(sLower, "rate limit") ||
		strings.Contains(sLower, "count exceeded") {
		return ActionFailover
	}

	// A JSON-RPC error object is the node's answer: reverts, wallet codes and
	// malformed requests will not change on retry.
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		return ActionFatal
	}
	if strings.Contains(s, "-32700") || strings.Contains(s, "-32600") ||
		strings.Contains(s, "-32601") || strings.Contains(s, "-32602") {
		return ActionFatal
	}

	// Default to Retry (Network, 5xx, etc)
	return ActionRetry
}

// CallWithRetry executes an RPC call with exponential backoff.
func CallWithRetry(
	ctx context.Context,
	p provider.Provider,
	method string,
	params []any,
	config RetryConfig,
) (any, error) {
	if !Idempotent(method) || config.MaxAttempts < 1 {
		return p.Call(ctx, method, params)
	}

	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result, err := p.Call(ctx, method, params)
		if err == nil {
			return result, nil
		}

		lastErr = err

		action := ClassifyError(err)
		slog.Debug("RPC call failed",
			"provider", p.GetName(),
			"method", method,
			"attempt", attempt+1,
			"action", action.String(),
			"error", err,
		)
		if action == ActionFatal || action == ActionFailover {
			return nil, err
		}

		if attempt == config.MaxAttempts-1 {
			break
		}

		delay := calculateBackoff(attempt, config)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

// CallWithRetryAndFailover tries each endpoint in order with retry. Fatal
// errors stop immediately; they would be the same on every endpoint.
func CallWithRetryAndFailover(
	ctx context.Context,
	providers []provider.Provider,
	method string,
	params []any,
	config RetryConfig,
) (any, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers for %s", method)
	}
	if !Idempotent(method) {
		return providers[0].Call(ctx, method, params)
	}

	var lastErr error
	for _, p := range providers {
		result, err := CallWithRetry(ctx, p, method, params, config)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if ClassifyError(err) == ActionFatal {
			return nil, err
		}
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
