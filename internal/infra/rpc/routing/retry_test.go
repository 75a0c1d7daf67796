package routing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Agileeo/nft-client/internal/infra/rpc/provider"
)

type mockProvider struct {
	name     string
	calls    int
	CallFunc func(ctx context.Context, method string, params []any) (any, error)
}

func (m *mockProvider) Call(ctx context.Context, method string, params []any) (any, error) {
	m.calls++
	return m.CallFunc(ctx, method, params)
}

func (m *mockProvider) GetName() string                { return m.name }
func (m *mockProvider) GetHealth() provider.HealthStatus { return provider.HealthStatus{Available: true} }
func (m *mockProvider) Close() error                   { return nil }

var fastRetry = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    time.Millisecond,
	MaxDelay:        5 * time.Millisecond,
	BackoffMultiple: 2.0,
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err    error
		expect ErrorAction
	}{
		{errors.New("429 Too Many Requests"), ActionFailover},
		{errors.New("project rate limit exceeded"), ActionFailover},
		{errors.New("quota exceeded"), ActionFailover},
		{errors.New("daily request count exceeded"), ActionFailover},
		{errors.New("403 Forbidden"), ActionFailover},
		{errors.New("provider throttled, retry after: 30s"), ActionFailover},
		{errors.New("Invalid JSON-RPC request -32600"), ActionFatal},
		{errors.New("Method not found -32601"), ActionFatal},
		{errors.New("Parse error -32700"), ActionFatal},
		{&provider.RPCError{Code: 3, Message: "execution reverted"}, ActionFatal},
		{&provider.RPCError{Code: 4001, Message: "User rejected the request."}, ActionFatal},
		{context.Canceled, ActionFatal},
		{errors.New("connection reset by peer"), ActionRetry},
		{errors.New("timeout"), ActionRetry},
		{errors.New("500 Internal Server Error"), ActionRetry},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.expect {
			t.Errorf("ClassifyError(%q) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}

func TestCallWithRetry_RecoversFromTransientError(t *testing.T) {
	p := &mockProvider{name: "a"}
	p.CallFunc = func(ctx context.Context, method string, params []any) (any, error) {
		if p.calls < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return "0x1", nil
	}

	result, err := CallWithRetry(context.Background(), p, "eth_blockNumber", nil, fastRetry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "0x1" {
		t.Errorf("expected 0x1, got %v", result)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 calls, got %d", p.calls)
	}
}

func TestCallWithRetry_FatalStopsImmediately(t *testing.T) {
	p := &mockProvider{name: "a", CallFunc: func(ctx context.Context, method string, params []any) (any, error) {
		return nil, &provider.RPCError{Code: 3, Message: "execution reverted"}
	}}

	if _, err := CallWithRetry(context.Background(), p, "eth_call", nil, fastRetry); err == nil {
		t.Fatal("expected error")
	}
	if p.calls != 1 {
		t.Errorf("expected 1 call, got %d", p.calls)
	}
}

func TestCallWithRetry_NeverResendsTransactions(t *testing.T) {
	p := &mockProvider{name: "a", CallFunc: func(ctx context.Context, method string, params []any) (any, error) {
		return nil, errors.New("connection reset by peer")
	}}

	if _, err := CallWithRetry(context.Background(), p, "eth_sendTransaction", nil, fastRetry); err == nil {
		t.Fatal("expected error")
	}
	if p.calls != 1 {
		t.Errorf("expected eth_sendTransaction to be sent once, got %d", p.calls)
	}
}

func TestCallWithRetryAndFailover(t *testing.T) {
	limited := &mockProvider{name: "limited", CallFunc: func(ctx context.Context, method string, params []any) (any, error) {
		return nil, errors.New("429 Too Many Requests")
	}}
	healthy := &mockProvider{name: "healthy", CallFunc: func(ctx context.Context, method string, params []any) (any, error) {
		return "0xa869", nil
	}}

	result, err := CallWithRetryAndFailover(
		context.Background(),
		[]provider.Provider{limited, healthy},
		"eth_chainId", nil, fastRetry,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "0xa869" {
		t.Errorf("expected 0xa869, got %v", result)
	}
	if limited.calls != 1 || healthy.calls != 1 {
		t.Errorf("unexpected call counts: limited=%d healthy=%d", limited.calls, healthy.calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffMultiple: 2}

	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 3 * time.Second},
		{5, 3 * time.Second},
	}

	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt, cfg); got != tt.expect {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.expect)
		}
	}
}

func TestCallWithRetry_LogsAction(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	p := &mockProvider{name: "a", CallFunc: func(ctx context.Context, method string, params []any) (any, error) {
		return nil, errors.New("429 Too Many Requests")
	}}
	_, _ = CallWithRetry(context.Background(), p, "eth_chainId", nil, fastRetry)

	if !strings.Contains(buf.String(), "action=failover") {
		t.Errorf("expected failover action in log, got %q", buf.String())
	}
}
