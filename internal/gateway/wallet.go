package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/metrics"
)

// ListenerID identifies a registration on an injected provider.
type ListenerID uint64

// EIP1193 is the contract of a wallet-injected provider.
type EIP1193 interface {
	Request(ctx context.Context, method string, params []any) (any, error)
	On(event string, h Handler) ListenerID
	RemoveListener(event string, id ListenerID)
}

// WalletProvider adapts an injected wallet to Provider.
type WalletProvider struct {
	injected EIP1193
	log      *slog.Logger
}

func NewWalletProvider(injected EIP1193) *WalletProvider {
	return &WalletProvider{
		injected: injected,
		log:      slog.Default().With("component", "wallet_provider"),
	}
}

func (w *WalletProvider) Name() string {
	return "wallet"
}

func (w *WalletProvider) ChainID(ctx context.Context) (domain.ChainID, error) {
	result, err := w.Send(ctx, "eth_chainId", nil)
	if err != nil {
		return 0, err
	}
	return ParseChainID(result)
}

func (w *WalletProvider) Send(ctx context.Context, method string, params []any) (any, error) {
	start := time.Now()
	metrics.RPCCallsTotal.WithLabelValues(w.Name(), method).Inc()

	result, err := w.injected.Request(ctx, method, params)

	metrics.RPCLatency.WithLabelValues(w.Name(), method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues(w.Name(), method).Inc()
		w.log.Debug("wallet request failed", "method", method, "error", err)
		return nil, err
	}
	return result, nil
}

func (w *WalletProvider) Subscribe(event string, h Handler) func() {
	id := w.injected.On(event, h)
	var once sync.Once
	return func() {
		once.Do(func() { w.injected.RemoveListener(event, id) })
	}
}
