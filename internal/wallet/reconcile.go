package wallet

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/errclass"
	"github.com/Agileeo/nft-client/internal/gateway"
	"github.com/Agileeo/nft-client/internal/metrics"
	"github.com/Agileeo/nft-client/internal/network"
)

// Reconciler makes the provider's active chain match a required chain.
//
// Concurrent callers for the same chain share one attempt. Attempts for
// different chains run one after another, never interleaved on the provider.
type Reconciler struct {
	provider gateway.Provider
	registry *network.Registry
	log      *slog.Logger

	group  singleflight.Group
	serial sync.Mutex
}

func NewReconciler(provider gateway.Provider, registry *network.Registry) *Reconciler {
	return &Reconciler{
		provider: provider,
		registry: registry,
		log:      slog.Default().With("component", "reconciler"),
	}
}

// EnsureChain returns nil once the provider is on required. A caller whose ctx
// ends stops waiting; the shared attempt runs to completion for the others.
func (r *Reconciler) EnsureChain(ctx context.Context, required domain.ChainID) error {
	if r.provider == nil {
		return domain.NewError(domain.ErrProviderUnavailable, "no provider to reconcile", gateway.ErrNoProvider)
	}

	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(strconv.FormatUint(required, 10), func() (any, error) {
		r.serial.Lock()
		defer r.serial.Unlock()
		return nil, r.reconcile(detached, required)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (r *Reconciler) reconcile(ctx context.Context, required domain.ChainID) error {
	current, err := r.provider.ChainID(ctx)
	if err != nil {
		metrics.ReconcileTotal.WithLabelValues("failed").Inc()
		return errclass.Wrap(err, "read current chain")
	}
	if current == required {
		metrics.ReconcileTotal.WithLabelValues("already").Inc()
		return nil
	}

	descriptor, ok := r.registry.Get(required)
	if !ok {
		metrics.ReconcileTotal.WithLabelValues("unconfigured").Inc()
		return domain.NewError(domain.ErrUnconfiguredChain,
			"chain "+strconv.FormatUint(required, 10)+" is not configured", nil)
	}

	hexID := gateway.HexChainID(required)
	r.log.Info("Switching chain", "from", current, "to", required)

	_, err = r.provider.Send(ctx, "wallet_switchEthereumChain", []any{map[string]any{"chainId": hexID}})
	if err == nil {
		metrics.ReconcileTotal.WithLabelValues("switched").Inc()
		return nil
	}

	if code, ok := errclass.Code(err); !ok || code != errclass.CodeUnrecognizedChain {
		metrics.ReconcileTotal.WithLabelValues("failed").Inc()
		return domain.NewError(domain.ErrNetworkMismatch, "switch to chain "+hexID+" failed", err)
	}

	// The wallet does not know the chain; adding it also activates it.
	r.log.Info("Chain unknown to wallet, adding it", "chain_id", required, "name", descriptor.Name)
	if _, err := r.provider.Send(ctx, "wallet_addEthereumChain", []any{descriptor.AddChainParams(hexID)}); err != nil {
		metrics.ReconcileTotal.WithLabelValues("failed").Inc()
		return domain.NewError(domain.ErrNetworkMismatch, "add chain "+hexID+" failed", err)
	}

	metrics.ReconcileTotal.WithLabelValues("added").Inc()
	return nil
}
