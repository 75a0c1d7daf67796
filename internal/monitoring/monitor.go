// Package monitoring reads a best-effort snapshot of the NFT contract.
package monitoring

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Agileeo/nft-client/internal/contract"
	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/gateway"
	"github.com/Agileeo/nft-client/internal/metrics"
)

// Cache stores complete snapshots between reads.
type Cache interface {
	GetSnapshot(ctx context.Context, address string) (domain.ContractInfo, bool, error)
	PutSnapshot(ctx context.Context, info domain.ContractInfo) error
}

// Monitor fetches ContractInfo. Each field is read on its own; a failed read
// degrades to domain.Unavailable instead of failing the snapshot.
type Monitor struct {
	provider gateway.Provider
	address  string
	cache    Cache
	log      *slog.Logger
}

// NewMonitor accepts a nil provider and a nil cache. Fetch reports the former.
func NewMonitor(provider gateway.Provider, address string, cache Cache) *Monitor {
	return &Monitor{
		provider: provider,
		address:  address,
		cache:    cache,
		log:      slog.Default().With("component", "monitor"),
	}
}

func (m *Monitor) Fetch(ctx context.Context) (domain.ContractInfo, error) {
	if m.provider == nil {
		return domain.ContractInfo{}, domain.NewError(domain.ErrProviderUnavailable,
			"No Web3 Provider detected and RPC URL not configured", gateway.ErrNoProvider)
	}
	nft, err := contract.NewNFT(m.address, m.provider)
	if err != nil {
		return domain.ContractInfo{}, err
	}
	address := nft.Address().Hex()

	if m.cache != nil {
		info, found, err := m.cache.GetSnapshot(ctx, address)
		if err != nil {
			m.log.Warn("Snapshot cache read failed", "error", err)
		} else if found {
			m.log.Debug("Serving cached snapshot", "address", address)
			return info, nil
		}
	}

	info := domain.ContractInfo{
		Address:     address,
		Name:        domain.Unavailable,
		Symbol:      domain.Unavailable,
		TotalSupply: domain.Unavailable,
		Owner:       domain.Unavailable,
	}

	// Each goroutine owns one field of info.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if v, err := nft.Name(gctx); m.ok("name", err) {
			info.Name = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := nft.Symbol(gctx); m.ok("symbol", err) {
			info.Symbol = v
		}
		return nil
	})
	g.Go(func() error {
		if v, err := nft.TotalSupply(gctx); m.ok("total_supply", err) {
			info.TotalSupply = v.String()
		}
		return nil
	})
	g.Go(func() error {
		if v, err := nft.Owner(gctx); m.ok("owner", err) {
			info.Owner = v.Hex()
		}
		return nil
	})
	_ = g.Wait()

	if info.Complete() && m.cache != nil {
		if err := m.cache.PutSnapshot(ctx, info); err != nil {
			m.log.Warn("Snapshot cache write failed", "error", err)
		}
	}
	return info, nil
}

func (m *Monitor) ok(field string, err error) bool {
	if err == nil {
		return true
	}
	metrics.MonitorFieldFailures.WithLabelValues(field).Inc()
	m.log.Warn("Contract read failed", "field", field, "error", err)
	return false
}
