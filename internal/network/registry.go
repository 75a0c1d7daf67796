// Package network holds the static table of chains the client supports.
package network

import (
	"slices"
	"sort"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

var (
	AvalancheMainnet = domain.NetworkDescriptor{
		ChainID:        domain.ChainIDAvalanche,
		Name:           "Avalanche Mainnet C-Chain",
		DisplayName:    "Avalanche Mainnet",
		Symbol:         "AVAX",
		NativeDecimals: 18,
		RPCEndpoints:   []string{"https://api.avax.network/ext/bc/C/rpc"},
		ExplorerURL:    "https://snowtrace.io/",
	}

	AvalancheFuji = domain.NetworkDescriptor{
		ChainID:        domain.ChainIDAvalancheFuji,
		Name:           "Avalanche Fuji Testnet",
		DisplayName:    "Avalanche Testnet",
		Symbol:         "AVAX",
		NativeDecimals: 18,
		RPCEndpoints:   []string{"https://api.avax-test.network/ext/bc/C/rpc"},
		ExplorerURL:    "https://testnet.snowtrace.io/",
	}
)

// Registry is a read-only lookup of network descriptors by chain id. It keeps
// its own copies, and every descriptor it returns is a fresh copy.
type Registry struct {
	networks map[domain.ChainID]domain.NetworkDescriptor
	fallback domain.ChainID
}

// NewRegistry builds a registry. The first descriptor is the fallback for
// unknown chain ids. Later descriptors with a duplicate chain id are ignored.
func NewRegistry(descriptors ...domain.NetworkDescriptor) *Registry {
	r := &Registry{networks: make(map[domain.ChainID]domain.NetworkDescriptor, len(descriptors))}
	for i, d := range descriptors {
		if _, exists := r.networks[d.ChainID]; exists {
			continue
		}
		if i == 0 {
			r.fallback = d.ChainID
		}
		r.networks[d.ChainID] = clone(d)
	}
	return r
}

// Default returns the Avalanche registry with mainnet as fallback. When
// rpcURL is set it becomes the preferred endpoint of the required chain.
func Default(required domain.ChainID, rpcURL string) *Registry {
	descriptors := []domain.NetworkDescriptor{AvalancheMainnet, AvalancheFuji}
	for i, d := range descriptors {
		if d.ChainID == required {
			descriptors[i] = WithRPC(d, rpcURL)
		}
	}
	return NewRegistry(descriptors...)
}

// Get returns the descriptor for chainID and whether it is registered.
func (r *Registry) Get(chainID domain.ChainID) (domain.NetworkDescriptor, bool) {
	d, ok := r.networks[chainID]
	return clone(d), ok
}

// Lookup is total: unknown chain ids resolve to the fallback descriptor.
func (r *Registry) Lookup(chainID domain.ChainID) domain.NetworkDescriptor {
	if d, ok := r.networks[chainID]; ok {
		return clone(d)
	}
	return clone(r.networks[r.fallback])
}

// All returns the descriptors ordered by chain id.
func (r *Registry) All() []domain.NetworkDescriptor {
	out := make([]domain.NetworkDescriptor, 0, len(r.networks))
	for _, d := range r.networks {
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// WithRPC returns a copy of d whose preferred endpoint is url.
func WithRPC(d domain.NetworkDescriptor, url string) domain.NetworkDescriptor {
	if url == "" {
		return d
	}
	endpoints := []string{url}
	for _, e := range d.RPCEndpoints {
		if e != url {
			endpoints = append(endpoints, e)
		}
	}
	d.RPCEndpoints = endpoints
	return d
}

func clone(d domain.NetworkDescriptor) domain.NetworkDescriptor {
	d.RPCEndpoints = slices.Clone(d.RPCEndpoints)
	return d
}
