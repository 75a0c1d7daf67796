// Package gateway abstracts the source of blockchain connectivity.
//
// Session, reconciliation, transaction and monitoring code depend only on
// Provider. Two variants exist: WalletProvider wraps an injected EIP-1193
// wallet, RPCProvider talks to JSON-RPC endpoints directly.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

// ErrNoProvider is returned when neither a wallet nor an RPC URL is available.
var ErrNoProvider = errors.New("no provider detected")

// Provider events.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventDisconnect      = "disconnect"
)

// Handler receives an event payload. Payloads follow EIP-1193: a list of
// accounts, a hex chain id, or an error.
type Handler func(payload any)

// Provider is the capability shared by both connectivity variants.
type Provider interface {
	Name() string
	ChainID(ctx context.Context) (domain.ChainID, error)
	Send(ctx context.Context, method string, params []any) (any, error)
	// Subscribe registers h for event and returns a func that removes it.
	Subscribe(event string, h Handler) (unsubscribe func())
}

// Select returns the injected wallet when present, else an RPC provider over
// rpcURLs.
func Select(injected EIP1193, rpcURLs []string, opts ...RPCOption) (Provider, error) {
	if injected != nil {
		return NewWalletProvider(injected), nil
	}
	if len(rpcURLs) == 0 {
		return nil, domain.NewError(domain.ErrProviderUnavailable,
			"No Web3 Provider detected and RPC URL not configured", ErrNoProvider)
	}
	return NewRPCProviderFromURLs(rpcURLs, opts...), nil
}

// Decode re-marshals a generic JSON-RPC result into out.
func Decode(result any, out any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// ParseChainID accepts the forms wallets emit: hex strings, decimal strings
// and JSON numbers.
func ParseChainID(v any) (domain.ChainID, error) {
	switch id := v.(type) {
	case string:
		s := strings.TrimSpace(id)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, err := strconv.ParseUint(s[2:], 16, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid chain id %q: %w", id, err)
			}
			return n, nil
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid chain id %q: %w", id, err)
		}
		return n, nil
	case float64:
		if id < 0 || id != math.Trunc(id) {
			return 0, fmt.Errorf("invalid chain id %v", id)
		}
		return uint64(id), nil
	case json.Number:
		n, err := strconv.ParseUint(id.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid chain id %q: %w", id, err)
		}
		return n, nil
	case int:
		if id < 0 {
			return 0, fmt.Errorf("invalid chain id %d", id)
		}
		return uint64(id), nil
	case int64:
		if id < 0 {
			return 0, fmt.Errorf("invalid chain id %d", id)
		}
		return uint64(id), nil
	case uint64:
		return id, nil
	}
	return 0, fmt.Errorf("unexpected chain id type %T", v)
}

// ParseAccounts accepts []string or the []any a JSON decode produces.
func ParseAccounts(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected account type %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected accounts type %T", v)
}

// HexChainID formats a chain id the way wallet_* methods expect.
func HexChainID(id domain.ChainID) string {
	return hexutil.EncodeUint64(id)
}
