// Package contract packs marketplace and NFT calls and reads their state over
// a gateway.Provider.
package contract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/errclass"
	"github.com/Agileeo/nft-client/internal/gateway"
)

// MsgNotConfigured is the message for an empty contract address.
const MsgNotConfigured = "Contract address is not configured"

// ParseAddress validates a configured contract address. Empty means the
// contract is not deployed on this network.
func ParseAddress(raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return common.Address{}, domain.NewError(domain.ErrUnconfiguredChain, MsgNotConfigured, nil)
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, domain.NewError(domain.ErrInvalidInput,
			fmt.Sprintf("invalid contract address %q", raw), nil)
	}
	return common.HexToAddress(raw), nil
}

// binding is a contract address plus its ABI, read through a provider.
type binding struct {
	address  common.Address
	abi      abi.ABI
	provider gateway.Provider
}

func (b *binding) Address() common.Address {
	return b.address
}

func (b *binding) pack(method string, args ...any) ([]byte, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidInput, "pack "+method, err)
	}
	return data, nil
}

// call runs a read-only method via eth_call at the latest block.
func (b *binding) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := b.pack(method, args...)
	if err != nil {
		return nil, err
	}

	params := []any{
		map[string]any{
			"to":   b.address.Hex(),
			"data": hexutil.Encode(data),
		},
		"latest",
	}
	result, err := b.provider.Send(ctx, "eth_call", params)
	if err != nil {
		return nil, errclass.Wrap(err, "eth_call "+method)
	}

	var encoded string
	if err := gateway.Decode(result, &encoded); err != nil {
		return nil, domain.NewError(domain.ErrContractCallFailed, "malformed eth_call result for "+method, err)
	}
	raw, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, domain.NewError(domain.ErrContractCallFailed, "malformed eth_call result for "+method, err)
	}

	out, err := b.abi.Unpack(method, raw)
	if err != nil {
		return nil, domain.NewError(domain.ErrContractCallFailed, "unpack "+method, err)
	}
	return out, nil
}

func unpackErr(method string, out []any) error {
	return domain.NewError(domain.ErrContractCallFailed,
		fmt.Sprintf("unexpected %s output %T", method, out), nil)
}
