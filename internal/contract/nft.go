package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Agileeo/nft-client/internal/gateway"
)

// NFT binds the token contract.
type NFT struct {
	binding
}

// NewNFT fails with UnconfiguredChain when address is empty.
func NewNFT(address string, provider gateway.Provider) (*NFT, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &NFT{binding{address: addr, abi: NFTABI, provider: provider}}, nil
}

// PackMint lets the contract assign the id when tokenID is nil.
func (n *NFT) PackMint(to common.Address, tokenID *big.Int, tokenURI string) ([]byte, error) {
	if tokenID == nil {
		return n.pack("mint", to, tokenURI)
	}
	return n.pack("mintWithTokenId", to, tokenID, tokenURI)
}

func (n *NFT) Name(ctx context.Context) (string, error) {
	return n.readString(ctx, "name")
}

func (n *NFT) Symbol(ctx context.Context) (string, error) {
	return n.readString(ctx, "symbol")
}

func (n *NFT) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := n.call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, unpackErr("totalSupply", out)
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, unpackErr("totalSupply", out)
	}
	return v, nil
}

func (n *NFT) Owner(ctx context.Context) (common.Address, error) {
	out, err := n.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, unpackErr("owner", out)
	}
	v, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, unpackErr("owner", out)
	}
	return v, nil
}

func (n *NFT) readString(ctx context.Context, method string) (string, error) {
	out, err := n.call(ctx, method)
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", unpackErr(method, out)
	}
	v, ok := out[0].(string)
	if !ok {
		return "", unpackErr(method, out)
	}
	return v, nil
}
