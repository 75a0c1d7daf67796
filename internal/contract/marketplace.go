package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/gateway"
)

// Marketplace binds the sale contract.
type Marketplace struct {
	binding
}

// NewMarketplace fails with UnconfiguredChain when address is empty.
func NewMarketplace(address string, provider gateway.Provider) (*Marketplace, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &Marketplace{binding{address: addr, abi: MarketplaceABI, provider: provider}}, nil
}

func (m *Marketplace) PackList(tokenID, price *big.Int, startTime int64) ([]byte, error) {
	return m.pack("listNFTSale", tokenID, price, big.NewInt(startTime))
}

func (m *Marketplace) PackUnlist(tokenID *big.Int) ([]byte, error) {
	return m.pack("unlistNFTSale", tokenID)
}

func (m *Marketplace) PackBuy(tokenID *big.Int) ([]byte, error) {
	return m.pack("buyNFT", tokenID)
}

// Sale reads the sales(tokenId) record. A token that was never listed comes
// back with a zero seller.
func (m *Marketplace) Sale(ctx context.Context, tokenID *big.Int) (domain.Sale, error) {
	out, err := m.call(ctx, "sales", tokenID)
	if err != nil {
		return domain.Sale{}, err
	}
	if len(out) != 4 {
		return domain.Sale{}, unpackErr("sales", out)
	}

	seller, ok1 := out[0].(common.Address)
	price, ok2 := out[1].(*big.Int)
	start, ok3 := out[2].(*big.Int)
	active, ok4 := out[3].(bool)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return domain.Sale{}, unpackErr("sales", out)
	}

	return domain.Sale{
		Seller:    seller.Hex(),
		Price:     price,
		StartTime: start,
		Active:    active,
	}, nil
}

// ZeroSeller reports whether s has no seller.
func ZeroSeller(s domain.Sale) bool {
	return common.HexToAddress(s.Seller) == (common.Address{})
}
