package txn

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Agileeo/nft-client/internal/contract"
	"github.com/Agileeo/nft-client/internal/core/domain"
)

// call is a packed transaction ready for eth_sendTransaction.
type call struct {
	to    common.Address
	data  []byte
	value *big.Int
}

// handler builds the call for one TxKind.
type handler func(ctx context.Context, req domain.TransactionRequest, from common.Address) (call, error)

func (l *Lifecycle) buildHandlers() map[domain.TxKind]handler {
	return map[domain.TxKind]handler{
		domain.TxKindList:   l.buildList,
		domain.TxKindUnlist: l.buildUnlist,
		domain.TxKindBuy:    l.buildBuy,
		domain.TxKindMint:   l.buildMint,
	}
}

func (l *Lifecycle) buildList(_ context.Context, req domain.TransactionRequest, _ common.Address) (call, error) {
	if err := requireTokenID(req); err != nil {
		return call{}, err
	}
	if req.Price == nil {
		return call{}, domain.NewError(domain.ErrInvalidInput, "price is required", nil)
	}
	market, err := contract.NewMarketplace(l.cfg.Marketplace, l.provider)
	if err != nil {
		return call{}, err
	}
	data, err := market.PackList(req.TokenID, req.Price, req.StartTime)
	if err != nil {
		return call{}, err
	}
	return call{to: market.Address(), data: data}, nil
}

func (l *Lifecycle) buildUnlist(_ context.Context, req domain.TransactionRequest, _ common.Address) (call, error) {
	if err := requireTokenID(req); err != nil {
		return call{}, err
	}
	market, err := contract.NewMarketplace(l.cfg.Marketplace, l.provider)
	if err != nil {
		return call{}, err
	}
	data, err := market.PackUnlist(req.TokenID)
	if err != nil {
		return call{}, err
	}
	return call{to: market.Address(), data: data}, nil
}

// buildBuy pays the listed price. A token without an active listing fails here
// so no transaction reaches the wallet.
func (l *Lifecycle) buildBuy(ctx context.Context, req domain.TransactionRequest, _ common.Address) (call, error) {
	if err := requireTokenID(req); err != nil {
		return call{}, err
	}
	market, err := contract.NewMarketplace(l.cfg.Marketplace, l.provider)
	if err != nil {
		return call{}, err
	}

	sale, err := market.Sale(ctx, req.TokenID)
	if err != nil {
		return call{}, err
	}
	if contract.ZeroSeller(sale) || !sale.Active {
		return call{}, domain.NewError(domain.ErrContractCallFailed,
			"token "+req.TokenID.String()+" is not for sale", nil)
	}

	data, err := market.PackBuy(req.TokenID)
	if err != nil {
		return call{}, err
	}
	return call{to: market.Address(), data: data, value: sale.Price}, nil
}

func (l *Lifecycle) buildMint(_ context.Context, req domain.TransactionRequest, from common.Address) (call, error) {
	if strings.TrimSpace(req.TokenURI) == "" {
		return call{}, domain.NewError(domain.ErrInvalidInput, "token URI is required", nil)
	}
	nft, err := contract.NewNFT(l.cfg.NFT, l.provider)
	if err != nil {
		return call{}, err
	}
	data, err := nft.PackMint(from, req.TokenID, req.TokenURI)
	if err != nil {
		return call{}, err
	}
	return call{to: nft.Address(), data: data}, nil
}

func requireTokenID(req domain.TransactionRequest) error {
	if req.TokenID == nil {
		return domain.NewError(domain.ErrInvalidInput, "token id is required", nil)
	}
	return nil
}
