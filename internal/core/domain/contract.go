package domain

import (
	"math/big"
)

// Unavailable marks a monitoring field whose read failed.
const Unavailable = "unavailable"

// Sale mirrors the marketplace sales(tokenId) record.
type Sale struct {
	Seller    string
	Price     *big.Int
	StartTime *big.Int
	Active    bool
}

// ContractInfo is a monitoring snapshot of the NFT contract.
type ContractInfo struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply string `json:"total_supply"`
	Owner       string `json:"owner"`
}

// Complete reports whether every field was read.
func (c ContractInfo) Complete() bool {
	return c.Name != Unavailable && c.Symbol != Unavailable &&
		c.TotalSupply != Unavailable && c.Owner != Unavailable
}

// MintMetadata is the token metadata document uploaded before minting.
type MintMetadata struct {
	Name        string      `json:"name"        validate:"required"`
	Description string      `json:"description" validate:"required"`
	Image       string      `json:"image"       validate:"required"`
	Attributes  []Attribute `json:"attributes"  validate:"dive"`
}

type Attribute struct {
	TraitType string `json:"trait_type" validate:"required"`
	Value     string `json:"value"`
}
