package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const marketplaceABIJSON = `
[
  {
    "name": "listNFTSale",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      { "name": "tokenId", "type": "uint256" },
      { "name": "price", "type": "uint256" },
      { "name": "startTime", "type": "uint256" }
    ],
    "outputs": []
  },
  {
    "name": "unlistNFTSale",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      { "name": "tokenId", "type": "uint256" }
    ],
    "outputs": []
  },
  {
    "name": "buyNFT",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [
      { "name": "tokenId", "type": "uint256" }
    ],
    "outputs": []
  },
  {
    "name": "sales",
    "type": "function",
    "stateMutability": "view",
    "inputs": [
      { "name": "", "type": "uint256" }
    ],
    "outputs": [
      { "name": "seller", "type": "address" },
      { "name": "price", "type": "uint256" },
      { "name": "startTime", "type": "uint256" },
      { "name": "active", "type": "bool" }
    ]
  }
]
`

const nftABIJSON = `
[
  {
    "name": "mint",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      { "name": "to", "type": "address" },
      { "name": "tokenURI", "type": "string" }
    ],
    "outputs": [
      { "name": "", "type": "uint256" }
    ]
  },
  {
    "name": "mintWithTokenId",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      { "name": "to", "type": "address" },
      { "name": "tokenId", "type": "uint256" },
      { "name": "tokenURI", "type": "string" }
    ],
    "outputs": []
  },
  {
    "name": "name",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [ { "name": "", "type": "string" } ]
  },
  {
    "name": "symbol",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [ { "name": "", "type": "string" } ]
  },
  {
    "name": "totalSupply",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [ { "name": "", "type": "uint256" } ]
  },
  {
    "name": "owner",
    "type": "function",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [ { "name": "", "type": "address" } ]
  }
]
`

var (
	// MarketplaceABI is the sale contract surface.
	MarketplaceABI = mustParse(marketplaceABIJSON)
	// NFTABI is the token contract surface.
	NFTABI = mustParse(nftABIJSON)
)

func mustParse(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("contract: invalid ABI: " + err.Error())
	}
	return parsed
}
