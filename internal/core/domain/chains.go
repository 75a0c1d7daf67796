package domain

// ChainID is an EIP-155 chain identifier. Zero means "not known".
type ChainID = uint64

const (
	// Chain IDs
	ChainIDAvalanche     ChainID = 43114
	ChainIDAvalancheFuji ChainID = 43113
)

// NetworkDescriptor describes a chain the client can reconcile a wallet to.
type NetworkDescriptor struct {
	ChainID        ChainID  `json:"chain_id"`
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	Symbol         string   `json:"symbol"`
	NativeDecimals int      `json:"native_decimals"`
	RPCEndpoints   []string `json:"rpc_endpoints"`
	ExplorerURL    string   `json:"explorer_url"`
}

// AddChainParams returns the wallet_addEthereumChain payload for the network.
func (n NetworkDescriptor) AddChainParams(hexChainID string) map[string]any {
	explorers := []string{}
	if n.ExplorerURL != "" {
		explorers = append(explorers, n.ExplorerURL)
	}
	return map[string]any{
		"chainId":   hexChainID,
		"chainName": n.Name,
		"nativeCurrency": map[string]any{
			"name":     n.Symbol,
			"symbol":   n.Symbol,
			"decimals": n.NativeDecimals,
		},
		"rpcUrls":           append([]string(nil), n.RPCEndpoints...),
		"blockExplorerUrls": explorers,
	}
}
