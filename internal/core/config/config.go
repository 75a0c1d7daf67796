package config

import (
	"time"

	"github.com/Agileeo/nft-client/internal/core/domain"
	redisclient "github.com/Agileeo/nft-client/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Network    NetworkConfig      `yaml:"network"`
	Contracts  ContractsConfig    `yaml:"contracts"`
	Wallet     WalletConfig       `yaml:"wallet"`
	Tx         TxConfig           `yaml:"tx"`
	Monitoring MonitoringConfig   `yaml:"monitoring"`
	Redis      redisclient.Config `yaml:"redis"`
	Logging    LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

// NetworkConfig selects the chain every transaction is reconciled to.
type NetworkConfig struct {
	ChainID domain.ChainID `yaml:"chain_id" validate:"required"`
	// RPCURL is the read-only fallback when no wallet is injected.
	RPCURL       string        `yaml:"rpc_url"       validate:"omitempty,url"`
	RPCFallbacks []string      `yaml:"rpc_fallbacks" validate:"dive,url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ContractsConfig holds deployed contract addresses. An empty address
// disables the operations that need it.
type ContractsConfig struct {
	Marketplace string `yaml:"marketplace" validate:"omitempty,eth_addr"`
	NFT         string `yaml:"nft"         validate:"omitempty,eth_addr"`
}

type WalletConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"` // event polling on the RPC fallback
}

type TxConfig struct {
	Confirmations uint64        `yaml:"confirmations"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Timeout       time.Duration `yaml:"timeout"`
}

type MonitoringConfig struct {
	Interval time.Duration `yaml:"interval"` // refresh period for monitor --watch
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"  validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// RPCEndpoints returns the primary RPC URL followed by its fallbacks.
func (n NetworkConfig) RPCEndpoints() []string {
	var urls []string
	if n.RPCURL != "" {
		urls = append(urls, n.RPCURL)
	}
	return append(urls, n.RPCFallbacks...)
}
