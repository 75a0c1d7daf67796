package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_RPC_URL", "https://api.avax-test.network/ext/bc/C/rpc")
	t.Setenv("TEST_NFT", "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")

	path := writeConfig(t, `
network:
  chain_id: 43113
  rpc_url: ${TEST_RPC_URL}
contracts:
  nft: ${TEST_NFT}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Network.RPCURL != "https://api.avax-test.network/ext/bc/C/rpc" {
		t.Errorf("Expected RPC URL from env, got %s", cfg.Network.RPCURL)
	}
	if cfg.Contracts.NFT != "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512" {
		t.Errorf("Expected NFT address from env, got %s", cfg.Contracts.NFT)
	}
	if cfg.Contracts.Marketplace != "" {
		t.Errorf("Expected empty marketplace, got %s", cfg.Contracts.Marketplace)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
tx:
  confirmations: 3
  poll_interval: 500ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Network.ChainID != 43113 {
		t.Errorf("Expected default chain 43113, got %d", cfg.Network.ChainID)
	}
	if cfg.Tx.Confirmations != 3 {
		t.Errorf("Expected 3 confirmations, got %d", cfg.Tx.Confirmations)
	}
	if cfg.Tx.PollInterval != 500*time.Millisecond {
		t.Errorf("Expected 500ms poll interval, got %s", cfg.Tx.PollInterval)
	}
	if cfg.Tx.Timeout != 5*time.Minute {
		t.Errorf("Expected default tx timeout, got %s", cfg.Tx.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected info level, got %s", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileUsesEmbeddedDefaults(t *testing.T) {
	t.Setenv("NFT_CHAIN_ID", "43114")
	t.Setenv("RPC_URL", "https://api.avax.network/ext/bc/C/rpc")
	t.Setenv("MARKETPLACE_CONTRACT_ADDRESS", "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	t.Setenv("NFTCORE_CONTRACT_ADDRESS", "")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Network.ChainID != 43114 {
		t.Errorf("Expected chain 43114, got %d", cfg.Network.ChainID)
	}
	if cfg.Contracts.Marketplace != "0x5FbDB2315678afecb367f032d93F642f64180aa3" {
		t.Errorf("Unexpected marketplace: %s", cfg.Contracts.Marketplace)
	}
	if cfg.Wallet.PollInterval != 4*time.Second {
		t.Errorf("Expected 4s wallet poll interval, got %s", cfg.Wallet.PollInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %s", cfg.Logging.Level)
	}
	if got := cfg.Network.RPCEndpoints(); len(got) != 1 || got[0] != "https://api.avax.network/ext/bc/C/rpc" {
		t.Errorf("Unexpected endpoints: %v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad contract address", "contracts:\n  nft: 0x1234\n", "NFT"},
		{"bad rpc url", "network:\n  rpc_url: not-a-url\n", "RPCURL"},
		{"bad log level", "logging:\n  level: loud\n", "Level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Expected error to mention %s, got %v", tt.field, err)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "network: [")); err == nil {
		t.Fatal("Expected parse error")
	}
}
