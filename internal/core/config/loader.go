package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

//go:embed default.yaml
var defaultYAML []byte

var validate = validator.New()

// Load reads configuration from a YAML file. A missing file falls back to the
// embedded defaults, which take every value from the environment.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || path == "" {
		data = defaultYAML
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, applies defaults and validates.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Network.ChainID == 0 {
		cfg.Network.ChainID = domain.ChainIDAvalancheFuji
	}
	if cfg.Network.Timeout == 0 {
		cfg.Network.Timeout = 15 * time.Second
	}
	if cfg.Wallet.PollInterval == 0 {
		cfg.Wallet.PollInterval = 4 * time.Second
	}
	if cfg.Tx.Confirmations == 0 {
		cfg.Tx.Confirmations = 1
	}
	if cfg.Tx.PollInterval == 0 {
		cfg.Tx.PollInterval = 2 * time.Second
	}
	if cfg.Tx.Timeout == 0 {
		cfg.Tx.Timeout = 5 * time.Minute
	}
	if cfg.Monitoring.Interval == 0 {
		cfg.Monitoring.Interval = 30 * time.Second
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 30 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
