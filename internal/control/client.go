package control

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/Agileeo/nft-client/internal/contract"
	"github.com/Agileeo/nft-client/internal/core/config"
	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/gateway"
	"github.com/Agileeo/nft-client/internal/health"
	redisclient "github.com/Agileeo/nft-client/internal/infra/redis"
	"github.com/Agileeo/nft-client/internal/infra/rpc/provider"
	"github.com/Agileeo/nft-client/internal/metadata"
	"github.com/Agileeo/nft-client/internal/monitoring"
	"github.com/Agileeo/nft-client/internal/network"
	"github.com/Agileeo/nft-client/internal/txn"
	"github.com/Agileeo/nft-client/internal/wallet"
)

// Client is the main application struct. It owns the provider and every
// component built on it.
type Client struct {
	cfg      *config.AppConfig
	provider gateway.Provider
	registry *network.Registry

	Session    *wallet.Manager
	Reconciler *wallet.Reconciler
	Lifecycle  *txn.Lifecycle
	Monitor    *monitoring.Monitor
	Uploader   metadata.Uploader

	redisClient  *redisclient.Client
	healthMon    *health.Monitor
	healthServer *health.Server
	log          *slog.Logger
}

// Config holds what NewClient needs beyond the loaded configuration.
type Config struct {
	App *config.AppConfig
	// Injected is the host wallet, if any. Nil selects the RPC fallback.
	Injected gateway.EIP1193
	// Provider overrides provider selection entirely.
	Provider gateway.Provider
}

// NewClient creates a new Client with all dependencies initialized. A missing
// provider is not an error here; operations that need one report it.
func NewClient(cfg Config) (*Client, error) {
	app := cfg.App
	log := slog.Default().With("component", "client")

	// 1. Networks
	registry := network.Default(app.Network.ChainID, app.Network.RPCURL)

	// 2. Provider
	p := cfg.Provider
	if p == nil {
		selected, err := gateway.Select(cfg.Injected, app.Network.RPCEndpoints(),
			gateway.WithPollInterval(app.Wallet.PollInterval),
			gateway.WithTimeout(app.Network.Timeout),
		)
		if err != nil {
			log.Warn("No provider available, read and write operations are disabled", "error", err)
		} else {
			p = selected
			log.Info("Provider selected", "provider", p.Name())
		}
	}

	// 3. Session, reconciliation and transactions
	session := wallet.NewManager(p)
	reconciler := wallet.NewReconciler(p, registry)
	lifecycle := txn.NewLifecycle(txn.Config{
		ChainID:      app.Network.ChainID,
		Marketplace:  app.Contracts.Marketplace,
		NFT:          app.Contracts.NFT,
		PollInterval: app.Tx.PollInterval,
	}, p, session, reconciler)

	// 4. Optional snapshot cache
	var redisClient *redisclient.Client
	var cache monitoring.Cache
	var pinger health.Pinger
	if app.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(app.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, snapshot cache disabled", "error", err)
			redisClient = nil
		} else {
			cache = redisClient.Snapshots(app.Network.ChainID)
			pinger = redisClient
		}
	}
	monitor := monitoring.NewMonitor(p, app.Contracts.NFT, cache)

	// 5. Health
	var endpoints []provider.Provider
	if rp, ok := p.(*gateway.RPCProvider); ok {
		endpoints = rp.Endpoints()
	}
	healthMon := health.NewMonitor(session, app.Network.ChainID, endpoints, pinger)

	return &Client{
		cfg:          app,
		provider:     p,
		registry:     registry,
		Session:      session,
		Reconciler:   reconciler,
		Lifecycle:    lifecycle,
		Monitor:      monitor,
		Uploader:     metadata.StubUploader{},
		redisClient:  redisClient,
		healthMon:    healthMon,
		healthServer: health.NewServer(healthMon, app.Server.Port),
		log:          log,
	}, nil
}

// Networks lists the configured network descriptors.
func (c *Client) Networks() []domain.NetworkDescriptor {
	return c.registry.All()
}

// RequiredChain is the chain every transaction is reconciled to.
func (c *Client) RequiredChain() domain.NetworkDescriptor {
	return c.registry.Lookup(c.cfg.Network.ChainID)
}

// Health returns the current health report.
func (c *Client) Health(ctx context.Context) health.HealthReport {
	return c.healthMon.CheckHealth(ctx)
}

// Sale reads the marketplace listing for tokenID.
func (c *Client) Sale(ctx context.Context, tokenID *big.Int) (domain.Sale, error) {
	if c.provider == nil {
		return domain.Sale{}, domain.NewError(domain.ErrProviderUnavailable,
			"No Web3 Provider detected and RPC URL not configured", gateway.ErrNoProvider)
	}
	market, err := contract.NewMarketplace(c.cfg.Contracts.Marketplace, c.provider)
	if err != nil {
		return domain.Sale{}, err
	}
	return market.Sale(ctx, tokenID)
}

// Execute connects if needed, submits req and waits for the configured number
// of confirmations. The outcome is meaningful even when err is non-nil.
func (c *Client) Execute(ctx context.Context, req domain.TransactionRequest) (domain.TransactionOutcome, error) {
	if !c.Session.Session().IsConnected() {
		if err := c.Session.Connect(ctx); err != nil {
			return domain.TransactionOutcome{Status: domain.OutcomeFailed, ErrorKind: domain.KindOf(err)}, err
		}
	}
	if req.Sender == "" {
		req.Sender = c.Session.Session().Account
	}

	tx, err := c.Lifecycle.Submit(ctx, req)
	if err != nil {
		return tx.Outcome(), err
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.Tx.Timeout)
	defer cancel()
	out, err := c.Lifecycle.AwaitConfirmation(waitCtx, tx, c.cfg.Tx.Confirmations)
	if errors.Is(err, context.DeadlineExceeded) {
		c.log.Warn("Stopped waiting for confirmation, transaction is still pending",
			"request_id", tx.ID, "tx_hash", tx.Hash())
	}
	return out, err
}

// Mint uploads md and mints a token pointing at it. tokenID may be nil.
func (c *Client) Mint(ctx context.Context, md *domain.MintMetadata, tokenID *big.Int) (domain.TransactionOutcome, string, error) {
	uri, err := c.Uploader.Upload(ctx, md)
	if err != nil {
		return domain.TransactionOutcome{Status: domain.OutcomeFailed, ErrorKind: domain.KindOf(err)}, "", err
	}
	out, err := c.Execute(ctx, domain.TransactionRequest{
		Kind:     domain.TxKindMint,
		TokenID:  tokenID,
		TokenURI: uri,
	})
	return out, uri, err
}

// Start registers session listeners and serves health and metrics.
func (c *Client) Start(ctx context.Context) error {
	c.Session.Start()

	go func() {
		if err := c.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error("Health server failed", "error", err)
		}
	}()

	c.log.Info("Client started", "port", c.cfg.Server.Port, "chain_id", c.cfg.Network.ChainID)
	return nil
}

// Stop stops the client.
func (c *Client) Stop(ctx context.Context) error {
	c.log.Info("Stopping client...")

	c.Session.Stop()

	if closer, ok := c.provider.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			c.log.Warn("Failed to close provider", "error", err)
		}
	}

	// Close Redis
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.log.Warn("Failed to close Redis", "error", err)
		}
	}

	// Stop Health Server
	return c.healthServer.Stop(ctx)
}
