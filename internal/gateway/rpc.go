package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/infra/rpc/provider"
	"github.com/Agileeo/nft-client/internal/infra/rpc/routing"
)

// codeUnsupportedMethod is the EIP-1193 "unsupported method" code.
const codeUnsupportedMethod = 4200

const (
	defaultPollInterval = 4 * time.Second
	defaultTimeout      = 30 * time.Second
	maxPollFailures     = 3
)

// RPCOption configures an RPCProvider.
type RPCOption func(*RPCProvider)

// WithRetry overrides the retry policy for idempotent calls.
func WithRetry(cfg routing.RetryConfig) RPCOption {
	return func(p *RPCProvider) { p.retry = cfg }
}

// WithPollInterval sets how often the provider polls for account and chain changes.
func WithPollInterval(d time.Duration) RPCOption {
	return func(p *RPCProvider) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithTimeout sets the HTTP timeout used by NewRPCProviderFromURLs.
func WithTimeout(d time.Duration) RPCOption {
	return func(p *RPCProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// RPCProvider talks to JSON-RPC endpoints directly. Accounts come from the
// node (eth_accounts), so it can sign only on nodes with unlocked accounts.
// Node endpoints push no events; subscribers are fed by polling.
type RPCProvider struct {
	endpoints    []provider.Provider
	retry        routing.RetryConfig
	pollInterval time.Duration
	timeout      time.Duration
	log          *slog.Logger

	mu       sync.Mutex
	handlers map[string]map[uint64]Handler
	nextID   uint64
	cancel   context.CancelFunc
	loops    sync.WaitGroup
}

// NewRPCProvider wraps endpoints, tried in order on failover.
func NewRPCProvider(endpoints []provider.Provider, opts ...RPCOption) *RPCProvider {
	p := &RPCProvider{
		endpoints:    endpoints,
		retry:        routing.DefaultRetryConfig,
		pollInterval: defaultPollInterval,
		timeout:      defaultTimeout,
		handlers:     make(map[string]map[uint64]Handler),
		log:          slog.Default().With("component", "rpc_provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewRPCProviderFromURLs builds one HTTP endpoint per URL.
func NewRPCProviderFromURLs(urls []string, opts ...RPCOption) *RPCProvider {
	p := NewRPCProvider(nil, opts...)
	for i, url := range urls {
		p.endpoints = append(p.endpoints, provider.NewHTTPProvider(fmt.Sprintf("rpc-%d", i), url, p.timeout))
	}
	return p
}

func (p *RPCProvider) Name() string {
	return "rpc"
}

// Endpoints exposes the underlying endpoints for health reporting.
func (p *RPCProvider) Endpoints() []provider.Provider {
	return p.endpoints
}

func (p *RPCProvider) ChainID(ctx context.Context) (domain.ChainID, error) {
	result, err := p.Send(ctx, "eth_chainId", nil)
	if err != nil {
		return 0, err
	}
	return ParseChainID(result)
}

func (p *RPCProvider) Send(ctx context.Context, method string, params []any) (any, error) {
	switch method {
	case "eth_requestAccounts":
		method = "eth_accounts"
	case "wallet_switchEthereumChain", "wallet_addEthereumChain":
		return nil, &provider.RPCError{
			Code:    codeUnsupportedMethod,
			Message: "rpc endpoint cannot change chains: " + method,
		}
	}
	return routing.CallWithRetryAndFailover(ctx, p.endpoints, method, params, p.retry)
}

func (p *RPCProvider) Subscribe(event string, h Handler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	if p.handlers[event] == nil {
		p.handlers[event] = make(map[uint64]Handler)
	}
	p.handlers[event][id] = h

	if p.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.loops.Add(1)
		go p.pollLoop(ctx)
	}

	var once sync.Once
	return func() {
		once.Do(func() { p.unsubscribe(event, id) })
	}
}

func (p *RPCProvider) unsubscribe(event string, id uint64) {
	p.mu.Lock()
	delete(p.handlers[event], id)
	if len(p.handlers[event]) == 0 {
		delete(p.handlers, event)
	}
	// Handlers may unsubscribe from inside the poll goroutine, so the loop is
	// only cancelled here. Close waits for it.
	if len(p.handlers) == 0 && p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
}

// Close stops polling, waits for every poll loop to exit and releases the
// endpoints. It must not be called from an event handler.
func (p *RPCProvider) Close() error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.handlers = make(map[string]map[uint64]Handler)
	p.mu.Unlock()

	p.loops.Wait()
	for _, e := range p.endpoints {
		_ = e.Close()
	}
	return nil
}

type pollState struct {
	chainID      domain.ChainID
	accounts     []string
	initialized  bool
	failures     int
	disconnected bool
}

func (p *RPCProvider) pollLoop(ctx context.Context) {
	defer p.loops.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	var st pollState
	p.poll(ctx, &st)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, &st)
		}
	}
}

func (p *RPCProvider) poll(ctx context.Context, st *pollState) {
	chainID, chainErr := p.ChainID(ctx)
	var accounts []string
	result, accErr := p.Send(ctx, "eth_accounts", nil)
	if accErr == nil {
		accounts, accErr = ParseAccounts(result)
	}
	if ctx.Err() != nil {
		return
	}

	if chainErr != nil || accErr != nil {
		st.failures++
		p.log.Debug("poll failed", "failures", st.failures, "chain_error", chainErr, "accounts_error", accErr)
		if st.failures >= maxPollFailures && !st.disconnected {
			st.disconnected = true
			err := chainErr
			if err == nil {
				err = accErr
			}
			p.emit(ctx, EventDisconnect, &provider.RPCError{Code: 4900, Message: err.Error()})
		}
		return
	}
	st.failures = 0
	st.disconnected = false

	if !st.initialized {
		st.chainID, st.accounts, st.initialized = chainID, accounts, true
		return
	}
	if chainID != st.chainID {
		st.chainID = chainID
		p.emit(ctx, EventChainChanged, HexChainID(chainID))
	}
	if !slices.Equal(accounts, st.accounts) {
		st.accounts = accounts
		p.emit(ctx, EventAccountsChanged, append([]string(nil), accounts...))
	}
}

// emit delivers payload to the handlers registered for event. A cancelled
// loop delivers nothing, so handlers added after a restart never see events
// observed by the loop that was stopped.
func (p *RPCProvider) emit(ctx context.Context, event string, payload any) {
	p.mu.Lock()
	if ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	ids := make([]uint64, 0, len(p.handlers[event]))
	for id := range p.handlers[event] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	hs := make([]Handler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, p.handlers[event][id])
	}
	p.mu.Unlock()

	for _, h := range hs {
		h(payload)
	}
}
