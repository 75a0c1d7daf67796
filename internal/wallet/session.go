// Package wallet owns the wallet session and chain reconciliation.
package wallet

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/errclass"
	"github.com/Agileeo/nft-client/internal/gateway"
	"github.com/Agileeo/nft-client/internal/metrics"
)

// Manager owns the process-wide WalletSession. It is the only writer; every
// other component reads through Session.
type Manager struct {
	provider gateway.Provider
	log      *slog.Logger

	mu        sync.Mutex
	session   domain.WalletSession
	gen       uint64 // bumped by every reset, invalidates in-flight connects
	unsubs    []func()
	observers []func(domain.WalletSession)
}

// NewManager creates a manager in the Disconnected state. provider may be nil,
// in which case Connect reports that a wallet must be installed.
func NewManager(provider gateway.Provider) *Manager {
	return &Manager{
		provider: provider,
		session:  domain.DisconnectedSession(),
		log:      slog.Default().With("component", "session"),
	}
}

// Session returns a copy of the current session.
func (m *Manager) Session() domain.WalletSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// OnChange registers fn to observe every committed session change. fn runs
// with the session lock held and must not call back into the Manager.
func (m *Manager) OnChange(fn func(domain.WalletSession)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Connect requests account access and moves the session to Connected.
func (m *Manager) Connect(ctx context.Context) error {
	if m.provider == nil {
		return domain.NewError(domain.ErrProviderUnavailable,
			"Please install a wallet", gateway.ErrNoProvider)
	}

	m.mu.Lock()
	gen := m.gen
	if m.session.Status == domain.SessionDisconnected {
		m.commitLocked(domain.WalletSession{Status: domain.SessionConnecting})
	}
	m.mu.Unlock()

	m.Start()

	result, err := m.provider.Send(ctx, "eth_requestAccounts", nil)
	if err != nil {
		m.abortConnect(gen)
		return errclass.Wrap(err, "request accounts")
	}
	accounts, err := gateway.ParseAccounts(result)
	if err != nil {
		m.abortConnect(gen)
		return domain.NewError(domain.ErrProviderUnavailable, "malformed accounts response", err)
	}
	if len(accounts) == 0 {
		m.abortConnect(gen)
		return domain.NewError(domain.ErrProviderUnavailable, "wallet returned no accounts", nil)
	}

	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		m.abortConnect(gen)
		return errclass.Wrap(err, "read chain id")
	}
	if chainID == 0 {
		m.abortConnect(gen)
		return domain.NewError(domain.ErrProviderUnavailable, "wallet reported chain id 0", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return domain.NewError(domain.ErrProviderUnavailable, "wallet disconnected while connecting", nil)
	}
	m.commitLocked(domain.WalletSession{
		Status:  domain.SessionConnected,
		Account: accounts[0],
		ChainID: chainID,
	})
	m.log.Info("Wallet connected", "account", accounts[0], "chain_id", chainID)
	return nil
}

// Disconnect resets the session locally. Provider permissions are left alone.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Start registers provider listeners. Calling it again before Stop is a no-op.
func (m *Manager) Start() {
	if m.provider == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubs != nil {
		return
	}
	m.unsubs = []func(){
		m.provider.Subscribe(gateway.EventAccountsChanged, m.handleAccountsChanged),
		m.provider.Subscribe(gateway.EventChainChanged, m.handleChainChanged),
		m.provider.Subscribe(gateway.EventDisconnect, m.handleDisconnect),
	}
}

// Stop removes every listener registered by Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, unsubscribe := range unsubs {
		unsubscribe()
	}
}

func (m *Manager) handleAccountsChanged(payload any) {
	accounts, err := gateway.ParseAccounts(payload)
	if err != nil {
		m.log.Warn("Ignoring malformed accountsChanged payload", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(accounts) == 0 {
		m.resetLocked()
		return
	}
	if m.session.Status != domain.SessionConnected {
		return
	}
	next := m.session
	next.Account = accounts[0]
	m.commitLocked(next)
}

func (m *Manager) handleChainChanged(payload any) {
	chainID, err := gateway.ParseChainID(payload)
	if err != nil || chainID == 0 {
		m.log.Warn("Ignoring malformed chainChanged payload", "payload", payload, "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Status != domain.SessionConnected {
		return
	}
	next := m.session
	next.ChainID = chainID
	m.commitLocked(next)
}

func (m *Manager) handleDisconnect(payload any) {
	m.log.Info("Provider disconnected", "reason", payload)
	m.Disconnect()
}

func (m *Manager) abortConnect(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == gen && m.session.Status == domain.SessionConnecting {
		m.commitLocked(domain.DisconnectedSession())
	}
}

func (m *Manager) resetLocked() {
	m.gen++
	if m.session == domain.DisconnectedSession() {
		return
	}
	m.commitLocked(domain.DisconnectedSession())
	m.log.Info("Wallet disconnected")
}

// commitLocked installs next and notifies observers. Callers hold m.mu.
func (m *Manager) commitLocked(next domain.WalletSession) {
	if !next.Valid() {
		m.log.Error("Refusing invalid session transition", "status", next.Status)
		return
	}
	m.session = next

	if next.IsConnected() {
		metrics.SessionConnected.Set(1)
	} else {
		metrics.SessionConnected.Set(0)
	}
	metrics.SessionChainID.Set(float64(next.ChainID))

	for _, fn := range m.observers {
		fn(next)
	}
}
