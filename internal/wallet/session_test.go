package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/gateway"
	"github.com/Agileeo/nft-client/internal/gateway/gatewaytest"
	"github.com/Agileeo/nft-client/internal/infra/rpc/provider"
)

const (
	alice = "0x1111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222"
)

func newConnectedManager(t *testing.T) (*Manager, *gatewaytest.Provider) {
	t.Helper()
	fake := gatewaytest.New(43113)
	fake.Return("eth_requestAccounts", []any{alice, bob})

	m := NewManager(fake)
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return m, fake
}

func assertInvariant(t *testing.T, s domain.WalletSession) {
	t.Helper()
	connected := s.Status == domain.SessionConnected
	complete := s.Account != "" && s.ChainID != 0
	if connected != complete {
		t.Errorf("invariant violated: %+v", s)
	}
}

func TestManager_Connect(t *testing.T) {
	m, fake := newConnectedManager(t)

	s := m.Session()
	if s.Status != domain.SessionConnected {
		t.Fatalf("expected connected, got %s", s.Status)
	}
	if s.Account != alice {
		t.Errorf("expected first account %s, got %s", alice, s.Account)
	}
	if s.ChainID != 43113 {
		t.Errorf("expected chain 43113, got %d", s.ChainID)
	}
	assertInvariant(t, s)

	for _, event := range []string{gateway.EventAccountsChanged, gateway.EventChainChanged, gateway.EventDisconnect} {
		if n := fake.ListenerCount(event); n != 1 {
			t.Errorf("expected 1 %s listener, got %d", event, n)
		}
	}
}

func TestManager_ConnectTwiceRegistersOnce(t *testing.T) {
	m, fake := newConnectedManager(t)
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	m.Start()

	if n := fake.ListenerCount(gateway.EventAccountsChanged); n != 1 {
		t.Errorf("expected 1 listener after reconnect, got %d", n)
	}
}

func TestManager_NoProvider(t *testing.T) {
	m := NewManager(nil)
	err := m.Connect(context.Background())
	if !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
	if !errors.Is(err, gateway.ErrNoProvider) {
		t.Errorf("expected ErrNoProvider in chain")
	}
	if m.Session() != domain.DisconnectedSession() {
		t.Errorf("expected session to stay disconnected, got %+v", m.Session())
	}
}

func TestManager_ConnectRejected(t *testing.T) {
	fake := gatewaytest.New(43113)
	fake.Fail("eth_requestAccounts", &provider.RPCError{Code: 4001, Message: "User rejected the request."})

	m := NewManager(fake)
	err := m.Connect(context.Background())
	if !domain.IsKind(err, domain.ErrUserRejected) {
		t.Fatalf("expected user rejected, got %v", err)
	}
	if m.Session() != domain.DisconnectedSession() {
		t.Errorf("expected disconnected after rejection, got %+v", m.Session())
	}
}

func TestManager_ConnectNoAccounts(t *testing.T) {
	fake := gatewaytest.New(43113)
	fake.Return("eth_requestAccounts", []any{})

	m := NewManager(fake)
	if err := m.Connect(context.Background()); !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
	assertInvariant(t, m.Session())
}

func TestManager_ConnectDisconnectRoundTrip(t *testing.T) {
	m, _ := newConnectedManager(t)
	m.Disconnect()

	if m.Session() != domain.DisconnectedSession() {
		t.Errorf("expected initial state, got %+v", m.Session())
	}

	// Idempotent
	m.Disconnect()
	if m.Session() != domain.DisconnectedSession() {
		t.Errorf("expected initial state after second disconnect, got %+v", m.Session())
	}
}

func TestManager_AccountsChanged(t *testing.T) {
	m, fake := newConnectedManager(t)

	fake.Emit(gateway.EventAccountsChanged, []any{bob})
	s := m.Session()
	if s.Account != bob {
		t.Errorf("expected account %s, got %s", bob, s.Account)
	}
	if s.ChainID != 43113 {
		t.Errorf("expected chain id preserved, got %d", s.ChainID)
	}
	if s.Status != domain.SessionConnected {
		t.Errorf("expected still connected, got %s", s.Status)
	}
}

func TestManager_EmptyAccountsDisconnects(t *testing.T) {
	states := []func(t *testing.T) (*Manager, *gatewaytest.Provider){
		newConnectedManager,
		func(t *testing.T) (*Manager, *gatewaytest.Provider) {
			fake := gatewaytest.New(43113)
			m := NewManager(fake)
			m.Start()
			return m, fake
		},
		func(t *testing.T) (*Manager, *gatewaytest.Provider) {
			m, fake := newConnectedManager(t)
			fake.Emit(gateway.EventChainChanged, "0xa86a")
			return m, fake
		},
	}

	for i, setup := range states {
		m, fake := setup(t)
		fake.Emit(gateway.EventAccountsChanged, []any{})
		if m.Session() != domain.DisconnectedSession() {
			t.Errorf("case %d: expected disconnected, got %+v", i, m.Session())
		}
	}
}

func TestManager_ChainChanged(t *testing.T) {
	m, fake := newConnectedManager(t)

	fake.Emit(gateway.EventChainChanged, "0xa86a")
	s := m.Session()
	if s.ChainID != 43114 {
		t.Errorf("expected chain 43114, got %d", s.ChainID)
	}
	if s.Account != alice {
		t.Errorf("expected account untouched, got %s", s.Account)
	}

	// Malformed payloads are ignored
	fake.Emit(gateway.EventChainChanged, "not-a-chain")
	if m.Session().ChainID != 43114 {
		t.Errorf("expected malformed chainChanged to be ignored")
	}
}

func TestManager_EventsIgnoredWhileDisconnected(t *testing.T) {
	m, fake := newConnectedManager(t)
	m.Disconnect()

	fake.Emit(gateway.EventChainChanged, "0xa86a")
	fake.Emit(gateway.EventAccountsChanged, []any{bob})

	s := m.Session()
	if s != domain.DisconnectedSession() {
		t.Errorf("expected events to be ignored while disconnected, got %+v", s)
	}
	assertInvariant(t, s)
}

func TestManager_ProviderDisconnect(t *testing.T) {
	m, fake := newConnectedManager(t)

	fake.Emit(gateway.EventDisconnect, &provider.RPCError{Code: 4900, Message: "disconnected"})
	if m.Session() != domain.DisconnectedSession() {
		t.Errorf("expected disconnected, got %+v", m.Session())
	}
}

func TestManager_StopRemovesListeners(t *testing.T) {
	m, fake := newConnectedManager(t)
	m.Stop()

	for _, event := range []string{gateway.EventAccountsChanged, gateway.EventChainChanged, gateway.EventDisconnect} {
		if n := fake.ListenerCount(event); n != 0 {
			t.Errorf("expected 0 %s listeners after Stop, got %d", event, n)
		}
	}

	// Events after Stop do not reach the session
	fake.Emit(gateway.EventAccountsChanged, []any{})
	if m.Session().Status != domain.SessionConnected {
		t.Error("expected session to ignore events after Stop")
	}

	// Reconnect cycle does not duplicate handlers
	m.Start()
	m.Stop()
	m.Start()
	if n := fake.ListenerCount(gateway.EventAccountsChanged); n != 1 {
		t.Errorf("expected 1 listener after restart, got %d", n)
	}
}

func TestManager_DisconnectDuringConnect(t *testing.T) {
	fake := gatewaytest.New(43113)
	m := NewManager(fake)
	fake.Handle("eth_requestAccounts", func(ctx context.Context, params []any) (any, error) {
		// The wallet drops the connection while the account prompt is open
		fake.Emit(gateway.EventDisconnect, nil)
		return []any{alice}, nil
	})

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("expected connect to be abandoned")
	}
	if m.Session() != domain.DisconnectedSession() {
		t.Errorf("expected disconnected, got %+v", m.Session())
	}
}

func TestManager_OnChange(t *testing.T) {
	fake := gatewaytest.New(43113)
	fake.Return("eth_requestAccounts", []any{alice})
	m := NewManager(fake)

	var seen []domain.SessionStatus
	m.OnChange(func(s domain.WalletSession) {
		assertInvariant(t, s)
		seen = append(seen, s.Status)
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	m.Disconnect()

	expect := []domain.SessionStatus{domain.SessionConnecting, domain.SessionConnected, domain.SessionDisconnected}
	if len(seen) != len(expect) {
		t.Fatalf("expected %v, got %v", expect, seen)
	}
	for i := range expect {
		if seen[i] != expect[i] {
			t.Errorf("step %d: expected %s, got %s", i, expect[i], seen[i])
		}
	}
}
