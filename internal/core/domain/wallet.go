package domain

// SessionStatus is the connection state of the wallet session.
type SessionStatus string

const (
	SessionDisconnected SessionStatus = "disconnected"
	SessionConnecting   SessionStatus = "connecting"
	SessionConnected    SessionStatus = "connected"
)

// WalletSession is the process-wide view of the connected wallet.
// A Connected session always carries an account and a chain id.
type WalletSession struct {
	Status  SessionStatus `json:"status"`
	Account string        `json:"account,omitempty"`
	ChainID ChainID       `json:"chain_id,omitempty"`
}

// DisconnectedSession is the initial session state.
func DisconnectedSession() WalletSession {
	return WalletSession{Status: SessionDisconnected}
}

// IsConnected reports whether the session can sign.
func (s WalletSession) IsConnected() bool {
	return s.Status == SessionConnected && s.Account != "" && s.ChainID != 0
}

// Valid reports whether the session satisfies the connection invariant.
func (s WalletSession) Valid() bool {
	if s.Status == SessionConnected {
		return s.Account != "" && s.ChainID != 0
	}
	return true
}
