package domain

import (
	"math/big"
)

// TxKind selects the contract call a request dispatches to.
type TxKind int

const (
	TxKindList TxKind = iota + 1
	TxKindUnlist
	TxKindBuy
	TxKindMint
)

func (k TxKind) String() string {
	switch k {
	case TxKindList:
		return "list"
	case TxKindUnlist:
		return "unlist"
	case TxKindBuy:
		return "buy"
	case TxKindMint:
		return "mint"
	default:
		return "unknown"
	}
}

// TransactionRequest is a normalized user submission. It is not mutated after
// construction.
type TransactionRequest struct {
	Kind    TxKind
	TokenID *big.Int // nil for a Mint that lets the contract assign the id
	Price   *big.Int // smallest unit, List only
	// StartTime is unix seconds; 0 means the sale starts immediately.
	StartTime int64
	Sender    string
	TokenURI  string // Mint only
}

// TxState is the lifecycle position of a submitted request.
type TxState string

const (
	TxStateBuilt               TxState = "built"
	TxStateSubmitted           TxState = "submitted"
	TxStateWaitingConfirmation TxState = "waiting_confirmation"
	TxStateConfirmed           TxState = "confirmed"
	TxStateReverted            TxState = "reverted"
	TxStateRejected            TxState = "rejected"
	TxStateFailed              TxState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s TxState) Terminal() bool {
	switch s {
	case TxStateConfirmed, TxStateReverted, TxStateRejected, TxStateFailed:
		return true
	}
	return false
}

// OutcomeStatus is the user-facing status of a transaction.
type OutcomeStatus string

const (
	OutcomePending   OutcomeStatus = "pending"
	OutcomeConfirmed OutcomeStatus = "confirmed"
	OutcomeReverted  OutcomeStatus = "reverted"
	OutcomeRejected  OutcomeStatus = "rejected"
	OutcomeFailed    OutcomeStatus = "failed"
)

// TransactionOutcome is reported back to the caller and never persisted.
type TransactionOutcome struct {
	Status        OutcomeStatus `json:"status"`
	TxHash        string        `json:"tx_hash,omitempty"`
	Confirmations uint64        `json:"confirmations"`
	ErrorKind     ErrorKind     `json:"error_kind,omitempty"`
}
