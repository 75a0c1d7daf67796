package domain

import (
	"errors"
)

// ErrorKind is the closed set of failure categories reported to callers.
type ErrorKind string

const (
	ErrUserRejected        ErrorKind = "user_rejected"
	ErrInsufficientFunds   ErrorKind = "insufficient_funds"
	ErrNetworkMismatch     ErrorKind = "network_mismatch"
	ErrUnconfiguredChain   ErrorKind = "unconfigured_chain"
	ErrInvalidInput        ErrorKind = "invalid_input"
	ErrProviderUnavailable ErrorKind = "provider_unavailable"
	ErrContractCallFailed  ErrorKind = "contract_call_failed"
	ErrUnknown             ErrorKind = "unknown"
)

// Error is a classified failure. Err keeps the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return string(e.Kind) + ": " + e.Message
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or ErrUnknown.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) && de != nil {
		return de.Kind
	}
	return ErrUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de != nil && de.Kind == kind
}
