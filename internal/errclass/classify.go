// Package errclass maps raw provider and contract failures to a domain.ErrorKind.
package errclass

import (
	"errors"
	"strings"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/gateway"
	"github.com/Agileeo/nft-client/internal/metrics"
)

// Provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
	CodeInsufficientFunds = -32000
	CodeExecutionReverted = 3
)

var (
	userRejectedMarkers = []string{"action_rejected", "user rejected", "user denied"}
	noProviderMarkers   = []string{"no signer", "no provider", "provider not found", "install a wallet", "no web3 provider"}
	callFailedMarkers   = []string{"execution reverted", "call_exception", "call exception"}
)

// Classify returns the kind of err. It never panics: a malformed error whose
// Error method panics is reported as ErrUnknown.
func Classify(err error) (kind domain.ErrorKind) {
	if err == nil {
		return domain.ErrUnknown
	}
	defer func() {
		if recover() != nil {
			kind = domain.ErrUnknown
		}
	}()

	var classified *domain.Error
	if errors.As(err, &classified) && classified != nil {
		return classified.Kind
	}

	code, hasCode := Code(err)
	msg := strings.ToLower(err.Error())

	switch {
	case hasCode && code == CodeUserRejected, containsAny(msg, userRejectedMarkers):
		return domain.ErrUserRejected
	case hasCode && code == CodeInsufficientFunds && strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "insufficient_funds"),
		strings.Contains(msg, "insufficient funds for"):
		return domain.ErrInsufficientFunds
	case errors.Is(err, gateway.ErrNoProvider), containsAny(msg, noProviderMarkers):
		return domain.ErrProviderUnavailable
	case hasCode && code == CodeExecutionReverted, containsAny(msg, callFailedMarkers):
		return domain.ErrContractCallFailed
	}
	return domain.ErrUnknown
}

// Wrap classifies err into a *domain.Error. Already classified errors are
// returned as they are.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var classified *domain.Error
	if errors.As(err, &classified) && classified != nil {
		metrics.ErrorsClassified.WithLabelValues(string(classified.Kind)).Inc()
		return err
	}
	kind := Classify(err)
	metrics.ErrorsClassified.WithLabelValues(string(kind)).Inc()
	return domain.NewError(kind, message, err)
}

// Code extracts a JSON-RPC or EIP-1193 error code from err's chain.
func Code(err error) (code int, ok bool) {
	defer func() {
		if recover() != nil {
			code, ok = 0, false
		}
	}()
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) && rpcErr != nil {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
