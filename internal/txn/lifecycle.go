// Package txn builds, submits and tracks marketplace and NFT transactions.
package txn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/errclass"
	"github.com/Agileeo/nft-client/internal/gateway"
	"github.com/Agileeo/nft-client/internal/metrics"
)

// SessionReader exposes the current wallet session.
type SessionReader interface {
	Session() domain.WalletSession
}

// ChainReconciler brings the provider to a required chain.
type ChainReconciler interface {
	EnsureChain(ctx context.Context, required domain.ChainID) error
}

type Config struct {
	ChainID      domain.ChainID
	Marketplace  string
	NFT          string
	PollInterval time.Duration
}

// Lifecycle owns transaction submission and confirmation tracking.
type Lifecycle struct {
	cfg        Config
	provider   gateway.Provider
	session    SessionReader
	reconciler ChainReconciler
	handlers   map[domain.TxKind]handler
	log        *slog.Logger
}

func NewLifecycle(cfg Config, provider gateway.Provider, session SessionReader, reconciler ChainReconciler) *Lifecycle {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	l := &Lifecycle{
		cfg:        cfg,
		provider:   provider,
		session:    session,
		reconciler: reconciler,
		log:        slog.Default().With("component", "lifecycle"),
	}
	l.handlers = l.buildHandlers()
	return l
}

// Submit builds req and hands it to the wallet. The returned Tx is never nil;
// when err is non-nil it is in Rejected or Failed.
func (l *Lifecycle) Submit(ctx context.Context, req domain.TransactionRequest) (*Tx, error) {
	tx := newTx(req)
	log := l.log.With("request_id", tx.ID, "kind", req.Kind.String())

	session := l.session.Session()
	if !session.IsConnected() {
		return tx, l.failBuilt(tx, domain.NewError(domain.ErrProviderUnavailable, "no signer: wallet is not connected", nil))
	}

	if err := l.reconciler.EnsureChain(ctx, l.cfg.ChainID); err != nil {
		return tx, l.failBuilt(tx, errclass.Wrap(err, "reconcile chain"))
	}

	build, ok := l.handlers[req.Kind]
	if !ok {
		return tx, l.failBuilt(tx, domain.NewError(domain.ErrInvalidInput,
			fmt.Sprintf("unsupported transaction kind %d", req.Kind), nil))
	}
	from := common.HexToAddress(session.Account)
	c, err := build(ctx, req, from)
	if err != nil {
		return tx, l.failBuilt(tx, errclass.Wrap(err, "build "+req.Kind.String()))
	}

	msg := map[string]any{
		"from": from.Hex(),
		"to":   c.to.Hex(),
		"data": hexutil.Encode(c.data),
	}
	if c.value != nil && c.value.Sign() > 0 {
		msg["value"] = hexutil.EncodeBig(c.value)
	}

	log.Info("Sending transaction", "to", c.to.Hex())
	result, err := l.provider.Send(ctx, "eth_sendTransaction", []any{msg})
	if err != nil {
		return tx, l.failBuilt(tx, errclass.Wrap(err, "send "+req.Kind.String()))
	}

	var hash common.Hash
	if err := gateway.Decode(result, &hash); err != nil {
		return tx, l.failBuilt(tx, domain.NewError(domain.ErrUnknown, "malformed transaction hash", err))
	}
	if err := tx.submitted(hash.Hex()); err != nil {
		return tx, err
	}

	metrics.TxSubmitted.WithLabelValues(req.Kind.String()).Inc()
	log.Info("Transaction submitted", "tx_hash", hash.Hex())
	return tx, nil
}

// failBuilt moves a Built tx to Rejected or Failed according to err.
func (l *Lifecycle) failBuilt(tx *Tx, err error) error {
	kind := domain.KindOf(err)
	if kind == domain.ErrUserRejected {
		_ = tx.reject()
	} else {
		_ = tx.fail(kind)
	}
	tx.recordOutcome()
	l.log.Warn("Transaction not submitted", "request_id", tx.ID, "kind", tx.Request.Kind.String(),
		"error_kind", kind, "error", err)
	return err
}

type receipt struct {
	BlockNumber *hexutil.Big   `json:"blockNumber"`
	Status      hexutil.Uint64 `json:"status"`
}

// AwaitConfirmation polls until tx has minConfirmations blocks on top of its
// receipt. A cancelled ctx leaves tx in WaitingConfirmation.
func (l *Lifecycle) AwaitConfirmation(ctx context.Context, tx *Tx, minConfirmations uint64) (domain.TransactionOutcome, error) {
	if minConfirmations == 0 {
		minConfirmations = 1
	}
	if tx.State().Terminal() {
		return settledOutcome(tx)
	}
	if err := tx.waiting(); err != nil {
		// Another waiter may have moved the tx on already.
		switch state := tx.State(); {
		case state.Terminal():
			return settledOutcome(tx)
		case state != domain.TxStateWaitingConfirmation:
			return tx.Outcome(), err
		}
	}

	hash := tx.Hash()
	log := l.log.With("request_id", tx.ID, "tx_hash", hash)
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		done, err := l.checkReceipt(ctx, tx, hash, minConfirmations)
		if err != nil {
			if tx.State().Terminal() {
				return settledOutcome(tx)
			}
			if ctx.Err() != nil {
				return tx.Outcome(), ctx.Err()
			}
			wrapped := errclass.Wrap(err, "await confirmation")
			_ = tx.fail(domain.KindOf(wrapped))
			tx.recordOutcome()
			log.Error("Confirmation tracking failed", "error", wrapped)
			return tx.Outcome(), wrapped
		}
		if done {
			tx.recordOutcome()
			out := tx.Outcome()
			log.Info("Transaction settled", "status", out.Status, "confirmations", out.Confirmations)
			return out, nil
		}

		select {
		case <-ctx.Done():
			return tx.Outcome(), ctx.Err()
		case <-ticker.C:
		}
	}
}

// settledOutcome reports a tx that reached a terminal state elsewhere.
// Rejected and Failed keep their error kind.
func settledOutcome(tx *Tx) (domain.TransactionOutcome, error) {
	out := tx.Outcome()
	if out.ErrorKind != "" {
		return out, domain.NewError(out.ErrorKind, "transaction "+string(out.Status), nil)
	}
	return out, nil
}

func (l *Lifecycle) checkReceipt(ctx context.Context, tx *Tx, hash string, min uint64) (bool, error) {
	result, err := l.provider.Send(ctx, "eth_getTransactionReceipt", []any{hash})
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}
	var r receipt
	if err := gateway.Decode(result, &r); err != nil {
		return false, fmt.Errorf("decode receipt: %w", err)
	}
	if r.BlockNumber == nil {
		return false, nil
	}

	result, err = l.provider.Send(ctx, "eth_blockNumber", nil)
	if err != nil {
		return false, err
	}
	var head hexutil.Uint64
	if err := gateway.Decode(result, &head); err != nil {
		return false, fmt.Errorf("decode block number: %w", err)
	}

	included := r.BlockNumber.ToInt().Uint64()
	var confirmations uint64
	if uint64(head) >= included {
		confirmations = uint64(head) - included + 1
	}
	if confirmations < min {
		return false, nil
	}

	return true, tx.settle(uint64(r.Status) == types.ReceiptStatusSuccessful, confirmations)
}
