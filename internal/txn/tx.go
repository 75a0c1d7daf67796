package txn

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/metrics"
)

var ErrInvalidTransition = errors.New("invalid transaction state transition")

var transitions = map[domain.TxState][]domain.TxState{
	domain.TxStateBuilt:               {domain.TxStateSubmitted, domain.TxStateRejected, domain.TxStateFailed},
	domain.TxStateSubmitted:           {domain.TxStateWaitingConfirmation, domain.TxStateFailed},
	domain.TxStateWaitingConfirmation: {domain.TxStateConfirmed, domain.TxStateReverted, domain.TxStateFailed},
}

// Tx tracks one submitted request through its lifecycle.
type Tx struct {
	ID      string
	Request domain.TransactionRequest

	mu            sync.Mutex
	state         domain.TxState
	hash          string
	errKind       domain.ErrorKind
	confirmations uint64
	submittedAt   time.Time
}

func newTx(req domain.TransactionRequest) *Tx {
	return &Tx{
		ID:      uuid.NewString(),
		Request: req,
		state:   domain.TxStateBuilt,
	}
}

func (t *Tx) State() domain.TxState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tx) Hash() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hash
}

// Outcome reports the user-facing status for the current state.
func (t *Tx) Outcome() domain.TransactionOutcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := domain.TransactionOutcome{
		TxHash:        t.hash,
		Confirmations: t.confirmations,
		ErrorKind:     t.errKind,
	}
	switch t.state {
	case domain.TxStateConfirmed:
		out.Status = domain.OutcomeConfirmed
	case domain.TxStateReverted:
		out.Status = domain.OutcomeReverted
	case domain.TxStateRejected:
		out.Status = domain.OutcomeRejected
	case domain.TxStateFailed:
		out.Status = domain.OutcomeFailed
	default:
		out.Status = domain.OutcomePending
	}
	return out
}

func (t *Tx) transition(to domain.TxState, apply func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, allowed := range transitions[t.state] {
		if allowed == to {
			if apply != nil {
				apply()
			}
			t.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.state, to)
}

func (t *Tx) submitted(hash string) error {
	return t.transition(domain.TxStateSubmitted, func() {
		t.hash = hash
		t.submittedAt = time.Now()
	})
}

func (t *Tx) fail(kind domain.ErrorKind) error {
	return t.transition(domain.TxStateFailed, func() { t.errKind = kind })
}

func (t *Tx) reject() error {
	return t.transition(domain.TxStateRejected, func() { t.errKind = domain.ErrUserRejected })
}

func (t *Tx) waiting() error {
	return t.transition(domain.TxStateWaitingConfirmation, nil)
}

// settle moves a waiting transaction to Confirmed or Reverted.
func (t *Tx) settle(success bool, confirmations uint64) error {
	to := domain.TxStateReverted
	if success {
		to = domain.TxStateConfirmed
	}
	err := t.transition(to, func() { t.confirmations = confirmations })
	if err == nil && success {
		metrics.TxConfirmationLatency.WithLabelValues(t.Request.Kind.String()).
			Observe(time.Since(t.submittedAt).Seconds())
	}
	return err
}

func (t *Tx) recordOutcome() {
	out := t.Outcome()
	metrics.TxOutcomes.WithLabelValues(t.Request.Kind.String(), string(out.Status), string(out.ErrorKind)).Inc()
}
