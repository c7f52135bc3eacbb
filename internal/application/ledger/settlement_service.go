package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"go.uber.org/zap"
)

var (
	// ErrInvalidWebhook is returned for callbacks that fail signature
	// verification or do not resolve to a transaction. No state changes.
	ErrInvalidWebhook = errors.New("settlement: invalid webhook")
)

// SettlementOutcome reports what a webhook delivery did
type SettlementOutcome struct {
	Transaction *wallet.Transaction
	// AlreadySettled is true for redelivered webhooks; the delivery is
	// acknowledged as success without a second credit.
	AlreadySettled bool
	// Failed is true when the provider reported a definitive payment
	// failure and the pending entry was closed as FAILED.
	Failed bool
}

// SettlementService drives the PENDING -> COMPLETED/FAILED state machine
// from provider webhooks. The database row lock inside LedgerStore.Settle is
// the idempotency authority; the optional replay store only short-circuits
// known redeliveries.
type SettlementService struct {
	store       wallet.LedgerStore
	registry    payment.Registry
	replayStore shared.IdempotencyStore
	replayCfg   shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewSettlementService creates a new SettlementService. replayStore may be
// nil, in which case every delivery goes through the row-lock path.
func NewSettlementService(store wallet.LedgerStore, registry payment.Registry, replayStore shared.IdempotencyStore, logger *zap.Logger) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		store:       store,
		registry:    registry,
		replayStore: replayStore,
		replayCfg:   shared.DefaultIdempotencyConfig(),
		logger:      logger,
	}
}

// ProcessWebhook verifies and applies one provider callback.
//
//  1. Unknown or disabled slug: payment.ErrProviderNotAvailable.
//  2. Invalid signature or unresolvable reference: ErrInvalidWebhook, no
//     state change.
//  3. Otherwise one atomic unit locks the transaction row, branches on its
//     status and applies the balance credit together with the status flip.
//
// Redelivery after a successful settlement is acknowledged as success.
func (s *SettlementService) ProcessWebhook(ctx context.Context, slug payment.ProviderSlug, payload []byte, params map[string][]string) (*SettlementOutcome, error) {
	provider, err := s.registry.Resolve(ctx, slug)
	if err != nil {
		s.logger.Warn("Webhook for unavailable provider",
			zap.String("provider", slug.String()),
			zap.Error(err))
		return nil, err
	}

	verification, err := provider.VerifyWebhook(ctx, payload, params)
	if err != nil {
		// Infrastructure fault while verifying; the provider will retry.
		return nil, fmt.Errorf("webhook verification: %w", err)
	}
	if verification == nil || !verification.IsValid || verification.TransactionRef == "" {
		s.logger.Warn("Rejected webhook",
			zap.String("provider", slug.String()),
			zap.Bool("signature_valid", verification != nil && verification.IsValid))
		return nil, ErrInvalidWebhook
	}

	replayKey := fmt.Sprintf("webhook:%s:%s", slug, verification.TransactionRef)
	if s.replayStore != nil && s.replayCfg.Enabled && !verification.Failed {
		if processed, err := s.replayStore.IsProcessed(ctx, replayKey); err == nil && processed {
			s.logger.Info("Webhook replay short-circuited",
				zap.String("provider", slug.String()),
				zap.String("reference", verification.TransactionRef))
			return &SettlementOutcome{AlreadySettled: true}, nil
		}
	}

	if verification.Failed {
		return s.failFromWebhook(ctx, slug, verification.TransactionRef)
	}

	result, err := s.store.Settle(ctx, verification.TransactionRef)
	if err != nil {
		if de := new(shared.DomainError); errors.As(err, &de) && de.Code == "NOT_FOUND" {
			s.logger.Warn("Webhook references unknown transaction",
				zap.String("provider", slug.String()),
				zap.String("reference", verification.TransactionRef))
			return nil, ErrInvalidWebhook
		}
		return nil, err
	}

	if s.replayStore != nil && s.replayCfg.Enabled {
		// Best effort: losing the marker only costs a no-op row lock later.
		if _, err := s.replayStore.MarkProcessed(ctx, replayKey, s.replayCfg.TTL); err != nil {
			s.logger.Warn("Failed to mark webhook as processed", zap.Error(err))
		}
	}

	if result.AlreadySettled {
		s.logger.Info("Webhook redelivery acknowledged",
			zap.String("provider", slug.String()),
			zap.String("reference", verification.TransactionRef))
	} else {
		s.logger.Info("Top-up settled",
			zap.String("provider", slug.String()),
			zap.String("transaction_id", result.Transaction.ID.String()),
			zap.Int64("amount_cents", result.Transaction.AmountCents))
	}

	return &SettlementOutcome{Transaction: result.Transaction, AlreadySettled: result.AlreadySettled}, nil
}

// failFromWebhook closes a pending entry when the provider reports a
// definitive failure. A row that settled before the failure notification is
// left alone; its money already moved.
func (s *SettlementService) failFromWebhook(ctx context.Context, slug payment.ProviderSlug, reference string) (*SettlementOutcome, error) {
	result, err := s.store.FailPendingByReference(ctx, reference)
	if err != nil {
		if de := new(shared.DomainError); errors.As(err, &de) && de.Code == "NOT_FOUND" {
			return nil, ErrInvalidWebhook
		}
		return nil, err
	}
	if result.AlreadySettled {
		return &SettlementOutcome{Transaction: result.Transaction, AlreadySettled: true}, nil
	}
	s.logger.Info("Top-up failed by provider notification",
		zap.String("provider", slug.String()),
		zap.String("reference", reference))
	return &SettlementOutcome{Transaction: result.Transaction, Failed: true}, nil
}
