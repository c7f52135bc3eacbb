package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"go.uber.org/zap"
)

// DefaultProviderTimeout bounds outbound provider calls so a top-up can
// never hang in PENDING behind a stuck HTTP request.
const DefaultProviderTimeout = 10 * time.Second

// TopUpService initiates provider-settled wallet credits. It creates the
// PENDING ledger entry, opens the external payment session and hands the
// redirect URL back to the caller. Settlement happens later through the
// webhook path.
type TopUpService struct {
	store           wallet.LedgerStore
	accounts        wallet.AccountRepository
	registry        payment.Registry
	providerTimeout time.Duration
	logger          *zap.Logger
}

// NewTopUpService creates a new TopUpService
func NewTopUpService(store wallet.LedgerStore, accounts wallet.AccountRepository, registry payment.Registry, logger *zap.Logger) *TopUpService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopUpService{
		store:           store,
		accounts:        accounts,
		registry:        registry,
		providerTimeout: DefaultProviderTimeout,
		logger:          logger,
	}
}

// WithProviderTimeout overrides the outbound call timeout
func (s *TopUpService) WithProviderTimeout(d time.Duration) *TopUpService {
	if d > 0 {
		s.providerTimeout = d
	}
	return s
}

// TopUpRequest asks for a provider-settled credit of the actor's wallet
type TopUpRequest struct {
	ActorID     uuid.UUID
	Provider    payment.ProviderSlug
	AmountCents int64
	Description string
}

// TopUpResult carries the redirect target and the pending ledger entry
type TopUpResult struct {
	Transaction *wallet.Transaction
	RedirectURL string
	PaymentID   string
}

// InitiateTopUp creates the PENDING TOPUP entry and opens the external
// payment session. If the provider call definitively fails or times out the
// entry is marked FAILED before the error surfaces; a retried top-up always
// creates a new transaction.
func (s *TopUpService) InitiateTopUp(ctx context.Context, req TopUpRequest) (*TopUpResult, error) {
	if req.AmountCents <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Top-up amount must be positive")
	}

	provider, err := s.registry.Resolve(ctx, req.Provider)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.FindUserByID(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	draft := wallet.TransactionDraft{
		Type:              wallet.TransactionTypeTopUp,
		Target:            wallet.PersonalAccount(user.ID),
		AmountCents:       req.AmountCents,
		IssuerID:          user.ID,
		ProviderReference: reference,
		Description:       req.Description,
	}
	tx, err := s.store.Record(ctx, draft)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	resp, err := provider.CreatePayment(callCtx, &payment.CreatePaymentRequest{
		AmountCents: req.AmountCents,
		PayerEmail:  user.Email,
		Description: req.Description,
		ReferenceID: reference,
	})
	if err != nil {
		// The session never opened, so no webhook will ever arrive for this
		// reference. Close the entry rather than leaving it PENDING forever.
		if failErr := s.store.FailPending(ctx, tx.ID); failErr != nil {
			s.logger.Error("Failed to mark aborted top-up as FAILED",
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(failErr))
		}
		s.logger.Warn("Provider payment creation failed",
			zap.String("provider", req.Provider.String()),
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
		}
		return nil, err
	}

	s.logger.Info("Top-up initiated",
		zap.String("provider", req.Provider.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("provider_payment_id", resp.PaymentID),
		zap.Int64("amount_cents", req.AmountCents))

	return &TopUpResult{Transaction: tx, RedirectURL: resp.RedirectURL, PaymentID: resp.PaymentID}, nil
}

// ListMethods returns the enabled payment methods with a previewed payer
// total for the given amount. Preview only; settlement always credits the
// original amount.
func (s *TopUpService) ListMethods(ctx context.Context, amountCents int64) ([]payment.MethodPreview, error) {
	methods, err := s.registry.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	previews := make([]payment.MethodPreview, 0, len(methods))
	for _, m := range methods {
		preview := payment.MethodPreview{Method: m}
		if amountCents > 0 {
			preview.TotalCents = m.PreviewTotalCents(amountCents)
		}
		previews = append(previews, preview)
	}
	return previews, nil
}
