package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"go.uber.org/zap"
)

// LedgerService exposes the synchronous money-moving operations: purchases,
// transfers and administrative adjustments. All writes go through the
// LedgerStore so ledger rows and balance increments commit together.
type LedgerService struct {
	store    wallet.LedgerStore
	accounts wallet.AccountRepository
	txRepo   wallet.TransactionRepository
	logger   *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(store wallet.LedgerStore, accounts wallet.AccountRepository, txRepo wallet.TransactionRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{store: store, accounts: accounts, txRepo: txRepo, logger: logger}
}

// PurchaseRequest debits a wallet for a shop sale
type PurchaseRequest struct {
	IssuerID    uuid.UUID
	Target      wallet.AccountRef
	AmountCents int64 // positive price; stored negated as a debit
	ShopID      uuid.UUID
	ProductID   *uuid.UUID
	Quantity    int
	EventID     *uuid.UUID
	Description string
}

// Purchase records a COMPLETED purchase debit against the target wallet
func (s *LedgerService) Purchase(ctx context.Context, req PurchaseRequest) (*wallet.Transaction, error) {
	if req.AmountCents <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Purchase amount must be positive")
	}
	if req.ShopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID is required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	shopID := req.ShopID
	draft := wallet.TransactionDraft{
		Type:        wallet.TransactionTypePurchase,
		Target:      req.Target,
		AmountCents: -req.AmountCents,
		IssuerID:    req.IssuerID,
		ShopID:      &shopID,
		ProductID:   req.ProductID,
		Quantity:    quantity,
		EventID:     req.EventID,
		Description: req.Description,
	}
	tx, err := s.store.Record(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Purchase recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("target", req.Target.String()),
		zap.Int64("amount_cents", tx.AmountCents),
		zap.String("shop_id", req.ShopID.String()))
	return tx, nil
}

// TransferRequest moves money from the issuer's wallet to a receiver
type TransferRequest struct {
	IssuerID    uuid.UUID
	Source      wallet.AccountRef // wallet debited; the issuer's own, or a fams they administer
	Receiver    wallet.AccountRef // wallet credited
	AmountCents int64
	Description string
}

// Transfer writes the two legs of a transfer in one atomic unit: a debit on
// the source and a credit on the receiver, equal magnitude, opposite sign.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (*wallet.Transaction, *wallet.Transaction, error) {
	if req.AmountCents <= 0 {
		return nil, nil, shared.NewDomainError("INVALID_AMOUNT", "Transfer amount must be positive")
	}
	if req.Source == req.Receiver {
		return nil, nil, shared.NewDomainError("INVALID_TRANSFER", "Cannot transfer to the same wallet")
	}
	if req.Source.Source == wallet.WalletSourceFamily {
		if err := s.requireFamsAdmin(ctx, req.Source.ID, req.IssuerID); err != nil {
			return nil, nil, err
		}
	} else if req.Source.ID != req.IssuerID {
		return nil, nil, shared.ErrForbidden
	}

	receiverID := req.Receiver.ID
	debit := wallet.TransactionDraft{
		Type:           wallet.TransactionTypeTransfer,
		Target:         req.Source,
		AmountCents:    -req.AmountCents,
		IssuerID:       req.IssuerID,
		ReceiverUserID: &receiverID,
		Description:    req.Description,
	}
	credit := wallet.TransactionDraft{
		Type:        wallet.TransactionTypeTransfer,
		Target:      req.Receiver,
		AmountCents: req.AmountCents,
		IssuerID:    req.IssuerID,
		Description: req.Description,
	}
	if err := wallet.ValidateTransferPair(&debit, &credit); err != nil {
		return nil, nil, err
	}

	debitTx, creditTx, err := s.store.RecordTransfer(ctx, debit, credit)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("Transfer recorded",
		zap.String("debit_id", debitTx.ID.String()),
		zap.String("credit_id", creditTx.ID.String()),
		zap.String("source", req.Source.String()),
		zap.String("receiver", req.Receiver.String()),
		zap.Int64("amount_cents", req.AmountCents))
	return debitTx, creditTx, nil
}

// AdjustRequest sets a wallet balance by administrative decision
type AdjustRequest struct {
	IssuerID        uuid.UUID
	Target          wallet.AccountRef
	NewBalanceCents int64
	Description     string
}

// Adjust rewrites a balance through the ledger: the delta against the
// current balance is computed under a row lock and applied together with a
// COMPLETED ADJUSTMENT entry. Adjustments may push a balance negative.
func (s *LedgerService) Adjust(ctx context.Context, req AdjustRequest) (*wallet.Transaction, error) {
	tx, err := s.store.Adjust(ctx, req.Target, req.NewBalanceCents, req.IssuerID, req.Description)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Balance adjusted",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("target", req.Target.String()),
		zap.Int64("delta_cents", tx.AmountCents),
		zap.Int64("new_balance_cents", req.NewBalanceCents))
	return tx, nil
}

// Balance is a pure read of the cached balance
func (s *LedgerService) Balance(ctx context.Context, target wallet.AccountRef) (int64, error) {
	return s.accounts.Balance(ctx, target)
}

// Statement lists the ledger entries for one account
func (s *LedgerService) Statement(ctx context.Context, target wallet.AccountRef, filter wallet.TransactionFilter) ([]*wallet.Transaction, int64, error) {
	return s.txRepo.ListByAccount(ctx, target, filter)
}

func (s *LedgerService) requireFamsAdmin(ctx context.Context, famsID, userID uuid.UUID) error {
	fams, err := s.accounts.FindFamsByID(ctx, famsID)
	if err != nil {
		return fmt.Errorf("failed to load fams: %w", err)
	}
	member, admin := fams.MemberOf(userID)
	if !member || !admin {
		return shared.ErrForbidden
	}
	return nil
}
