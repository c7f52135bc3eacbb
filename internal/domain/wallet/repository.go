package wallet

import (
	"context"

	"github.com/google/uuid"
)

// SettlementResult reports the outcome of settling one pending top-up
type SettlementResult struct {
	Transaction *Transaction
	// AlreadySettled is true when the row was COMPLETED before this call.
	// Redelivered webhooks land here and must be treated as success.
	AlreadySettled bool
}

// LedgerStore is the single write path for money. Every method runs inside
// one storage transaction: ledger rows and balance increments commit together
// or not at all. Balances are mutated only as atomic increments at the
// storage layer, never read-then-written from application memory.
type LedgerStore interface {
	// Record appends one entry. Synchronous types (PURCHASE, TRANSFER,
	// ADJUSTMENT via Adjust, direct credits) are written COMPLETED with
	// their balance effect; a TOPUP draft is written PENDING with no
	// balance effect. Personal and fams debits that would push the balance
	// below zero fail with shared.ErrInsufficientFunds; unknown accounts
	// fail with shared.ErrAccountNotFound.
	Record(ctx context.Context, draft TransactionDraft) (*Transaction, error)

	// RecordTransfer writes both legs of a transfer in one atomic unit.
	RecordTransfer(ctx context.Context, debit, credit TransactionDraft) (*Transaction, *Transaction, error)

	// Adjust sets an account balance to newBalanceCents by computing the
	// delta under a row lock and applying it as an increment, together with
	// a COMPLETED ADJUSTMENT entry. Adjustments may push a balance negative.
	Adjust(ctx context.Context, target AccountRef, newBalanceCents int64, issuerID uuid.UUID, description string) (*Transaction, error)

	// Settle finalizes the PENDING transaction carrying providerReference:
	// it row-locks the entry, and unless it is already COMPLETED, marks it
	// COMPLETED and credits its target in the same unit. A COMPLETED row is
	// a safe no-op (AlreadySettled); a FAILED row is a terminal sink and
	// returns shared.ErrInvalidState.
	Settle(ctx context.Context, providerReference string) (*SettlementResult, error)

	// FailPending marks a PENDING transaction FAILED with no balance effect.
	FailPending(ctx context.Context, id uuid.UUID) error

	// FailPendingByReference closes the PENDING transaction carrying
	// providerReference as FAILED under the same row-lock protocol as
	// Settle. A row that already COMPLETED is left untouched and reported
	// via SettlementResult.AlreadySettled; a row already FAILED is a no-op.
	FailPendingByReference(ctx context.Context, providerReference string) (*SettlementResult, error)
}

// TransactionRepository is the read side of the ledger
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByProviderReference(ctx context.Context, reference string) (*Transaction, error)
	ListByAccount(ctx context.Context, target AccountRef, filter TransactionFilter) ([]*Transaction, int64, error)
	// SumCompletedByAccount folds COMPLETED amounts for one account. It must
	// always equal the cached balance (ledger invariant).
	SumCompletedByAccount(ctx context.Context, target AccountRef) (int64, error)
	// SumPurchasesByEvent folds COMPLETED purchase amounts tagged with an event
	SumPurchasesByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

// AccountRepository manages the balance-bearing account rows
type AccountRepository interface {
	CreateUser(ctx context.Context, account *UserAccount) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*UserAccount, error)
	CreateFams(ctx context.Context, fams *Fams) error
	FindFamsByID(ctx context.Context, id uuid.UUID) (*Fams, error)
	SaveFamsMembers(ctx context.Context, fams *Fams) error
	// Balance is a pure read of the cached balance for either account kind
	Balance(ctx context.Context, target AccountRef) (int64, error)
}
