package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/shared"
)

var (
	// ErrZeroAmount is returned when a draft carries a zero amount
	ErrZeroAmount = errors.New("ledger: amount cannot be zero")
	// ErrMissingIssuer is returned when a draft has no issuing actor
	ErrMissingIssuer = errors.New("ledger: issuer is required")
	// ErrMissingProviderReference is returned for a provider top-up without reference
	ErrMissingProviderReference = errors.New("ledger: provider reference is required for top-ups")
	// ErrTransactionFinal is returned when mutating a COMPLETED or FAILED transaction
	ErrTransactionFinal = errors.New("ledger: transaction is in a final state")
	// ErrUnbalancedTransfer is returned when transfer halves do not cancel out
	ErrUnbalancedTransfer = errors.New("ledger: transfer legs must have equal magnitude and opposite sign")
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeTopUp      TransactionType = "TOPUP"
	TransactionTypePurchase   TransactionType = "PURCHASE"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeTopUp, TransactionTypePurchase, TransactionTypeTransfer, TransactionTypeAdjustment:
		return true
	default:
		return false
	}
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// TransactionStatus is the settlement state of a ledger entry
type TransactionStatus string

const (
	// TransactionStatusPending means the entry awaits external settlement
	TransactionStatusPending TransactionStatus = "PENDING"
	// TransactionStatusCompleted means the entry is applied to its balance
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	// TransactionStatusFailed means the entry will never be applied
	TransactionStatusFailed TransactionStatus = "FAILED"
)

// IsValid returns true if the status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the status is a terminal sink
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// Transaction is one immutable monetary event in the ledger. AmountCents is
// signed: negative debits the target account, positive credits it. A row is
// mutable only while PENDING; COMPLETED and FAILED are sinks.
type Transaction struct {
	shared.BaseEntity
	Type         TransactionType
	Status       TransactionStatus
	WalletSource WalletSource
	AmountCents  int64
	IssuerID     uuid.UUID
	TargetUserID *uuid.UUID
	FamsID       *uuid.UUID
	// ReceiverUserID is set on the debit leg of a transfer to point at the
	// counterpart account.
	ReceiverUserID *uuid.UUID
	ShopID         *uuid.UUID
	ProductID      *uuid.UUID
	Quantity       int
	EventID        *uuid.UUID
	// ProviderReference is the external payment reference. It is unique
	// across the ledger and is the idempotency key for webhook settlement.
	ProviderReference string
	Description       string
}

// Target returns the account this transaction's amount applies to
func (t *Transaction) Target() AccountRef {
	if t.WalletSource == WalletSourceFamily && t.FamsID != nil {
		return FamsAccount(*t.FamsID)
	}
	if t.TargetUserID != nil {
		return PersonalAccount(*t.TargetUserID)
	}
	return AccountRef{}
}

// Complete transitions PENDING -> COMPLETED
func (t *Transaction) Complete() error {
	if t.Status.IsFinal() {
		return ErrTransactionFinal
	}
	t.Status = TransactionStatusCompleted
	t.Touch()
	return nil
}

// Fail transitions PENDING -> FAILED
func (t *Transaction) Fail() error {
	if t.Status.IsFinal() {
		return ErrTransactionFinal
	}
	t.Status = TransactionStatusFailed
	t.Touch()
	return nil
}

// TransactionDraft is the request to append one ledger entry. The store
// decides the initial status: provider top-ups start PENDING, everything
// else is written COMPLETED with its balance effect in the same unit.
type TransactionDraft struct {
	Type              TransactionType
	Target            AccountRef
	AmountCents       int64
	IssuerID          uuid.UUID
	ReceiverUserID    *uuid.UUID
	ShopID            *uuid.UUID
	ProductID         *uuid.UUID
	Quantity          int
	EventID           *uuid.UUID
	ProviderReference string
	Description       string
}

// Validate checks the draft before it reaches storage
func (d *TransactionDraft) Validate() error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_TRANSACTION_TYPE", fmt.Sprintf("Unknown transaction type %q", d.Type))
	}
	if d.AmountCents == 0 {
		return ErrZeroAmount
	}
	if d.IssuerID == uuid.Nil {
		return ErrMissingIssuer
	}
	if err := d.Target.Validate(); err != nil {
		return err
	}
	if d.Type == TransactionTypeTopUp && d.ProviderReference == "" {
		return ErrMissingProviderReference
	}
	return nil
}

// IsDebit reports whether the draft removes money from its target
func (d *TransactionDraft) IsDebit() bool {
	return d.AmountCents < 0
}

// ToTransaction materializes the draft with the given initial status
func (d *TransactionDraft) ToTransaction(status TransactionStatus) *Transaction {
	tx := &Transaction{
		BaseEntity:        shared.NewBaseEntity(),
		Type:              d.Type,
		Status:            status,
		WalletSource:      d.Target.Source,
		AmountCents:       d.AmountCents,
		IssuerID:          d.IssuerID,
		ReceiverUserID:    d.ReceiverUserID,
		ShopID:            d.ShopID,
		ProductID:         d.ProductID,
		Quantity:          d.Quantity,
		EventID:           d.EventID,
		ProviderReference: d.ProviderReference,
		Description:       d.Description,
	}
	id := d.Target.ID
	if d.Target.Source == WalletSourceFamily {
		tx.FamsID = &id
	} else {
		tx.TargetUserID = &id
	}
	return tx
}

// ValidateTransferPair checks the two legs of a transfer cancel out before
// they are written. Both legs are created together or not at all.
func ValidateTransferPair(debit, credit *TransactionDraft) error {
	if err := debit.Validate(); err != nil {
		return err
	}
	if err := credit.Validate(); err != nil {
		return err
	}
	if debit.Type != TransactionTypeTransfer || credit.Type != TransactionTypeTransfer {
		return shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transfer legs must have type TRANSFER")
	}
	if debit.AmountCents >= 0 || credit.AmountCents <= 0 {
		return ErrUnbalancedTransfer
	}
	if debit.AmountCents+credit.AmountCents != 0 {
		return ErrUnbalancedTransfer
	}
	return nil
}

// TransactionFilter narrows ledger listings
type TransactionFilter struct {
	Type     *TransactionType
	Status   *TransactionStatus
	EventID  *uuid.UUID
	ShopID   *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
