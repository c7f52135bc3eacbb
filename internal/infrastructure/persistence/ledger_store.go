package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"github.com/kasso/backend/internal/infrastructure/persistence/models"
)

// GormLedgerStore implements wallet.LedgerStore using GORM. Every public
// method runs inside one database transaction: the ledger row and its balance
// increment commit together or not at all. Balances are only ever mutated as
// SQL increments; the store never writes a balance computed in Go.
type GormLedgerStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormLedgerStore creates a new GormLedgerStore
func NewGormLedgerStore(db *gorm.DB, logger *zap.Logger) *GormLedgerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormLedgerStore{db: db, logger: logger}
}

var _ wallet.LedgerStore = (*GormLedgerStore)(nil)

// Record appends one ledger entry. Provider top-ups are written PENDING and
// touch no balance; everything else is written COMPLETED with its balance
// effect in the same transaction.
func (s *GormLedgerStore) Record(ctx context.Context, draft wallet.TransactionDraft) (*wallet.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	status := wallet.TransactionStatusCompleted
	if draft.Type == wallet.TransactionTypeTopUp {
		status = wallet.TransactionStatusPending
	}
	tx := draft.ToTransaction(status)

	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(models.TransactionModelFromDomain(tx)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		if status != wallet.TransactionStatusCompleted {
			return nil
		}
		// Adjustments may push a balance negative; every other debit is
		// guarded against overdraft.
		guarded := draft.AmountCents < 0 && draft.Type != wallet.TransactionTypeAdjustment
		return s.increment(dbtx, draft.Target, draft.AmountCents, guarded)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// RecordTransfer writes both legs of a transfer atomically: the debit leg is
// guarded against overdraft, the credit leg cannot fail once the debit held.
func (s *GormLedgerStore) RecordTransfer(ctx context.Context, debit, credit wallet.TransactionDraft) (*wallet.Transaction, *wallet.Transaction, error) {
	if err := wallet.ValidateTransferPair(&debit, &credit); err != nil {
		return nil, nil, err
	}

	debitTx := debit.ToTransaction(wallet.TransactionStatusCompleted)
	creditTx := credit.ToTransaction(wallet.TransactionStatusCompleted)

	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(models.TransactionModelFromDomain(debitTx)).Error; err != nil {
			return err
		}
		if err := dbtx.Create(models.TransactionModelFromDomain(creditTx)).Error; err != nil {
			return err
		}
		if err := s.increment(dbtx, debit.Target, debit.AmountCents, true); err != nil {
			return err
		}
		return s.increment(dbtx, credit.Target, credit.AmountCents, false)
	})
	if err != nil {
		return nil, nil, err
	}
	return debitTx, creditTx, nil
}

// Adjust sets an account balance to newBalanceCents. The delta is computed
// under a row lock on the account so a concurrent settlement cannot slip in
// between the read and the increment.
func (s *GormLedgerStore) Adjust(ctx context.Context, target wallet.AccountRef, newBalanceCents int64, issuerID uuid.UUID, description string) (*wallet.Transaction, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if issuerID == uuid.Nil {
		return nil, wallet.ErrMissingIssuer
	}

	var tx *wallet.Transaction
	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		current, err := s.lockedBalance(dbtx, target)
		if err != nil {
			return err
		}
		delta := newBalanceCents - current
		if delta == 0 {
			return wallet.ErrZeroAmount
		}

		draft := wallet.TransactionDraft{
			Type:        wallet.TransactionTypeAdjustment,
			Target:      target,
			AmountCents: delta,
			IssuerID:    issuerID,
			Description: description,
		}
		if err := draft.Validate(); err != nil {
			return err
		}
		tx = draft.ToTransaction(wallet.TransactionStatusCompleted)
		if err := dbtx.Create(models.TransactionModelFromDomain(tx)).Error; err != nil {
			return err
		}
		return s.increment(dbtx, target, delta, false)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Settle finalizes the PENDING top-up carrying providerReference. The row
// lock on the transaction makes concurrent deliveries of the same webhook
// serialize; whichever lands second sees COMPLETED and reports AlreadySettled.
func (s *GormLedgerStore) Settle(ctx context.Context, providerReference string) (*wallet.SettlementResult, error) {
	var result *wallet.SettlementResult
	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		model, err := s.lockByReference(dbtx, providerReference)
		if err != nil {
			return err
		}

		switch model.Status {
		case wallet.TransactionStatusCompleted:
			result = &wallet.SettlementResult{Transaction: model.ToDomain(), AlreadySettled: true}
			return nil
		case wallet.TransactionStatusFailed:
			return shared.ErrInvalidState
		}

		tx := model.ToDomain()
		if err := tx.Complete(); err != nil {
			return err
		}
		if err := dbtx.Model(&models.TransactionModel{}).
			Where("id = ?", tx.ID).
			Updates(map[string]any{"status": tx.Status, "updated_at": tx.UpdatedAt}).Error; err != nil {
			return err
		}
		if err := s.increment(dbtx, tx.Target(), tx.AmountCents, false); err != nil {
			return err
		}
		result = &wallet.SettlementResult{Transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FailPending marks a PENDING transaction FAILED. No balance effect.
func (s *GormLedgerStore) FailPending(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		var model models.TransactionModel
		if err := s.locked(dbtx).Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if model.Status == wallet.TransactionStatusFailed {
			return nil
		}
		if model.Status == wallet.TransactionStatusCompleted {
			return shared.ErrInvalidState
		}

		tx := model.ToDomain()
		if err := tx.Fail(); err != nil {
			return err
		}
		return dbtx.Model(&models.TransactionModel{}).
			Where("id = ?", tx.ID).
			Updates(map[string]any{"status": tx.Status, "updated_at": tx.UpdatedAt}).Error
	})
}

// FailPendingByReference closes the PENDING transaction carrying
// providerReference as FAILED. A row that settled first is reported as
// AlreadySettled and left untouched; its money already moved.
func (s *GormLedgerStore) FailPendingByReference(ctx context.Context, providerReference string) (*wallet.SettlementResult, error) {
	var result *wallet.SettlementResult
	err := s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		model, err := s.lockByReference(dbtx, providerReference)
		if err != nil {
			return err
		}

		switch model.Status {
		case wallet.TransactionStatusCompleted:
			result = &wallet.SettlementResult{Transaction: model.ToDomain(), AlreadySettled: true}
			return nil
		case wallet.TransactionStatusFailed:
			result = &wallet.SettlementResult{Transaction: model.ToDomain()}
			return nil
		}

		tx := model.ToDomain()
		if err := tx.Fail(); err != nil {
			return err
		}
		if err := dbtx.Model(&models.TransactionModel{}).
			Where("id = ?", tx.ID).
			Updates(map[string]any{"status": tx.Status, "updated_at": tx.UpdatedAt}).Error; err != nil {
			return err
		}
		result = &wallet.SettlementResult{Transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// increment applies one balance delta as a SQL increment. When guarded, the
// WHERE clause rejects any update that would leave the balance negative; zero
// affected rows then means either a missing account or insufficient funds.
func (s *GormLedgerStore) increment(dbtx *gorm.DB, target wallet.AccountRef, deltaCents int64, guarded bool) error {
	query := dbtx.Model(accountModel(target)).Where("id = ?", target.ID)
	if guarded {
		query = query.Where("balance_cents + ? >= 0", deltaCents)
	}
	res := query.Update("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if !guarded {
			return shared.ErrAccountNotFound
		}
		var count int64
		if err := dbtx.Model(accountModel(target)).Where("id = ?", target.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrAccountNotFound
		}
		return shared.ErrInsufficientFunds
	}
	return nil
}

// lockedBalance reads an account balance under a row lock
func (s *GormLedgerStore) lockedBalance(dbtx *gorm.DB, target wallet.AccountRef) (int64, error) {
	var row struct {
		BalanceCents int64
	}
	err := s.locked(dbtx).Model(accountModel(target)).
		Select("balance_cents").
		Where("id = ?", target.ID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, shared.ErrAccountNotFound
		}
		return 0, err
	}
	return row.BalanceCents, nil
}

// lockByReference loads the transaction row for a provider reference under a
// row lock
func (s *GormLedgerStore) lockByReference(dbtx *gorm.DB, providerReference string) (*models.TransactionModel, error) {
	if providerReference == "" {
		return nil, shared.ErrNotFound
	}
	var model models.TransactionModel
	if err := s.locked(dbtx).Where("provider_reference = ?", providerReference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &model, nil
}

// locked adds FOR UPDATE on Postgres. SQLite serializes writing transactions
// on its own and rejects the clause.
func (s *GormLedgerStore) locked(dbtx *gorm.DB) *gorm.DB {
	if dbtx.Dialector.Name() == "postgres" {
		return dbtx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return dbtx
}

// accountModel maps an account reference to its persistence model
func accountModel(target wallet.AccountRef) any {
	if target.Source == wallet.WalletSourceFamily {
		return &models.FamsModel{}
	}
	return &models.UserAccountModel{}
}
