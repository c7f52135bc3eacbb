package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"github.com/kasso/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements wallet.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

var _ wallet.TransactionRepository = (*GormTransactionRepository)(nil)

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProviderReference finds the transaction carrying an external payment reference
func (r *GormTransactionRepository) FindByProviderReference(ctx context.Context, reference string) (*wallet.Transaction, error) {
	if reference == "" {
		return nil, shared.ErrNotFound
	}
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).Where("provider_reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByAccount lists the ledger entries of one account, newest first
func (r *GormTransactionRepository) ListByAccount(ctx context.Context, target wallet.AccountRef, filter wallet.TransactionFilter) ([]*wallet.Transaction, int64, error) {
	if err := target.Validate(); err != nil {
		return nil, 0, err
	}

	var total int64
	countQuery := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	countQuery = r.applyFilter(r.scopeAccount(countQuery, target), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	query = r.applyFilter(r.scopeAccount(query, target), filter).Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var transactionModels []models.TransactionModel
	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]*wallet.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = transactionModels[i].ToDomain()
	}
	return transactions, total, nil
}

// SumCompletedByAccount folds COMPLETED amounts for one account. The result
// must always equal the account's cached balance.
func (r *GormTransactionRepository) SumCompletedByAccount(ctx context.Context, target wallet.AccountRef) (int64, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}
	var result struct {
		Total int64
	}
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select("COALESCE(SUM(amount_cents), 0) as total").
		Where("status = ?", wallet.TransactionStatusCompleted)
	query = r.scopeAccount(query, target)
	if err := query.Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// SumPurchasesByEvent folds COMPLETED purchase amounts tagged with an event.
// Purchases are debits, so the sum is negative or zero.
func (r *GormTransactionRepository) SumPurchasesByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select("COALESCE(SUM(amount_cents), 0) as total").
		Where("event_id = ? AND type = ? AND status = ?",
			eventID, wallet.TransactionTypePurchase, wallet.TransactionStatusCompleted).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// scopeAccount narrows a query to one account's entries
func (r *GormTransactionRepository) scopeAccount(query *gorm.DB, target wallet.AccountRef) *gorm.DB {
	if target.Source == wallet.WalletSourceFamily {
		return query.Where("wallet_source = ? AND fams_id = ?", wallet.WalletSourceFamily, target.ID)
	}
	return query.Where("wallet_source = ? AND target_user_id = ?", wallet.WalletSourcePersonal, target.ID)
}

// applyFilter applies filter options to the query
func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter wallet.TransactionFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.ShopID != nil {
		query = query.Where("shop_id = ?", *filter.ShopID)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}
	return query
}
