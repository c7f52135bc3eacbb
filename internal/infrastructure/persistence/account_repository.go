package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"github.com/kasso/backend/internal/infrastructure/persistence/models"
)

// GormAccountRepository implements wallet.AccountRepository using GORM.
// It never writes balances; those belong to the ledger store.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

var _ wallet.AccountRepository = (*GormAccountRepository)(nil)

// CreateUser creates a personal wallet row
func (r *GormAccountRepository) CreateUser(ctx context.Context, account *wallet.UserAccount) error {
	err := r.db.WithContext(ctx).Create(models.UserAccountModelFromDomain(account)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// FindUserByID finds a personal wallet by ID
func (r *GormAccountRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*wallet.UserAccount, error) {
	var model models.UserAccountModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateFams creates a shared wallet with its founding members
func (r *GormAccountRepository) CreateFams(ctx context.Context, fams *wallet.Fams) error {
	return r.db.WithContext(ctx).Create(models.FamsModelFromDomain(fams)).Error
}

// FindFamsByID finds a shared wallet with its members
func (r *GormAccountRepository) FindFamsByID(ctx context.Context, id uuid.UUID) (*wallet.Fams, error) {
	var model models.FamsModel
	if err := r.db.WithContext(ctx).Preload("Members").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveFamsMembers replaces the membership rows of a fams. Balance and name
// columns are left alone.
func (r *GormAccountRepository) SaveFamsMembers(ctx context.Context, fams *wallet.Fams) error {
	return r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Where("fams_id = ?", fams.ID).Delete(&models.FamsMemberModel{}).Error; err != nil {
			return err
		}
		memberModels := make([]models.FamsMemberModel, 0, len(fams.Members))
		for _, m := range fams.Members {
			memberModels = append(memberModels, models.FamsMemberModel{
				FamsID:  m.FamsID,
				UserID:  m.UserID,
				IsAdmin: m.IsAdmin,
			})
		}
		if len(memberModels) == 0 {
			return nil
		}
		return dbtx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&memberModels).Error
	})
}

// Balance reads the cached balance of either account kind
func (r *GormAccountRepository) Balance(ctx context.Context, target wallet.AccountRef) (int64, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}
	var row struct {
		BalanceCents int64
	}
	query := r.db.WithContext(ctx).Select("balance_cents").Where("id = ?", target.ID)
	if target.Source == wallet.WalletSourceFamily {
		query = query.Model(&models.FamsModel{})
	} else {
		query = query.Model(&models.UserAccountModel{})
	}
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, shared.ErrAccountNotFound
		}
		return 0, err
	}
	return row.BalanceCents, nil
}
