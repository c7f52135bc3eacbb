package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasso/backend/internal/domain/mandat"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/infrastructure/persistence/models"
)

// GormMandatRepository implements mandat.Repository using GORM
type GormMandatRepository struct {
	db *gorm.DB
}

// NewGormMandatRepository creates a new GormMandatRepository
func NewGormMandatRepository(db *gorm.DB) *GormMandatRepository {
	return &GormMandatRepository{db: db}
}

var _ mandat.Repository = (*GormMandatRepository)(nil)

// Create stores a new mandat with its shop rows
func (r *GormMandatRepository) Create(ctx context.Context, m *mandat.Mandat) error {
	return r.db.WithContext(ctx).Create(models.MandatModelFromDomain(m)).Error
}

// Save persists the mandat and its shop figures
func (r *GormMandatRepository) Save(ctx context.Context, m *mandat.Mandat) error {
	model := models.MandatModelFromDomain(m)
	return r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Omit("Shops").Save(&model).Error; err != nil {
			return err
		}
		if len(model.Shops) == 0 {
			return nil
		}
		return dbtx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.Shops).Error
	})
}

// FindByID finds a mandat with its shop rows
func (r *GormMandatRepository) FindByID(ctx context.Context, id uuid.UUID) (*mandat.Mandat, error) {
	var model models.MandatModel
	if err := r.db.WithContext(ctx).Preload("Shops").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns the currently ACTIVE mandat, or shared.ErrNotFound
func (r *GormMandatRepository) FindActive(ctx context.Context) (*mandat.Mandat, error) {
	var model models.MandatModel
	if err := r.db.WithContext(ctx).Preload("Shops").
		Where("status = ?", mandat.StatusActive).
		Order("started_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all mandats, newest first
func (r *GormMandatRepository) List(ctx context.Context) ([]*mandat.Mandat, error) {
	var mandatModels []models.MandatModel
	if err := r.db.WithContext(ctx).Preload("Shops").
		Order("started_at DESC").
		Find(&mandatModels).Error; err != nil {
		return nil, err
	}
	mandats := make([]*mandat.Mandat, len(mandatModels))
	for i := range mandatModels {
		mandats[i] = mandatModels[i].ToDomain()
	}
	return mandats, nil
}
