package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasso/backend/internal/domain/event"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/infrastructure/persistence/models"
)

// GormEventRepository implements event.Repository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

var _ event.Repository = (*GormEventRepository)(nil)

// Create stores a new event
func (r *GormEventRepository) Create(ctx context.Context, e *event.Event) error {
	return r.db.WithContext(ctx).Create(models.EventModelFromDomain(e)).Error
}

// Save persists the event and its financial rows. Child rows are upserted so
// that appended revenues, expenses and participants land without re-writing
// the whole set.
func (r *GormEventRepository) Save(ctx context.Context, e *event.Event) error {
	model := models.EventModelFromDomain(e)
	return r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Omit("Revenues", "Expenses", "Splits", "Participants").Save(&model).Error; err != nil {
			return err
		}
		if len(model.Revenues) > 0 {
			if err := dbtx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Revenues).Error; err != nil {
				return err
			}
		}
		if len(model.Expenses) > 0 {
			if err := dbtx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Expenses).Error; err != nil {
				return err
			}
		}
		if len(model.Splits) > 0 {
			if err := dbtx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Splits).Error; err != nil {
				return err
			}
		}
		if len(model.Participants) > 0 {
			if err := dbtx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Participants).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds an event with all its financial rows
func (r *GormEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	var model models.EventModel
	if err := r.db.WithContext(ctx).
		Preload("Revenues").
		Preload("Expenses").
		Preload("Splits").
		Preload("Participants").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByShop lists a shop's events, newest first. Archived events are hidden
// unless asked for.
func (r *GormEventRepository) ListByShop(ctx context.Context, shopID uuid.UUID, includeArchived bool) ([]*event.Event, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if !includeArchived {
		query = query.Where("status <> ?", event.EventStatusArchived)
	}

	var eventModels []models.EventModel
	if err := query.Order("created_at DESC").Find(&eventModels).Error; err != nil {
		return nil, err
	}
	events := make([]*event.Event, len(eventModels))
	for i := range eventModels {
		events[i] = eventModels[i].ToDomain()
	}
	return events, nil
}
