package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/infrastructure/persistence/models"
)

// GormMethodRepository implements payment.MethodRepository using GORM
type GormMethodRepository struct {
	db *gorm.DB
}

// NewGormMethodRepository creates a new GormMethodRepository
func NewGormMethodRepository(db *gorm.DB) *GormMethodRepository {
	return &GormMethodRepository{db: db}
}

var _ payment.MethodRepository = (*GormMethodRepository)(nil)

// FindBySlug finds a payment method configuration by provider slug
func (r *GormMethodRepository) FindBySlug(ctx context.Context, slug payment.ProviderSlug) (*payment.Method, error) {
	var model models.PaymentMethodModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListEnabled returns the methods currently open for top-ups
func (r *GormMethodRepository) ListEnabled(ctx context.Context) ([]*payment.Method, error) {
	var methodModels []models.PaymentMethodModel
	if err := r.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("slug ASC").
		Find(&methodModels).Error; err != nil {
		return nil, err
	}
	methods := make([]*payment.Method, len(methodModels))
	for i := range methodModels {
		methods[i] = methodModels[i].ToDomain()
	}
	return methods, nil
}

// Save upserts a payment method configuration row
func (r *GormMethodRepository) Save(ctx context.Context, method *payment.Method) error {
	return r.db.WithContext(ctx).Save(models.PaymentMethodModelFromDomain(method)).Error
}
