package models

import (
	"github.com/shopspring/decimal"

	"github.com/kasso/backend/internal/domain/payment"
)

// PaymentMethodModel is the persistence model for a payment method
// configuration row
type PaymentMethodModel struct {
	BaseModel
	Slug          payment.ProviderSlug `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName   string               `gorm:"type:varchar(200);not null"`
	IsEnabled     bool                 `gorm:"not null;default:false"`
	FeeFixedCents int64                `gorm:"not null;default:0"`
	FeePercent    decimal.Decimal      `gorm:"type:decimal(8,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain Method
func (m *PaymentMethodModel) ToDomain() *payment.Method {
	return &payment.Method{
		BaseEntity:    m.BaseModel.ToDomain(),
		Slug:          m.Slug,
		DisplayName:   m.DisplayName,
		IsEnabled:     m.IsEnabled,
		FeeFixedCents: m.FeeFixedCents,
		FeePercent:    m.FeePercent,
	}
}

// FromDomain populates the persistence model from a domain Method
func (m *PaymentMethodModel) FromDomain(method *payment.Method) {
	m.FromDomainBaseEntity(method.BaseEntity)
	m.Slug = method.Slug
	m.DisplayName = method.DisplayName
	m.IsEnabled = method.IsEnabled
	m.FeeFixedCents = method.FeeFixedCents
	m.FeePercent = method.FeePercent
}

// PaymentMethodModelFromDomain creates a persistence model from a domain Method
func PaymentMethodModelFromDomain(method *payment.Method) *PaymentMethodModel {
	m := &PaymentMethodModel{}
	m.FromDomain(method)
	return m
}
