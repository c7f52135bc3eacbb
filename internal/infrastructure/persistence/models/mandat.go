package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kasso/backend/internal/domain/mandat"
)

// MandatModel is the persistence model for an accounting period
type MandatModel struct {
	BaseModel
	Name                   string            `gorm:"type:varchar(200);not null"`
	Status                 mandat.Status     `gorm:"type:varchar(20);not null;index"`
	StartedAt              time.Time         `gorm:"not null"`
	EndedAt                *time.Time
	InitialStockValueCents int64             `gorm:"not null;default:0"`
	FinalStockValueCents   int64             `gorm:"not null;default:0"`
	FinalBeneficeCents     int64             `gorm:"not null;default:0"`
	Shops                  []MandatShopModel `gorm:"foreignKey:MandatID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (MandatModel) TableName() string {
	return "mandats"
}

// MandatShopModel holds the per-shop figures of a mandat
type MandatShopModel struct {
	ID                     uuid.UUID `gorm:"type:uuid;primary_key"`
	MandatID               uuid.UUID `gorm:"type:uuid;not null;index"`
	ShopID                 uuid.UUID `gorm:"type:uuid;not null;index"`
	InitialStockValueCents int64     `gorm:"not null;default:0"`
	FinalStockValueCents   int64     `gorm:"not null;default:0"`
	SalesCents             int64     `gorm:"not null;default:0"`
	ExpensesCents          int64     `gorm:"not null;default:0"`
	BeneficeCents          int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (MandatShopModel) TableName() string {
	return "mandat_shops"
}

// ToDomain converts the persistence model to a domain Mandat
func (m *MandatModel) ToDomain() *mandat.Mandat {
	d := &mandat.Mandat{
		BaseEntity:             m.BaseModel.ToDomain(),
		Name:                   m.Name,
		Status:                 m.Status,
		StartedAt:              m.StartedAt,
		EndedAt:                m.EndedAt,
		InitialStockValueCents: m.InitialStockValueCents,
		FinalStockValueCents:   m.FinalStockValueCents,
		FinalBeneficeCents:     m.FinalBeneficeCents,
	}
	for _, s := range m.Shops {
		d.Shops = append(d.Shops, mandat.Shop{
			ID:                     s.ID,
			MandatID:               s.MandatID,
			ShopID:                 s.ShopID,
			InitialStockValueCents: s.InitialStockValueCents,
			FinalStockValueCents:   s.FinalStockValueCents,
			SalesCents:             s.SalesCents,
			ExpensesCents:          s.ExpensesCents,
			BeneficeCents:          s.BeneficeCents,
		})
	}
	return d
}

// FromDomain populates the persistence model from a domain Mandat
func (m *MandatModel) FromDomain(d *mandat.Mandat) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.Name = d.Name
	m.Status = d.Status
	m.StartedAt = d.StartedAt
	m.EndedAt = d.EndedAt
	m.InitialStockValueCents = d.InitialStockValueCents
	m.FinalStockValueCents = d.FinalStockValueCents
	m.FinalBeneficeCents = d.FinalBeneficeCents
	m.Shops = m.Shops[:0]
	for _, s := range d.Shops {
		m.Shops = append(m.Shops, MandatShopModel{
			ID:                     s.ID,
			MandatID:               s.MandatID,
			ShopID:                 s.ShopID,
			InitialStockValueCents: s.InitialStockValueCents,
			FinalStockValueCents:   s.FinalStockValueCents,
			SalesCents:             s.SalesCents,
			ExpensesCents:          s.ExpensesCents,
			BeneficeCents:          s.BeneficeCents,
		})
	}
}

// MandatModelFromDomain creates a persistence model from a domain Mandat
func MandatModelFromDomain(d *mandat.Mandat) *MandatModel {
	m := &MandatModel{}
	m.FromDomain(d)
	return m
}
