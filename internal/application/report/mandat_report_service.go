package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/mandat"
	"github.com/kasso/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MandatShopReport is the per-shop slice of a mandat report
type MandatShopReport struct {
	ShopID                 uuid.UUID `json:"shop_id"`
	InitialStockValueCents int64     `json:"initial_stock_value_cents"`
	FinalStockValueCents   int64     `json:"final_stock_value_cents"`
	SalesCents             int64     `json:"sales_cents"`
	ExpensesCents          int64     `json:"expenses_cents"`
	BeneficeCents          int64     `json:"benefice_cents"`
}

// MandatReport is the stock/benefice view of one finalized mandat
type MandatReport struct {
	MandatID               uuid.UUID          `json:"mandat_id"`
	Name                   string             `json:"name"`
	InitialStockValueCents int64              `json:"initial_stock_value_cents"`
	FinalStockValueCents   int64              `json:"final_stock_value_cents"`
	FinalBeneficeCents     int64              `json:"final_benefice_cents"`
	Shops                  []MandatShopReport `json:"shops"`
}

// MandatReportService reads the benefice figures of finalized mandats.
// Figures only exist once a mandat is COMPLETED; an ACTIVE mandat has no
// report yet.
type MandatReportService struct {
	mandats mandat.Repository
	logger  *zap.Logger
}

// NewMandatReportService creates a new MandatReportService
func NewMandatReportService(mandats mandat.Repository, logger *zap.Logger) *MandatReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MandatReportService{mandats: mandats, logger: logger}
}

// Report returns the stock benefice figures of a COMPLETED mandat
func (s *MandatReportService) Report(ctx context.Context, mandatID uuid.UUID) (*MandatReport, error) {
	m, err := s.mandats.FindByID(ctx, mandatID)
	if err != nil {
		return nil, err
	}
	if m.Status != mandat.StatusCompleted {
		return nil, shared.NewDomainError("MANDAT_NOT_FINALIZED", "Benefice is only computable once the mandat is finalized")
	}

	report := &MandatReport{
		MandatID:               m.ID,
		Name:                   m.Name,
		InitialStockValueCents: m.InitialStockValueCents,
		FinalStockValueCents:   m.FinalStockValueCents,
		FinalBeneficeCents:     m.FinalBeneficeCents,
	}
	for _, s := range m.Shops {
		report.Shops = append(report.Shops, MandatShopReport{
			ShopID:                 s.ShopID,
			InitialStockValueCents: s.InitialStockValueCents,
			FinalStockValueCents:   s.FinalStockValueCents,
			SalesCents:             s.SalesCents,
			ExpensesCents:          s.ExpensesCents,
			BeneficeCents:          s.BeneficeCents,
		})
	}
	return report, nil
}
