package payment

import (
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Method is the configuration row for one provider: whether it is open for
// top-ups and what fee figures to preview. It is never consulted for
// settlement math; the credited amount is always the top-up's original
// amount.
type Method struct {
	shared.BaseEntity
	Slug        ProviderSlug
	DisplayName string
	IsEnabled   bool
	// FeeFixedCents is the provider's fixed fee per payment
	FeeFixedCents int64
	// FeePercent is the provider's percentage cut, e.g. 1.5 for 1.5%
	FeePercent decimal.Decimal
}

// NewMethod creates a payment method configuration row
func NewMethod(slug ProviderSlug, displayName string, feeFixedCents int64, feePercent decimal.Decimal) (*Method, error) {
	if !slug.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROVIDER_SLUG", "Unknown payment provider slug")
	}
	if feeFixedCents < 0 || feePercent.IsNegative() || feePercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_FEES", "Fees must be non-negative and percentage below 100")
	}
	return &Method{
		BaseEntity:    shared.NewBaseEntity(),
		Slug:          slug,
		DisplayName:   displayName,
		IsEnabled:     false,
		FeeFixedCents: feeFixedCents,
		FeePercent:    feePercent,
	}, nil
}

// Enable opens the method for top-ups
func (m *Method) Enable() {
	m.IsEnabled = true
	m.Touch()
}

// Disable closes the method for top-ups
func (m *Method) Disable() {
	m.IsEnabled = false
	m.Touch()
}

// PreviewTotalCents returns what the payer is charged so the organization
// receives exactly amountCents net of the provider's cut:
//
//	total = ceil((amount + fixed) / (1 - percent/100))
//
// UI preview only; settlement always credits the original amount.
func (m *Method) PreviewTotalCents(amountCents int64) int64 {
	gross := decimal.NewFromInt(amountCents + m.FeeFixedCents)
	rate := decimal.NewFromInt(1).Sub(m.FeePercent.Div(decimal.NewFromInt(100)))
	if rate.LessThanOrEqual(decimal.Zero) {
		return amountCents
	}
	return gross.Div(rate).Ceil().IntPart()
}

// MethodPreview pairs a method with the previewed payer total for an amount
type MethodPreview struct {
	Method     *Method
	TotalCents int64
}
