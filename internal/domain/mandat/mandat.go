package mandat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/shared"
)

// Status is the lifecycle state of a mandat (accounting period)
type Status string

const (
	// StatusActive is the running period; only initial stock is known
	StatusActive Status = "ACTIVE"
	// StatusCompleted is the finalized period; all figures immutable
	StatusCompleted Status = "COMPLETED"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusCompleted
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Shop holds the per-shop figures of a mandat. Final fields stay zero until
// the mandat is finalized.
type Shop struct {
	ID                     uuid.UUID
	MandatID               uuid.UUID
	ShopID                 uuid.UUID
	InitialStockValueCents int64
	FinalStockValueCents   int64
	SalesCents             int64
	ExpensesCents          int64
	BeneficeCents          int64
}

// ShopClosing carries the figures reported for one shop at period end
type ShopClosing struct {
	ShopID               uuid.UUID
	FinalStockValueCents int64
	SalesCents           int64
	ExpensesCents        int64
}

// Mandat is a fixed accounting period over a set of shops. It is created
// ACTIVE with only initial stock values known and finalized exactly once, at
// which point final stock and benefice figures become immutable inputs to
// the next mandat's initial stock.
type Mandat struct {
	shared.BaseEntity
	Name                   string
	Status                 Status
	StartedAt              time.Time
	EndedAt                *time.Time
	InitialStockValueCents int64
	FinalStockValueCents   int64
	FinalBeneficeCents     int64
	Shops                  []Shop
}

// NewMandat opens a period over the given shops with their initial stock values
func NewMandat(name string, initialStockByShop map[uuid.UUID]int64) (*Mandat, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_MANDAT_NAME", "Mandat name cannot be empty")
	}
	if len(initialStockByShop) == 0 {
		return nil, shared.NewDomainError("INVALID_MANDAT_SHOPS", "A mandat needs at least one shop")
	}
	m := &Mandat{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Status:     StatusActive,
		StartedAt:  time.Now(),
	}
	for shopID, stock := range initialStockByShop {
		if stock < 0 {
			return nil, shared.NewDomainError("INVALID_STOCK_VALUE", "Initial stock value cannot be negative")
		}
		m.Shops = append(m.Shops, Shop{
			ID:                     uuid.New(),
			MandatID:               m.ID,
			ShopID:                 shopID,
			InitialStockValueCents: stock,
		})
		m.InitialStockValueCents += stock
	}
	return m, nil
}

// Finalize closes the period once. Per shop, benefice = sales - expenses;
// the global benefice is the sum over shops. Calling Finalize on a
// COMPLETED mandat is rejected.
func (m *Mandat) Finalize(closings []ShopClosing) error {
	if m.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize mandat in %s status", m.Status))
	}
	byShop := make(map[uuid.UUID]ShopClosing, len(closings))
	for _, c := range closings {
		if c.FinalStockValueCents < 0 {
			return shared.NewDomainError("INVALID_STOCK_VALUE", "Final stock value cannot be negative")
		}
		byShop[c.ShopID] = c
	}
	for i := range m.Shops {
		c, ok := byShop[m.Shops[i].ShopID]
		if !ok {
			return shared.NewDomainError("MISSING_SHOP_CLOSING", fmt.Sprintf("No closing figures for shop %s", m.Shops[i].ShopID))
		}
		m.Shops[i].FinalStockValueCents = c.FinalStockValueCents
		m.Shops[i].SalesCents = c.SalesCents
		m.Shops[i].ExpensesCents = c.ExpensesCents
		m.Shops[i].BeneficeCents = c.SalesCents - c.ExpensesCents
		m.FinalStockValueCents += c.FinalStockValueCents
		m.FinalBeneficeCents += m.Shops[i].BeneficeCents
	}
	now := time.Now()
	m.Status = StatusCompleted
	m.EndedAt = &now
	m.Touch()
	return nil
}

// InitialStockForNext maps each shop to the stock value a successor mandat
// starts from. Only a COMPLETED mandat can seed a successor.
func (m *Mandat) InitialStockForNext() (map[uuid.UUID]int64, error) {
	if m.Status != StatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only a completed mandat can seed the next period")
	}
	next := make(map[uuid.UUID]int64, len(m.Shops))
	for _, s := range m.Shops {
		next[s.ShopID] = s.FinalStockValueCents
	}
	return next, nil
}
