package mandat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/mandat"
	"github.com/kasso/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MandatService manages accounting periods. A new period can start from the
// final stock of the previous COMPLETED one; finalization happens once.
type MandatService struct {
	mandats mandat.Repository
	logger  *zap.Logger
}

// NewMandatService creates a new MandatService
func NewMandatService(mandats mandat.Repository, logger *zap.Logger) *MandatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MandatService{mandats: mandats, logger: logger}
}

// Open starts a new ACTIVE mandat. Only one mandat may be active at a time.
func (s *MandatService) Open(ctx context.Context, name string, initialStockByShop map[uuid.UUID]int64) (*mandat.Mandat, error) {
	if active, err := s.mandats.FindActive(ctx); err == nil && active != nil {
		return nil, shared.NewDomainError("MANDAT_ALREADY_ACTIVE", fmt.Sprintf("Mandat %q is still active", active.Name))
	}
	m, err := mandat.NewMandat(name, initialStockByShop)
	if err != nil {
		return nil, err
	}
	if err := s.mandats.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create mandat: %w", err)
	}
	s.logger.Info("Mandat opened",
		zap.String("mandat_id", m.ID.String()),
		zap.String("name", m.Name),
		zap.Int64("initial_stock_cents", m.InitialStockValueCents))
	return m, nil
}

// OpenFromPrevious starts a new mandat seeded with the previous period's
// final stock values.
func (s *MandatService) OpenFromPrevious(ctx context.Context, name string, previousID uuid.UUID) (*mandat.Mandat, error) {
	prev, err := s.mandats.FindByID(ctx, previousID)
	if err != nil {
		return nil, err
	}
	seed, err := prev.InitialStockForNext()
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, name, seed)
}

// Finalize closes a period with the reported per-shop figures
func (s *MandatService) Finalize(ctx context.Context, id uuid.UUID, closings []mandat.ShopClosing) (*mandat.Mandat, error) {
	m, err := s.mandats.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.Finalize(closings); err != nil {
		return nil, err
	}
	if err := s.mandats.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save mandat: %w", err)
	}
	s.logger.Info("Mandat finalized",
		zap.String("mandat_id", m.ID.String()),
		zap.Int64("final_stock_cents", m.FinalStockValueCents),
		zap.Int64("final_benefice_cents", m.FinalBeneficeCents))
	return m, nil
}

// Get loads one mandat
func (s *MandatService) Get(ctx context.Context, id uuid.UUID) (*mandat.Mandat, error) {
	return s.mandats.FindByID(ctx, id)
}

// List returns all mandats
func (s *MandatService) List(ctx context.Context) ([]*mandat.Mandat, error) {
	return s.mandats.List(ctx)
}
