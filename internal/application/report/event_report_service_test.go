package report

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/domain/event"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
)

// stubEventRepository serves fixed events
type stubEventRepository struct {
	events map[uuid.UUID]*event.Event
}

func (s *stubEventRepository) Create(ctx context.Context, e *event.Event) error {
	s.events[e.ID] = e
	return nil
}

func (s *stubEventRepository) Save(ctx context.Context, e *event.Event) error {
	s.events[e.ID] = e
	return nil
}

func (s *stubEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	if e, ok := s.events[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubEventRepository) ListByShop(ctx context.Context, shopID uuid.UUID, includeArchived bool) ([]*event.Event, error) {
	var out []*event.Event
	for _, e := range s.events {
		if e.ShopID == shopID {
			out = append(out, e)
		}
	}
	return out, nil
}

// stubTransactionReader folds canned ledger sums
type stubTransactionReader struct {
	purchasesByEvent map[uuid.UUID]int64
}

func (s *stubTransactionReader) FindByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	return nil, shared.ErrNotFound
}

func (s *stubTransactionReader) FindByProviderReference(ctx context.Context, reference string) (*wallet.Transaction, error) {
	return nil, shared.ErrNotFound
}

func (s *stubTransactionReader) ListByAccount(ctx context.Context, target wallet.AccountRef, filter wallet.TransactionFilter) ([]*wallet.Transaction, int64, error) {
	return nil, 0, nil
}

func (s *stubTransactionReader) SumCompletedByAccount(ctx context.Context, target wallet.AccountRef) (int64, error) {
	return 0, nil
}

func (s *stubTransactionReader) SumPurchasesByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	return s.purchasesByEvent[eventID], nil
}

func TestEventReportService_Report(t *testing.T) {
	ctx := context.Background()
	repo := &stubEventRepository{events: map[uuid.UUID]*event.Event{}}

	e, err := event.NewEvent(uuid.New(), "Soirée jazz", event.EventTypeCommercial, 0)
	require.NoError(t, err)
	require.NoError(t, e.AddRevenue("Billetterie", 900))
	require.NoError(t, e.AddExpense("Location sono", 1200))
	require.NoError(t, e.AddSplit("Courses", 600, nil))
	repo.events[e.ID] = e

	// Wallet purchases for this event: stored negative, folded as revenue
	reader := &stubTransactionReader{purchasesByEvent: map[uuid.UUID]int64{e.ID: -1600}}
	svc := NewEventReportService(repo, reader, nil)

	t.Run("folds manual revenue, purchases and expenses", func(t *testing.T) {
		r, err := svc.Report(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(900), r.ManualRevenueCents)
		assert.Equal(t, int64(1600), r.PurchaseRevenueCents)
		assert.Equal(t, int64(2500), r.RevenueCents)
		assert.Equal(t, int64(1800), r.ExpenseCents)
		assert.Equal(t, int64(700), r.ProfitCents)
	})

	t.Run("shared-cost events use the same computation", func(t *testing.T) {
		sc, err := event.NewEvent(uuid.New(), "Week-end ski", event.EventTypeSharedCost, 5000)
		require.NoError(t, err)
		require.NoError(t, sc.AddExpense("Location chalet", 40000))
		repo.events[sc.ID] = sc

		r, err := svc.Report(ctx, sc.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(-40000), r.ProfitCents)
		assert.Zero(t, r.AcompteCollectedCents)
	})

	t.Run("closed acompte event reports the deposit reconciliation", func(t *testing.T) {
		sc, err := event.NewEvent(uuid.New(), "Week-end rando", event.EventTypeSharedCost, 5000)
		require.NoError(t, err)
		require.NoError(t, sc.Activate())
		for i := 0; i < 4; i++ {
			require.NoError(t, sc.Join(uuid.New()))
		}
		require.NoError(t, sc.AddExpense("Refuge", 18000))
		require.NoError(t, sc.Close())
		repo.events[sc.ID] = sc

		r, err := svc.Report(ctx, sc.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), r.AcompteCollectedCents)
		assert.Equal(t, int64(2000), r.AcompteBalanceCents)
	})

	t.Run("unknown event propagates not found", func(t *testing.T) {
		_, err := svc.Report(ctx, uuid.New())
		assert.Error(t, err)
	})
}
