package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/event"
	"github.com/kasso/backend/internal/domain/wallet"
	"go.uber.org/zap"
)

// EventReport is the profit/loss view of one event, folded from the ledger
// and the event's own revenue/expense rows.
type EventReport struct {
	EventID              uuid.UUID         `json:"event_id"`
	Type                 event.EventType   `json:"type"`
	Status               event.EventStatus `json:"status"`
	ManualRevenueCents   int64             `json:"manual_revenue_cents"`
	PurchaseRevenueCents int64             `json:"purchase_revenue_cents"`
	RevenueCents         int64             `json:"revenue_cents"`
	ExpenseCents         int64             `json:"expense_cents"`
	ProfitCents          int64             `json:"profit_cents"`
	// Acompte figures are zero until the event closes with a deposit set.
	// The balance reconciles collected deposits against spend; it sits
	// beside profit rather than inside it, deposits being participant
	// money to return, not shop revenue.
	AcompteCollectedCents int64 `json:"acompte_collected_cents"`
	AcompteBalanceCents   int64 `json:"acompte_balance_cents"`
}

// EventReportService computes event profit/loss. It is strictly read-only:
// it folds COMPLETED ledger entries and never mutates anything.
type EventReportService struct {
	events event.Repository
	txRepo wallet.TransactionRepository
	logger *zap.Logger
}

// NewEventReportService creates a new EventReportService
func NewEventReportService(events event.Repository, txRepo wallet.TransactionRepository, logger *zap.Logger) *EventReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventReportService{events: events, txRepo: txRepo, logger: logger}
}

// Report computes the profit/loss figures for one event.
//
// Purchases are stored as negative amounts, so their sum is negated to count
// as positive revenue. SHARED_COST and COMMERCIAL events intentionally share
// this computation.
func (s *EventReportService) Report(ctx context.Context, eventID uuid.UUID) (*EventReport, error) {
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	purchaseSum, err := s.txRepo.SumPurchasesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	manual := e.ManualRevenueCents()
	purchases := -purchaseSum
	expenses := e.ExpenseCents()
	revenue := manual + purchases

	return &EventReport{
		EventID:               e.ID,
		Type:                  e.Type,
		Status:                e.Status,
		ManualRevenueCents:    manual,
		PurchaseRevenueCents:  purchases,
		RevenueCents:          revenue,
		ExpenseCents:          expenses,
		ProfitCents:           revenue - expenses,
		AcompteCollectedCents: e.AcompteCollectedCents,
		AcompteBalanceCents:   e.AcompteBalanceCents(),
	}, nil
}
