package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/shared"
)

// EventType distinguishes how an event's money flows are interpreted
type EventType string

const (
	// EventTypeCommercial is a sale-driven event (bar night, merch drop)
	EventTypeCommercial EventType = "COMMERCIAL"
	// EventTypeSharedCost is a cost-splitting event funded by acomptes
	EventTypeSharedCost EventType = "SHARED_COST"
)

// IsValid returns true if the event type is valid
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeCommercial, EventTypeSharedCost:
		return true
	default:
		return false
	}
}

// String returns the string representation of EventType
func (t EventType) String() string {
	return string(t)
}

// EventStatus is the lifecycle state of an event. Transitions are
// one-directional: DRAFT -> OPEN -> CLOSED -> ARCHIVED, no re-opening.
type EventStatus string

const (
	EventStatusDraft    EventStatus = "DRAFT"
	EventStatusOpen     EventStatus = "OPEN"
	EventStatusClosed   EventStatus = "CLOSED"
	EventStatusArchived EventStatus = "ARCHIVED"
)

// IsValid returns true if the status is valid
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusOpen, EventStatusClosed, EventStatusArchived:
		return true
	default:
		return false
	}
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// Revenue is one manual revenue entry attached to an event
type Revenue struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Label       string
	AmountCents int64
	CreatedAt   time.Time
}

// Expense is one direct shop expense attached to an event
type Expense struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Label       string
	AmountCents int64
	CreatedAt   time.Time
}

// ExpenseSplit is a share of a cost carried by the event
type ExpenseSplit struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Label       string
	AmountCents int64
	UserID      *uuid.UUID
	CreatedAt   time.Time
}

// Participant is a user enrolled in the event
type Participant struct {
	EventID  uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
}

// Event is shop-scoped financial activity. Events are never deleted, only
// archived; closing reconciles collected acomptes against actual spend.
type Event struct {
	shared.BaseEntity
	ShopID       uuid.UUID
	Name         string
	Type         EventType
	Status       EventStatus
	AcompteCents int64
	// AcompteCollectedCents is fixed at close: the deposits actually
	// collected, acompte times the participants enrolled by then.
	AcompteCollectedCents int64
	Revenues     []Revenue
	Expenses     []Expense
	Splits       []ExpenseSplit
	Participants []Participant
	ClosedAt     *time.Time
}

// NewEvent creates a DRAFT event
func NewEvent(shopID uuid.UUID, name string, eventType EventType, acompteCents int64) (*Event, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_EVENT_NAME", "Event name cannot be empty")
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", fmt.Sprintf("Unknown event type %q", eventType))
	}
	if acompteCents < 0 {
		return nil, shared.NewDomainError("INVALID_ACOMPTE", "Acompte cannot be negative")
	}
	return &Event{
		BaseEntity:   shared.NewBaseEntity(),
		ShopID:       shopID,
		Name:         name,
		Type:         eventType,
		Status:       EventStatusDraft,
		AcompteCents: acompteCents,
	}, nil
}

// Activate makes the event sellable and joinable (DRAFT -> OPEN)
func (e *Event) Activate() error {
	if e.Status != EventStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot activate event in %s status", e.Status))
	}
	e.Status = EventStatusOpen
	e.Touch()
	return nil
}

// Close locks further participation (OPEN -> CLOSED). For acompte-funded
// events the deposit total is fixed here, so the reconciliation against
// actual spend survives later roster or pricing changes.
func (e *Event) Close() error {
	if e.Status != EventStatusOpen {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close event in %s status", e.Status))
	}
	now := time.Now()
	e.Status = EventStatusClosed
	e.ClosedAt = &now
	if e.AcompteCents > 0 {
		e.AcompteCollectedCents = e.AcompteCents * int64(len(e.Participants))
	}
	e.Touch()
	return nil
}

// Archive hides the event from day-to-day listings (CLOSED -> ARCHIVED)
func (e *Event) Archive() error {
	if e.Status != EventStatusClosed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot archive event in %s status", e.Status))
	}
	e.Status = EventStatusArchived
	e.Touch()
	return nil
}

// AddRevenue attaches a manual revenue entry; only while the event is live
func (e *Event) AddRevenue(label string, amountCents int64) error {
	if e.Status == EventStatusClosed || e.Status == EventStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Cannot add revenue to a closed event")
	}
	if amountCents <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Revenue amount must be positive")
	}
	e.Revenues = append(e.Revenues, Revenue{
		ID: uuid.New(), EventID: e.ID, Label: label, AmountCents: amountCents, CreatedAt: time.Now(),
	})
	e.Touch()
	return nil
}

// AddExpense attaches a direct expense; only while the event is live
func (e *Event) AddExpense(label string, amountCents int64) error {
	if e.Status == EventStatusClosed || e.Status == EventStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Cannot add expense to a closed event")
	}
	if amountCents <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	e.Expenses = append(e.Expenses, Expense{
		ID: uuid.New(), EventID: e.ID, Label: label, AmountCents: amountCents, CreatedAt: time.Now(),
	})
	e.Touch()
	return nil
}

// AddSplit attaches an expense split carried by the event
func (e *Event) AddSplit(label string, amountCents int64, userID *uuid.UUID) error {
	if e.Status == EventStatusClosed || e.Status == EventStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Cannot add expense split to a closed event")
	}
	if amountCents <= 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Split amount must be positive")
	}
	e.Splits = append(e.Splits, ExpenseSplit{
		ID: uuid.New(), EventID: e.ID, Label: label, AmountCents: amountCents, UserID: userID, CreatedAt: time.Now(),
	})
	e.Touch()
	return nil
}

// Join enrolls a user; only an OPEN event accepts participants
func (e *Event) Join(userID uuid.UUID) error {
	if e.Status != EventStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Event is not open for participation")
	}
	for _, p := range e.Participants {
		if p.UserID == userID {
			return shared.NewDomainError("ALREADY_JOINED", "User already participates in this event")
		}
	}
	e.Participants = append(e.Participants, Participant{EventID: e.ID, UserID: userID, JoinedAt: time.Now()})
	e.Touch()
	return nil
}

// ManualRevenueCents sums the manual revenue entries
func (e *Event) ManualRevenueCents() int64 {
	var total int64
	for _, r := range e.Revenues {
		total += r.AmountCents
	}
	return total
}

// AcompteBalanceCents reconciles collected deposits against actual spend.
// Positive means participants overpaid and refunds are owed; negative means
// the event cost more than the deposits covered. Zero until the event is
// closed or when no acompte was set.
func (e *Event) AcompteBalanceCents() int64 {
	if e.AcompteCollectedCents == 0 {
		return 0
	}
	return e.AcompteCollectedCents - e.ExpenseCents()
}

// ExpenseCents sums direct expenses plus splits
func (e *Event) ExpenseCents() int64 {
	var total int64
	for _, x := range e.Expenses {
		total += x.AmountCents
	}
	for _, s := range e.Splits {
		total += s.AmountCents
	}
	return total
}
