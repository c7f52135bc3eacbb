package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kasso/backend/internal/domain/event"
	"go.uber.org/zap"
)

// EventService drives the event lifecycle and its attached financial rows.
// Transitions are one-directional; a closed event never reopens.
type EventService struct {
	events event.Repository
	logger *zap.Logger
}

// NewEventService creates a new EventService
func NewEventService(events event.Repository, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{events: events, logger: logger}
}

// CreateEventRequest opens a DRAFT event on a shop
type CreateEventRequest struct {
	ShopID       uuid.UUID
	Name         string
	Type         event.EventType
	AcompteCents int64
}

// Create stores a new DRAFT event
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*event.Event, error) {
	e, err := event.NewEvent(req.ShopID, req.Name, req.Type, req.AcompteCents)
	if err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.Info("Event created",
		zap.String("event_id", e.ID.String()),
		zap.String("shop_id", e.ShopID.String()),
		zap.String("type", e.Type.String()))
	return e, nil
}

// Activate transitions DRAFT -> OPEN
func (s *EventService) Activate(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	return s.transition(ctx, id, "activated", (*event.Event).Activate)
}

// Close transitions OPEN -> CLOSED, locking further participation
func (s *EventService) Close(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	return s.transition(ctx, id, "closed", (*event.Event).Close)
}

// Archive transitions CLOSED -> ARCHIVED
func (s *EventService) Archive(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	return s.transition(ctx, id, "archived", (*event.Event).Archive)
}

func (s *EventService) transition(ctx context.Context, id uuid.UUID, verb string, apply func(*event.Event) error) (*event.Event, error) {
	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(e); err != nil {
		return nil, err
	}
	if err := s.events.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save event: %w", err)
	}
	s.logger.Info("Event "+verb, zap.String("event_id", e.ID.String()), zap.String("status", e.Status.String()))
	return e, nil
}

// AddRevenue attaches a manual revenue entry
func (s *EventService) AddRevenue(ctx context.Context, id uuid.UUID, label string, amountCents int64) (*event.Event, error) {
	return s.mutate(ctx, id, func(e *event.Event) error { return e.AddRevenue(label, amountCents) })
}

// AddExpense attaches a direct shop expense
func (s *EventService) AddExpense(ctx context.Context, id uuid.UUID, label string, amountCents int64) (*event.Event, error) {
	return s.mutate(ctx, id, func(e *event.Event) error { return e.AddExpense(label, amountCents) })
}

// AddSplit attaches an expense split
func (s *EventService) AddSplit(ctx context.Context, id uuid.UUID, label string, amountCents int64, userID *uuid.UUID) (*event.Event, error) {
	return s.mutate(ctx, id, func(e *event.Event) error { return e.AddSplit(label, amountCents, userID) })
}

// Join enrolls a user in an OPEN event
func (s *EventService) Join(ctx context.Context, id, userID uuid.UUID) (*event.Event, error) {
	return s.mutate(ctx, id, func(e *event.Event) error { return e.Join(userID) })
}

// Get loads one event
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	return s.events.FindByID(ctx, id)
}

// ListByShop lists a shop's events
func (s *EventService) ListByShop(ctx context.Context, shopID uuid.UUID, includeArchived bool) ([]*event.Event, error) {
	return s.events.ListByShop(ctx, shopID, includeArchived)
}

func (s *EventService) mutate(ctx context.Context, id uuid.UUID, apply func(*event.Event) error) (*event.Event, error) {
	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(e); err != nil {
		return nil, err
	}
	if err := s.events.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save event: %w", err)
	}
	return e, nil
}
