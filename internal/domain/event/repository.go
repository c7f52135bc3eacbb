package event

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists events and their attached financial rows
type Repository interface {
	Create(ctx context.Context, e *Event) error
	Save(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, includeArchived bool) ([]*Event, error)
}
