package mandat

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists mandats and their per-shop rows
type Repository interface {
	Create(ctx context.Context, m *Mandat) error
	Save(ctx context.Context, m *Mandat) error
	FindByID(ctx context.Context, id uuid.UUID) (*Mandat, error)
	FindActive(ctx context.Context) (*Mandat, error)
	List(ctx context.Context) ([]*Mandat, error)
}
