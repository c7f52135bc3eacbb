package payment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
)

// ProviderRegistry resolves payment providers by slug. An adapter is usable
// only when its configuration row exists and is enabled; the adapter set
// itself is closed at construction.
type ProviderRegistry struct {
	methods  payment.MethodRepository
	adapters map[payment.ProviderSlug]payment.Provider
	logger   *zap.Logger
}

var _ payment.Registry = (*ProviderRegistry)(nil)

// NewProviderRegistry creates a registry over the given adapters
func NewProviderRegistry(methods payment.MethodRepository, logger *zap.Logger, adapters ...payment.Provider) *ProviderRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	bySlug := make(map[payment.ProviderSlug]payment.Provider, len(adapters))
	for _, a := range adapters {
		bySlug[a.Slug()] = a
	}
	return &ProviderRegistry{methods: methods, adapters: bySlug, logger: logger}
}

// Resolve returns the provider for slug if its method row is enabled
func (r *ProviderRegistry) Resolve(ctx context.Context, slug payment.ProviderSlug) (payment.Provider, error) {
	if !slug.IsValid() {
		return nil, payment.ErrProviderNotAvailable
	}

	method, err := r.methods.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, payment.ErrProviderNotAvailable
		}
		return nil, err
	}
	if !method.IsEnabled {
		return nil, payment.ErrProviderNotAvailable
	}

	adapter, ok := r.adapters[slug]
	if !ok {
		r.logger.Warn("Payment method enabled but no adapter configured", zap.String("provider", slug.String()))
		return nil, payment.ErrProviderNotAvailable
	}
	return adapter, nil
}

// ListEnabled returns the payment methods currently open for top-ups
func (r *ProviderRegistry) ListEnabled(ctx context.Context) ([]*payment.Method, error) {
	return r.methods.ListEnabled(ctx)
}
