package payment

import "context"

// MethodRepository persists payment method configuration rows
type MethodRepository interface {
	FindBySlug(ctx context.Context, slug ProviderSlug) (*Method, error)
	ListEnabled(ctx context.Context) ([]*Method, error)
	Save(ctx context.Context, method *Method) error
}
