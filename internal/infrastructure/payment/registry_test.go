package payment

import (
	"context"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
)

// stubMethodRepository is an in-memory payment.MethodRepository
type stubMethodRepository struct {
	methods map[payment.ProviderSlug]*payment.Method
}

func (s *stubMethodRepository) FindBySlug(ctx context.Context, slug payment.ProviderSlug) (*payment.Method, error) {
	if m, ok := s.methods[slug]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubMethodRepository) ListEnabled(ctx context.Context) ([]*payment.Method, error) {
	var out []*payment.Method
	for _, m := range s.methods {
		if m.IsEnabled {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMethodRepository) Save(ctx context.Context, m *payment.Method) error {
	s.methods[m.Slug] = m
	return nil
}

// stubProvider satisfies payment.Provider for registry tests
type stubProvider struct {
	slug payment.ProviderSlug
}

func (p *stubProvider) Slug() payment.ProviderSlug { return p.slug }

func (p *stubProvider) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	return &payment.CreatePaymentResponse{PaymentID: "stub"}, nil
}

func (p *stubProvider) VerifyWebhook(ctx context.Context, payload []byte, params url.Values) (*payment.WebhookVerification, error) {
	return &payment.WebhookVerification{IsValid: true}, nil
}

func newTestMethod(t *testing.T, slug payment.ProviderSlug, enabled bool) *payment.Method {
	m, err := payment.NewMethod(slug, string(slug), 10, decimal.NewFromFloat(1.5))
	require.NoError(t, err)
	if enabled {
		m.Enable()
	}
	return m
}

func TestProviderRegistry_Resolve(t *testing.T) {
	repo := &stubMethodRepository{methods: map[payment.ProviderSlug]*payment.Method{
		payment.ProviderSlugLydia: newTestMethod(t, payment.ProviderSlugLydia, true),
		payment.ProviderSlugViva:  newTestMethod(t, payment.ProviderSlugViva, false),
	}}
	registry := NewProviderRegistry(repo, nil, &stubProvider{slug: payment.ProviderSlugLydia})
	ctx := context.Background()

	t.Run("resolves enabled provider", func(t *testing.T) {
		p, err := registry.Resolve(ctx, payment.ProviderSlugLydia)
		require.NoError(t, err)
		assert.Equal(t, payment.ProviderSlugLydia, p.Slug())
	})

	t.Run("disabled method does not resolve", func(t *testing.T) {
		_, err := registry.Resolve(ctx, payment.ProviderSlugViva)
		assert.ErrorIs(t, err, payment.ErrProviderNotAvailable)
	})

	t.Run("method without adapter does not resolve", func(t *testing.T) {
		repo.methods[payment.ProviderSlugSumUp] = newTestMethod(t, payment.ProviderSlugSumUp, true)
		_, err := registry.Resolve(ctx, payment.ProviderSlugSumUp)
		assert.ErrorIs(t, err, payment.ErrProviderNotAvailable)
	})

	t.Run("unknown slug does not resolve", func(t *testing.T) {
		_, err := registry.Resolve(ctx, payment.ProviderSlug("paypal"))
		assert.ErrorIs(t, err, payment.ErrProviderNotAvailable)
	})
}

func TestProviderRegistry_ListEnabled(t *testing.T) {
	repo := &stubMethodRepository{methods: map[payment.ProviderSlug]*payment.Method{
		payment.ProviderSlugLydia: newTestMethod(t, payment.ProviderSlugLydia, true),
		payment.ProviderSlugViva:  newTestMethod(t, payment.ProviderSlugViva, false),
	}}
	registry := NewProviderRegistry(repo, nil)

	enabled, err := registry.ListEnabled(context.Background())
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, payment.ProviderSlugLydia, enabled[0].Slug)
}
