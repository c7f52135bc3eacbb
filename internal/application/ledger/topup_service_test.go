package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/wallet"
)

func newTopUpFixture(t *testing.T, provider *stubSettlementProvider) (*TopUpService, *stubLedgerStore, *wallet.UserAccount) {
	store := &stubLedgerStore{}
	accounts := &stubAccountRepository{
		users: map[uuid.UUID]*wallet.UserAccount{},
		fams:  map[uuid.UUID]*wallet.Fams{},
	}
	user, err := wallet.NewUserAccount("tyrion@kasso.test", "Tyrion")
	require.NoError(t, err)
	accounts.users[user.ID] = user

	svc := NewTopUpService(store, accounts, &stubRegistry{provider: provider}, nil).
		WithProviderTimeout(time.Second)
	return svc, store, user
}

func TestTopUpService_InitiateTopUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending entry and returns redirect", func(t *testing.T) {
		provider := &stubSettlementProvider{
			slug:       payment.ProviderSlugLydia,
			createResp: &payment.CreatePaymentResponse{PaymentID: "lydia-1", RedirectURL: "https://pay.example/1"},
		}
		svc, store, user := newTopUpFixture(t, provider)

		result, err := svc.InitiateTopUp(ctx, TopUpRequest{
			ActorID:     user.ID,
			Provider:    payment.ProviderSlugLydia,
			AmountCents: 10000,
			Description: "Wallet top-up",
		})
		require.NoError(t, err)

		assert.Equal(t, wallet.TransactionStatusPending, result.Transaction.Status)
		assert.Equal(t, int64(10000), result.Transaction.AmountCents)
		assert.Equal(t, "https://pay.example/1", result.RedirectURL)

		// The provider call carried the ledger entry's reference and payer
		require.Len(t, provider.createSeen, 1)
		assert.Equal(t, result.Transaction.ProviderReference, provider.createSeen[0].ReferenceID)
		assert.Equal(t, "tyrion@kasso.test", provider.createSeen[0].PayerEmail)
		assert.Empty(t, store.failCalls)
	})

	t.Run("distinct references per attempt", func(t *testing.T) {
		provider := &stubSettlementProvider{
			slug:       payment.ProviderSlugLydia,
			createResp: &payment.CreatePaymentResponse{PaymentID: "lydia-2"},
		}
		svc, _, user := newTopUpFixture(t, provider)

		first, err := svc.InitiateTopUp(ctx, TopUpRequest{ActorID: user.ID, Provider: payment.ProviderSlugLydia, AmountCents: 500})
		require.NoError(t, err)
		second, err := svc.InitiateTopUp(ctx, TopUpRequest{ActorID: user.ID, Provider: payment.ProviderSlugLydia, AmountCents: 500})
		require.NoError(t, err)
		assert.NotEqual(t, first.Transaction.ProviderReference, second.Transaction.ProviderReference)
	})

	t.Run("provider failure closes the pending entry", func(t *testing.T) {
		provider := &stubSettlementProvider{
			slug:      payment.ProviderSlugLydia,
			createErr: payment.ErrProviderUnavailable,
		}
		svc, store, user := newTopUpFixture(t, provider)

		_, err := svc.InitiateTopUp(ctx, TopUpRequest{ActorID: user.ID, Provider: payment.ProviderSlugLydia, AmountCents: 500})
		assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
		// No webhook will ever arrive; the entry must not stay PENDING.
		assert.Len(t, store.failCalls, 1)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		provider := &stubSettlementProvider{slug: payment.ProviderSlugLydia}
		svc, store, user := newTopUpFixture(t, provider)

		_, err := svc.InitiateTopUp(ctx, TopUpRequest{ActorID: user.ID, Provider: payment.ProviderSlugLydia, AmountCents: 0})
		assert.Error(t, err)
		assert.Empty(t, store.recordCalls)
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		provider := &stubSettlementProvider{slug: payment.ProviderSlugLydia}
		svc, store, _ := newTopUpFixture(t, provider)

		_, err := svc.InitiateTopUp(ctx, TopUpRequest{ActorID: uuid.New(), Provider: payment.ProviderSlugLydia, AmountCents: 500})
		assert.Error(t, err)
		assert.Empty(t, store.recordCalls)
	})

	t.Run("disabled provider rejected before any write", func(t *testing.T) {
		provider := &stubSettlementProvider{slug: payment.ProviderSlugViva}
		svc, store, user := newTopUpFixture(t, provider)

		_, err := svc.InitiateTopUp(ctx, TopUpRequest{ActorID: user.ID, Provider: payment.ProviderSlugLydia, AmountCents: 500})
		assert.ErrorIs(t, err, payment.ErrProviderNotAvailable)
		assert.Empty(t, store.recordCalls)
	})
}

func TestTopUpService_ListMethods(t *testing.T) {
	method, err := payment.NewMethod(payment.ProviderSlugLydia, "Lydia", 10, decimal.NewFromFloat(1.5))
	require.NoError(t, err)
	method.Enable()

	svc := NewTopUpService(&stubLedgerStore{}, &stubAccountRepository{}, &stubRegistry{methods: []*payment.Method{method}}, nil)

	t.Run("previews payer total for an amount", func(t *testing.T) {
		previews, err := svc.ListMethods(context.Background(), 2000)
		require.NoError(t, err)
		require.Len(t, previews, 1)
		assert.Equal(t, int64(2041), previews[0].TotalCents)
	})

	t.Run("no amount means no preview", func(t *testing.T) {
		previews, err := svc.ListMethods(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, previews, 1)
		assert.Zero(t, previews[0].TotalCents)
	})
}
