package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"github.com/kasso/backend/internal/infrastructure/cache"
)

func settledResult(ref string) *wallet.SettlementResult {
	draft := wallet.TransactionDraft{
		Type:              wallet.TransactionTypeTopUp,
		Target:            wallet.PersonalAccount(newUUID()),
		AmountCents:       10000,
		IssuerID:          newUUID(),
		ProviderReference: ref,
	}
	return &wallet.SettlementResult{Transaction: draft.ToTransaction(wallet.TransactionStatusCompleted)}
}

func TestSettlementService_ProcessWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown provider rejected", func(t *testing.T) {
		svc := NewSettlementService(&stubLedgerStore{}, &stubRegistry{}, nil, nil)
		_, err := svc.ProcessWebhook(ctx, payment.ProviderSlugLydia, nil, nil)
		assert.ErrorIs(t, err, payment.ErrProviderNotAvailable)
	})

	t.Run("invalid signature leaves the ledger alone", func(t *testing.T) {
		store := &stubLedgerStore{}
		registry := &stubRegistry{provider: &stubSettlementProvider{
			slug:         payment.ProviderSlugLydia,
			verification: &payment.WebhookVerification{IsValid: false},
		}}
		svc := NewSettlementService(store, registry, nil, nil)

		_, err := svc.ProcessWebhook(ctx, payment.ProviderSlugLydia, []byte("x"), nil)
		assert.ErrorIs(t, err, ErrInvalidWebhook)
		assert.Empty(t, store.settleCalls)
	})

	t.Run("valid webhook settles once, replay is short-circuited", func(t *testing.T) {
		store := &stubLedgerStore{settleFn: func(ref string) (*wallet.SettlementResult, error) {
			return settledResult(ref), nil
		}}
		registry := &stubRegistry{provider: &stubSettlementProvider{
			slug:         payment.ProviderSlugLydia,
			verification: &payment.WebhookVerification{IsValid: true, TransactionRef: "ref-1"},
		}}
		replay := cache.NewMemoryReplayStore()
		defer replay.Close()
		svc := NewSettlementService(store, registry, replay, nil)

		first, err := svc.ProcessWebhook(ctx, payment.ProviderSlugLydia, []byte("x"), nil)
		require.NoError(t, err)
		assert.False(t, first.AlreadySettled)
		require.Len(t, store.settleCalls, 1)

		second, err := svc.ProcessWebhook(ctx, payment.ProviderSlugLydia, []byte("x"), nil)
		require.NoError(t, err)
		assert.True(t, second.AlreadySettled)
		// The replay store answered; the row lock was not taken again.
		assert.Len(t, store.settleCalls, 1)
	})

	t.Run("redelivery without replay store is acknowledged", func(t *testing.T) {
		store := &stubLedgerStore{settleFn: func(ref string) (*wallet.SettlementResult, error) {
			r := settledResult(ref)
			r.AlreadySettled = true
			return r, nil
		}}
		registry := &stubRegistry{provider: &stubSettlementProvider{
			slug:         payment.ProviderSlugViva,
			verification: &payment.WebhookVerification{IsValid: true, TransactionRef: "ref-2"},
		}}
		svc := NewSettlementService(store, registry, nil, nil)

		outcome, err := svc.ProcessWebhook(ctx, payment.ProviderSlugViva, []byte("x"), nil)
		require.NoError(t, err)
		assert.True(t, outcome.AlreadySettled)
	})

	t.Run("unknown reference rejected", func(t *testing.T) {
		store := &stubLedgerStore{settleFn: func(ref string) (*wallet.SettlementResult, error) {
			return nil, shared.ErrNotFound
		}}
		registry := &stubRegistry{provider: &stubSettlementProvider{
			slug:         payment.ProviderSlugLydia,
			verification: &payment.WebhookVerification{IsValid: true, TransactionRef: "ghost"},
		}}
		svc := NewSettlementService(store, registry, nil, nil)

		_, err := svc.ProcessWebhook(ctx, payment.ProviderSlugLydia, []byte("x"), nil)
		assert.ErrorIs(t, err, ErrInvalidWebhook)
	})

	t.Run("failure notification closes the pending entry", func(t *testing.T) {
		store := &stubLedgerStore{failByRefFn: func(ref string) (*wallet.SettlementResult, error) {
			draft := wallet.TransactionDraft{
				Type:              wallet.TransactionTypeTopUp,
				Target:            wallet.PersonalAccount(newUUID()),
				AmountCents:       5000,
				IssuerID:          newUUID(),
				ProviderReference: ref,
			}
			return &wallet.SettlementResult{Transaction: draft.ToTransaction(wallet.TransactionStatusFailed)}, nil
		}}
		registry := &stubRegistry{provider: &stubSettlementProvider{
			slug:         payment.ProviderSlugSumUp,
			verification: &payment.WebhookVerification{IsValid: true, TransactionRef: "ref-3", Failed: true},
		}}
		svc := NewSettlementService(store, registry, nil, nil)

		outcome, err := svc.ProcessWebhook(ctx, payment.ProviderSlugSumUp, []byte("x"), nil)
		require.NoError(t, err)
		assert.True(t, outcome.Failed)
		assert.Empty(t, store.settleCalls)
		assert.Equal(t, []string{"ref-3"}, store.failByRefCalls)
	})

	t.Run("failure after settlement leaves the credit alone", func(t *testing.T) {
		store := &stubLedgerStore{failByRefFn: func(ref string) (*wallet.SettlementResult, error) {
			r := settledResult(ref)
			r.AlreadySettled = true
			return r, nil
		}}
		registry := &stubRegistry{provider: &stubSettlementProvider{
			slug:         payment.ProviderSlugSumUp,
			verification: &payment.WebhookVerification{IsValid: true, TransactionRef: "ref-4", Failed: true},
		}}
		svc := NewSettlementService(store, registry, nil, nil)

		outcome, err := svc.ProcessWebhook(ctx, payment.ProviderSlugSumUp, []byte("x"), nil)
		require.NoError(t, err)
		assert.True(t, outcome.AlreadySettled)
		assert.False(t, outcome.Failed)
	})
}
