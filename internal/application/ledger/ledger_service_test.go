package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
)

func newLedgerFixture(t *testing.T) (*LedgerService, *stubLedgerStore, *stubAccountRepository) {
	store := &stubLedgerStore{}
	accounts := &stubAccountRepository{
		users: map[uuid.UUID]*wallet.UserAccount{},
		fams:  map[uuid.UUID]*wallet.Fams{},
	}
	return NewLedgerService(store, accounts, nil, nil), store, accounts
}

func TestLedgerService_Purchase(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newLedgerFixture(t)
	issuer := uuid.New()
	target := wallet.PersonalAccount(uuid.New())

	t.Run("stores the price negated with quantity defaulted", func(t *testing.T) {
		tx, err := svc.Purchase(ctx, PurchaseRequest{
			IssuerID:    issuer,
			Target:      target,
			AmountCents: 350,
			ShopID:      uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(-350), tx.AmountCents)
		assert.Equal(t, 1, tx.Quantity)
		assert.Equal(t, wallet.TransactionStatusCompleted, tx.Status)
	})

	t.Run("non-positive price rejected", func(t *testing.T) {
		before := len(store.recordCalls)
		_, err := svc.Purchase(ctx, PurchaseRequest{IssuerID: issuer, Target: target, AmountCents: -5, ShopID: uuid.New()})
		assert.Error(t, err)
		assert.Len(t, store.recordCalls, before)
	})

	t.Run("missing shop rejected", func(t *testing.T) {
		_, err := svc.Purchase(ctx, PurchaseRequest{IssuerID: issuer, Target: target, AmountCents: 100})
		assert.Error(t, err)
	})
}

func TestLedgerService_Transfer(t *testing.T) {
	ctx := context.Background()

	tyrion, err := wallet.NewUserAccount("tyrion@kasso.test", "Tyrion")
	require.NoError(t, err)
	sansa, err := wallet.NewUserAccount("sansa@kasso.test", "Sansa")
	require.NoError(t, err)

	t.Run("personal transfer debits the issuer's own wallet", func(t *testing.T) {
		svc, store, _ := newLedgerFixture(t)
		debit, credit, err := svc.Transfer(ctx, TransferRequest{
			IssuerID:    tyrion.ID,
			Source:      tyrion.Ref(),
			Receiver:    sansa.Ref(),
			AmountCents: 1200,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(-1200), debit.AmountCents)
		assert.Equal(t, int64(1200), credit.AmountCents)
		assert.Len(t, store.recordCalls, 2)
	})

	t.Run("cannot debit another member's wallet", func(t *testing.T) {
		svc, _, _ := newLedgerFixture(t)
		_, _, err := svc.Transfer(ctx, TransferRequest{
			IssuerID:    tyrion.ID,
			Source:      sansa.Ref(),
			Receiver:    tyrion.Ref(),
			AmountCents: 1200,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("fams debit requires admin", func(t *testing.T) {
		svc, _, accounts := newLedgerFixture(t)
		fams, err := wallet.NewFams("Les Fanfarons", tyrion.ID)
		require.NoError(t, err)
		require.NoError(t, fams.AddMember(sansa.ID, false))
		accounts.fams[fams.ID] = fams

		_, _, err = svc.Transfer(ctx, TransferRequest{
			IssuerID:    sansa.ID,
			Source:      fams.Ref(),
			Receiver:    sansa.Ref(),
			AmountCents: 500,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)

		debit, _, err := svc.Transfer(ctx, TransferRequest{
			IssuerID:    tyrion.ID,
			Source:      fams.Ref(),
			Receiver:    sansa.Ref(),
			AmountCents: 500,
		})
		require.NoError(t, err)
		assert.Equal(t, wallet.WalletSourceFamily, debit.WalletSource)
	})

	t.Run("same wallet rejected", func(t *testing.T) {
		svc, _, _ := newLedgerFixture(t)
		_, _, err := svc.Transfer(ctx, TransferRequest{
			IssuerID:    tyrion.ID,
			Source:      tyrion.Ref(),
			Receiver:    tyrion.Ref(),
			AmountCents: 100,
		})
		assert.Error(t, err)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		svc, _, _ := newLedgerFixture(t)
		_, _, err := svc.Transfer(ctx, TransferRequest{
			IssuerID:    tyrion.ID,
			Source:      tyrion.Ref(),
			Receiver:    sansa.Ref(),
			AmountCents: 0,
		})
		assert.Error(t, err)
	})
}
