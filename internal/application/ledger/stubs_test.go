package ledger

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
)

func newUUID() uuid.UUID { return uuid.New() }

// stubLedgerStore records calls and delegates to optional hooks
type stubLedgerStore struct {
	recordCalls    []wallet.TransactionDraft
	settleCalls    []string
	failCalls      []uuid.UUID
	failByRefCalls []string

	recordErr    error
	settleFn     func(ref string) (*wallet.SettlementResult, error)
	failByRefFn  func(ref string) (*wallet.SettlementResult, error)
	transferErr  error
	failPendErr  error
	adjustResult *wallet.Transaction
}

func (s *stubLedgerStore) Record(ctx context.Context, draft wallet.TransactionDraft) (*wallet.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	s.recordCalls = append(s.recordCalls, draft)
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	status := wallet.TransactionStatusCompleted
	if draft.Type == wallet.TransactionTypeTopUp {
		status = wallet.TransactionStatusPending
	}
	return draft.ToTransaction(status), nil
}

func (s *stubLedgerStore) RecordTransfer(ctx context.Context, debit, credit wallet.TransactionDraft) (*wallet.Transaction, *wallet.Transaction, error) {
	if s.transferErr != nil {
		return nil, nil, s.transferErr
	}
	s.recordCalls = append(s.recordCalls, debit, credit)
	return debit.ToTransaction(wallet.TransactionStatusCompleted),
		credit.ToTransaction(wallet.TransactionStatusCompleted), nil
}

func (s *stubLedgerStore) Adjust(ctx context.Context, target wallet.AccountRef, newBalanceCents int64, issuerID uuid.UUID, description string) (*wallet.Transaction, error) {
	if s.adjustResult != nil {
		return s.adjustResult, nil
	}
	return nil, shared.ErrAccountNotFound
}

func (s *stubLedgerStore) Settle(ctx context.Context, providerReference string) (*wallet.SettlementResult, error) {
	s.settleCalls = append(s.settleCalls, providerReference)
	if s.settleFn != nil {
		return s.settleFn(providerReference)
	}
	return nil, shared.ErrNotFound
}

func (s *stubLedgerStore) FailPending(ctx context.Context, id uuid.UUID) error {
	s.failCalls = append(s.failCalls, id)
	return s.failPendErr
}

func (s *stubLedgerStore) FailPendingByReference(ctx context.Context, providerReference string) (*wallet.SettlementResult, error) {
	s.failByRefCalls = append(s.failByRefCalls, providerReference)
	if s.failByRefFn != nil {
		return s.failByRefFn(providerReference)
	}
	return nil, shared.ErrNotFound
}

// stubAccountRepository serves fixed accounts
type stubAccountRepository struct {
	users map[uuid.UUID]*wallet.UserAccount
	fams  map[uuid.UUID]*wallet.Fams
}

func (s *stubAccountRepository) CreateUser(ctx context.Context, account *wallet.UserAccount) error {
	s.users[account.ID] = account
	return nil
}

func (s *stubAccountRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*wallet.UserAccount, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubAccountRepository) CreateFams(ctx context.Context, fams *wallet.Fams) error {
	s.fams[fams.ID] = fams
	return nil
}

func (s *stubAccountRepository) FindFamsByID(ctx context.Context, id uuid.UUID) (*wallet.Fams, error) {
	if f, ok := s.fams[id]; ok {
		return f, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubAccountRepository) SaveFamsMembers(ctx context.Context, fams *wallet.Fams) error {
	s.fams[fams.ID] = fams
	return nil
}

func (s *stubAccountRepository) Balance(ctx context.Context, target wallet.AccountRef) (int64, error) {
	if target.Source == wallet.WalletSourceFamily {
		if f, ok := s.fams[target.ID]; ok {
			return f.BalanceCents, nil
		}
	} else if u, ok := s.users[target.ID]; ok {
		return u.BalanceCents, nil
	}
	return 0, shared.ErrAccountNotFound
}

// stubSettlementProvider returns canned verification and payment results
type stubSettlementProvider struct {
	slug         payment.ProviderSlug
	verification *payment.WebhookVerification
	verifyErr    error

	createResp *payment.CreatePaymentResponse
	createErr  error
	createSeen []*payment.CreatePaymentRequest
}

func (p *stubSettlementProvider) Slug() payment.ProviderSlug { return p.slug }

func (p *stubSettlementProvider) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	p.createSeen = append(p.createSeen, req)
	if p.createErr != nil {
		return nil, p.createErr
	}
	return p.createResp, nil
}

func (p *stubSettlementProvider) VerifyWebhook(ctx context.Context, payload []byte, params url.Values) (*payment.WebhookVerification, error) {
	return p.verification, p.verifyErr
}

// stubRegistry resolves a single provider
type stubRegistry struct {
	provider payment.Provider
	methods  []*payment.Method
}

func (r *stubRegistry) Resolve(ctx context.Context, slug payment.ProviderSlug) (payment.Provider, error) {
	if r.provider != nil && r.provider.Slug() == slug {
		return r.provider, nil
	}
	return nil, payment.ErrProviderNotAvailable
}

func (r *stubRegistry) ListEnabled(ctx context.Context) ([]*payment.Method, error) {
	return r.methods, nil
}
