package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/application/ledger"
	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"github.com/kasso/backend/internal/interfaces/http/dto"
)

type webhookTestStore struct {
	settleFn func(ref string) (*wallet.SettlementResult, error)
}

func (s *webhookTestStore) Record(ctx context.Context, draft wallet.TransactionDraft) (*wallet.Transaction, error) {
	return nil, shared.ErrNotFound
}

func (s *webhookTestStore) RecordTransfer(ctx context.Context, debit, credit wallet.TransactionDraft) (*wallet.Transaction, *wallet.Transaction, error) {
	return nil, nil, shared.ErrNotFound
}

func (s *webhookTestStore) Adjust(ctx context.Context, target wallet.AccountRef, newBalanceCents int64, issuerID uuid.UUID, description string) (*wallet.Transaction, error) {
	return nil, shared.ErrNotFound
}

func (s *webhookTestStore) Settle(ctx context.Context, providerReference string) (*wallet.SettlementResult, error) {
	return s.settleFn(providerReference)
}

func (s *webhookTestStore) FailPending(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *webhookTestStore) FailPendingByReference(ctx context.Context, providerReference string) (*wallet.SettlementResult, error) {
	return nil, shared.ErrNotFound
}

type webhookTestProvider struct {
	slug         payment.ProviderSlug
	verification *payment.WebhookVerification
}

func (p *webhookTestProvider) Slug() payment.ProviderSlug { return p.slug }

func (p *webhookTestProvider) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	return nil, payment.ErrProviderUnavailable
}

func (p *webhookTestProvider) VerifyWebhook(ctx context.Context, payload []byte, params url.Values) (*payment.WebhookVerification, error) {
	return p.verification, nil
}

type webhookTestRegistry struct {
	provider payment.Provider
}

func (r *webhookTestRegistry) Resolve(ctx context.Context, slug payment.ProviderSlug) (payment.Provider, error) {
	if r.provider != nil && r.provider.Slug() == slug {
		return r.provider, nil
	}
	return nil, payment.ErrProviderNotAvailable
}

func (r *webhookTestRegistry) ListEnabled(ctx context.Context) ([]*payment.Method, error) {
	return nil, nil
}

func setupWebhookRouter(store wallet.LedgerStore, registry payment.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	svc := ledger.NewSettlementService(store, registry, nil, nil)
	NewWebhookHandler(svc, nil).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func postWebhook(t *testing.T, engine *gin.Engine, slug string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/"+slug, strings.NewReader("payload"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_StatusCodes(t *testing.T) {
	store := &webhookTestStore{}
	provider := &webhookTestProvider{slug: payment.ProviderSlugLydia}
	engine := setupWebhookRouter(store, &webhookTestRegistry{provider: provider})

	t.Run("unknown provider slug is a 400", func(t *testing.T) {
		rec := postWebhook(t, engine, "paypal")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disabled provider slug is a 400", func(t *testing.T) {
		// viva has no resolvable adapter in this registry
		rec := postWebhook(t, engine, "viva")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid signature is a 400", func(t *testing.T) {
		provider.verification = &payment.WebhookVerification{IsValid: false}
		rec := postWebhook(t, engine, "lydia")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success webhook for a failed transaction is a 400", func(t *testing.T) {
		provider.verification = &payment.WebhookVerification{IsValid: true, TransactionRef: "ref-failed"}
		store.settleFn = func(ref string) (*wallet.SettlementResult, error) {
			return nil, shared.ErrInvalidState
		}
		rec := postWebhook(t, engine, "lydia")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid settlement is a 200", func(t *testing.T) {
		provider.verification = &payment.WebhookVerification{IsValid: true, TransactionRef: "ref-1"}
		store.settleFn = func(ref string) (*wallet.SettlementResult, error) {
			draft := wallet.TransactionDraft{
				Type:              wallet.TransactionTypeTopUp,
				Target:            wallet.PersonalAccount(uuid.New()),
				AmountCents:       5000,
				IssuerID:          uuid.New(),
				ProviderReference: ref,
			}
			return &wallet.SettlementResult{Transaction: draft.ToTransaction(wallet.TransactionStatusCompleted)}, nil
		}
		rec := postWebhook(t, engine, "lydia")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})
}
