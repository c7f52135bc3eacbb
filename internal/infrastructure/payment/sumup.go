package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/infrastructure/config"
)

// SumUpAdapter integrates the SumUp online checkout API. Checkouts carry our
// reference in checkout_reference; webhooks are JSON bodies signed with an
// HMAC over the raw payload.
type SumUpAdapter struct {
	cfg    config.SumUpConfig
	client *http.Client
	logger *zap.Logger
}

var _ payment.Provider = (*SumUpAdapter)(nil)

// NewSumUpAdapter creates a SumUp adapter after validating its credentials
func NewSumUpAdapter(cfg config.SumUpConfig, client *http.Client, logger *zap.Logger) (*SumUpAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SumUpAdapter{cfg: cfg, client: client, logger: logger.Named("sumup")}, nil
}

// Slug returns the identity of this provider
func (a *SumUpAdapter) Slug() payment.ProviderSlug {
	return payment.ProviderSlugSumUp
}

// CreatePayment creates a SumUp checkout session
func (a *SumUpAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	checkout := map[string]any{
		"checkout_reference": req.ReferenceID,
		"amount":             float64(req.AmountCents) / 100,
		"currency":           "EUR",
		"merchant_code":      a.cfg.MerchantCode,
		"description":        req.Description,
		"pay_to_email":       req.PayerEmail,
	}
	body, err := json.Marshal(checkout)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/v0.1/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Warn("SumUp rejected checkout", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: http %d", payment.ErrProviderUnavailable, resp.StatusCode)
	}

	var checkoutResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&checkoutResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", payment.ErrProviderUnavailable, err)
	}

	return &payment.CreatePaymentResponse{
		PaymentID:   checkoutResp.ID,
		RedirectURL: fmt.Sprintf("%s/v0.1/checkouts/%s", a.cfg.BaseURL, checkoutResp.ID),
	}, nil
}

// VerifyWebhook authenticates a SumUp checkout status webhook
func (a *SumUpAdapter) VerifyWebhook(ctx context.Context, payload []byte, params url.Values) (*payment.WebhookVerification, error) {
	sig := params.Get("signature")
	if sig == "" || !hmac.Equal([]byte(sig), []byte(a.sign(payload))) {
		return &payment.WebhookVerification{}, nil
	}

	var event struct {
		EventType string `json:"event_type"`
		Payload   struct {
			Reference string `json:"checkout_reference"`
			Status    string `json:"status"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return &payment.WebhookVerification{}, nil
	}

	return &payment.WebhookVerification{
		IsValid:        true,
		TransactionRef: event.Payload.Reference,
		Failed:         event.Payload.Status == "FAILED",
	}, nil
}

func (a *SumUpAdapter) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(a.cfg.APIKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
