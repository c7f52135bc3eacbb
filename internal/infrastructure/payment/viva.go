package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/infrastructure/config"
)

// Viva event type codes delivered in settlement webhooks
const (
	vivaEventPaymentCreated = 1796
	vivaEventPaymentFailed  = 1798
)

// VivaAdapter integrates the Viva Wallet smart checkout API. Payment orders
// carry our reference in MerchantTrns; webhooks are JSON bodies signed with
// an HMAC over the raw payload.
type VivaAdapter struct {
	cfg    config.VivaConfig
	client *http.Client
	logger *zap.Logger
}

var _ payment.Provider = (*VivaAdapter)(nil)

// NewVivaAdapter creates a Viva adapter after validating its credentials
func NewVivaAdapter(cfg config.VivaConfig, client *http.Client, logger *zap.Logger) (*VivaAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VivaAdapter{cfg: cfg, client: client, logger: logger.Named("viva")}, nil
}

// Slug returns the identity of this provider
func (a *VivaAdapter) Slug() payment.ProviderSlug {
	return payment.ProviderSlugViva
}

// CreatePayment creates a Viva payment order and returns its checkout URL
func (a *VivaAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := map[string]any{
		"amount":       req.AmountCents,
		"customerTrns": req.Description,
		"merchantTrns": req.ReferenceID,
		"sourceCode":   a.cfg.SourceCode,
		"customer": map[string]any{
			"email": req.PayerEmail,
		},
	}
	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/checkout/v2/orders", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Warn("Viva rejected payment order", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: http %d", payment.ErrProviderUnavailable, resp.StatusCode)
	}

	var orderResp struct {
		OrderCode int64 `json:"orderCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", payment.ErrProviderUnavailable, err)
	}

	return &payment.CreatePaymentResponse{
		PaymentID:   fmt.Sprintf("%d", orderResp.OrderCode),
		RedirectURL: fmt.Sprintf("%s/web/checkout?ref=%d", a.cfg.BaseURL, orderResp.OrderCode),
	}, nil
}

// VerifyWebhook authenticates a Viva transaction webhook. The signature
// parameter carries the hex HMAC-SHA256 of the raw body keyed with the
// client secret.
func (a *VivaAdapter) VerifyWebhook(ctx context.Context, payload []byte, params url.Values) (*payment.WebhookVerification, error) {
	sig := params.Get("signature")
	if sig == "" || !hmac.Equal([]byte(sig), []byte(a.sign(payload))) {
		return &payment.WebhookVerification{}, nil
	}

	var event struct {
		EventTypeID int `json:"EventTypeId"`
		EventData   struct {
			MerchantTrns string `json:"MerchantTrns"`
		} `json:"EventData"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return &payment.WebhookVerification{}, nil
	}

	return &payment.WebhookVerification{
		IsValid:        true,
		TransactionRef: event.EventData.MerchantTrns,
		Failed:         event.EventTypeID == vivaEventPaymentFailed,
	}, nil
}

func (a *VivaAdapter) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(a.cfg.ClientSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
