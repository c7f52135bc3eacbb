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
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/infrastructure/config"
)

// LydiaAdapter integrates the Lydia mobile payment API. Payment sessions are
// opened as money requests; the settlement webhook is form-encoded and signed
// with an HMAC over the sorted parameters.
type LydiaAdapter struct {
	cfg    config.LydiaConfig
	client *http.Client
	logger *zap.Logger
}

var _ payment.Provider = (*LydiaAdapter)(nil)

// NewLydiaAdapter creates a Lydia adapter after validating its credentials
func NewLydiaAdapter(cfg config.LydiaConfig, client *http.Client, logger *zap.Logger) (*LydiaAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LydiaAdapter{cfg: cfg, client: client, logger: logger.Named("lydia")}, nil
}

// Slug returns the identity of this provider
func (a *LydiaAdapter) Slug() payment.ProviderSlug {
	return payment.ProviderSlugLydia
}

// CreatePayment opens a Lydia money request for the payer
func (a *LydiaAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("vendor_token", a.cfg.VendorToken)
	form.Set("recipient", req.PayerEmail)
	form.Set("amount", fmt.Sprintf("%d.%02d", req.AmountCents/100, req.AmountCents%100))
	form.Set("currency", "EUR")
	form.Set("message", req.Description)
	form.Set("order_ref", req.ReferenceID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/api/request/do.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Warn("Lydia rejected payment request", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: http %d", payment.ErrProviderUnavailable, resp.StatusCode)
	}

	var body struct {
		RequestID  string `json:"request_id"`
		RequestURL string `json:"mobile_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", payment.ErrProviderUnavailable, err)
	}

	return &payment.CreatePaymentResponse{
		PaymentID:   body.RequestID,
		RedirectURL: body.RequestURL,
	}, nil
}

// VerifyWebhook authenticates a Lydia settlement callback. Lydia signs the
// sorted form parameters (minus "sig") with the API token.
func (a *LydiaAdapter) VerifyWebhook(ctx context.Context, payload []byte, params url.Values) (*payment.WebhookVerification, error) {
	if len(params) == 0 && len(payload) > 0 {
		parsed, err := url.ParseQuery(string(payload))
		if err != nil {
			return &payment.WebhookVerification{}, nil
		}
		params = parsed
	}

	sig := params.Get("sig")
	if sig == "" || !hmac.Equal([]byte(sig), []byte(a.sign(params))) {
		return &payment.WebhookVerification{}, nil
	}

	return &payment.WebhookVerification{
		IsValid:        true,
		TransactionRef: params.Get("order_ref"),
		Failed:         params.Get("status") == "cancelled" || params.Get("status") == "refused",
	}, nil
}

// sign computes the hex HMAC-SHA256 over the sorted key=value pairs,
// excluding the signature parameter itself.
func (a *LydiaAdapter) sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sig" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}

	mac := hmac.New(sha256.New, []byte(a.cfg.APIToken))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
