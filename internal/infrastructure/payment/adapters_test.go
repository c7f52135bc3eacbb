package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/infrastructure/config"
)

func lydiaTestAdapter(t *testing.T, baseURL string) *LydiaAdapter {
	a, err := NewLydiaAdapter(config.LydiaConfig{
		BaseURL:     baseURL,
		VendorToken: "vendor-token",
		APIToken:    "api-token",
	}, &http.Client{Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	return a
}

func TestLydiaAdapter_CreatePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "vendor-token", r.FormValue("vendor_token"))
		assert.Equal(t, "25.50", r.FormValue("amount"))
		assert.Equal(t, "ref-123", r.FormValue("order_ref"))
		json.NewEncoder(w).Encode(map[string]string{
			"request_id": "lydia-req-1",
			"mobile_url": "https://lydia-app.com/collect/lydia-req-1",
		})
	}))
	defer server.Close()

	adapter := lydiaTestAdapter(t, server.URL)
	resp, err := adapter.CreatePayment(context.Background(), &payment.CreatePaymentRequest{
		AmountCents: 2550,
		PayerEmail:  "tyrion@kasso.test",
		Description: "Wallet top-up",
		ReferenceID: "ref-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "lydia-req-1", resp.PaymentID)
	assert.Contains(t, resp.RedirectURL, "lydia-req-1")
}

func TestLydiaAdapter_CreatePaymentProviderDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := lydiaTestAdapter(t, server.URL)
	_, err := adapter.CreatePayment(context.Background(), &payment.CreatePaymentRequest{
		AmountCents: 1000,
		PayerEmail:  "tyrion@kasso.test",
		ReferenceID: "ref-500",
	})
	assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
}

func TestLydiaAdapter_VerifyWebhook(t *testing.T) {
	adapter := lydiaTestAdapter(t, "https://lydia-app.com")
	ctx := context.Background()

	params := url.Values{}
	params.Set("order_ref", "ref-123")
	params.Set("amount", "25.50")
	params.Set("status", "confirmed")
	params.Set("sig", adapter.sign(params))

	t.Run("valid signature", func(t *testing.T) {
		v, err := adapter.VerifyWebhook(ctx, nil, params)
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.Equal(t, "ref-123", v.TransactionRef)
		assert.False(t, v.Failed)
	})

	t.Run("tampered parameter", func(t *testing.T) {
		tampered := url.Values{}
		for k, vs := range params {
			tampered[k] = vs
		}
		tampered.Set("amount", "999.00")

		v, err := adapter.VerifyWebhook(ctx, nil, tampered)
		require.NoError(t, err)
		assert.False(t, v.IsValid)
	})

	t.Run("missing signature", func(t *testing.T) {
		v, err := adapter.VerifyWebhook(ctx, nil, url.Values{"order_ref": {"ref-123"}})
		require.NoError(t, err)
		assert.False(t, v.IsValid)
	})

	t.Run("cancelled payment is a failure", func(t *testing.T) {
		cancelled := url.Values{}
		cancelled.Set("order_ref", "ref-123")
		cancelled.Set("status", "cancelled")
		cancelled.Set("sig", adapter.sign(cancelled))

		v, err := adapter.VerifyWebhook(ctx, nil, cancelled)
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.True(t, v.Failed)
	})

	t.Run("form body without parsed params", func(t *testing.T) {
		body := url.Values{}
		body.Set("order_ref", "ref-456")
		body.Set("sig", adapter.sign(body))

		v, err := adapter.VerifyWebhook(ctx, []byte(body.Encode()), url.Values{})
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.Equal(t, "ref-456", v.TransactionRef)
	})
}

func TestVivaAdapter_VerifyWebhook(t *testing.T) {
	adapter, err := NewVivaAdapter(config.VivaConfig{
		BaseURL:      "https://api.vivapayments.com",
		ClientID:     "client",
		ClientSecret: "secret",
	}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte(`{"EventTypeId":1796,"EventData":{"MerchantTrns":"ref-789"}}`)
	params := url.Values{"signature": {adapter.sign(payload)}}

	t.Run("valid payment created", func(t *testing.T) {
		v, err := adapter.VerifyWebhook(ctx, payload, params)
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.Equal(t, "ref-789", v.TransactionRef)
		assert.False(t, v.Failed)
	})

	t.Run("payment failed event", func(t *testing.T) {
		failed := []byte(`{"EventTypeId":1798,"EventData":{"MerchantTrns":"ref-789"}}`)
		v, err := adapter.VerifyWebhook(ctx, failed, url.Values{"signature": {adapter.sign(failed)}})
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.True(t, v.Failed)
	})

	t.Run("bad signature", func(t *testing.T) {
		v, err := adapter.VerifyWebhook(ctx, payload, url.Values{"signature": {"bogus"}})
		require.NoError(t, err)
		assert.False(t, v.IsValid)
	})

	t.Run("garbage body with valid signature", func(t *testing.T) {
		garbage := []byte("not json")
		v, err := adapter.VerifyWebhook(ctx, garbage, url.Values{"signature": {adapter.sign(garbage)}})
		require.NoError(t, err)
		assert.False(t, v.IsValid)
	})
}

func TestSumUpAdapter_VerifyWebhook(t *testing.T) {
	adapter, err := NewSumUpAdapter(config.SumUpConfig{
		BaseURL:      "https://api.sumup.com",
		APIKey:       "sup_key",
		MerchantCode: "M1234",
	}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte(`{"event_type":"CHECKOUT_STATUS_CHANGED","payload":{"checkout_reference":"ref-42","status":"PAID"}}`)

	t.Run("valid checkout paid", func(t *testing.T) {
		v, err := adapter.VerifyWebhook(ctx, payload, url.Values{"signature": {adapter.sign(payload)}})
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.Equal(t, "ref-42", v.TransactionRef)
		assert.False(t, v.Failed)
	})

	t.Run("failed checkout", func(t *testing.T) {
		failed := []byte(`{"event_type":"CHECKOUT_STATUS_CHANGED","payload":{"checkout_reference":"ref-42","status":"FAILED"}}`)
		v, err := adapter.VerifyWebhook(ctx, failed, url.Values{"signature": {adapter.sign(failed)}})
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.True(t, v.Failed)
	})

	t.Run("bad signature", func(t *testing.T) {
		v, err := adapter.VerifyWebhook(ctx, payload, url.Values{"signature": {"bogus"}})
		require.NoError(t, err)
		assert.False(t, v.IsValid)
	})
}

func TestAdapterConfigValidation(t *testing.T) {
	_, err := NewLydiaAdapter(config.LydiaConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewVivaAdapter(config.VivaConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewSumUpAdapter(config.SumUpConfig{}, nil, nil)
	assert.Error(t, err)
}
