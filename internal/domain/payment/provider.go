package payment

import (
	"context"
	"errors"
	"net/url"
)

var (
	// ErrProviderNotAvailable is returned for an unknown or disabled slug
	ErrProviderNotAvailable = errors.New("payment: provider not available")
	// ErrProviderUnavailable is returned when the external service cannot be
	// reached or rejects our credentials. The originating top-up must be
	// marked FAILED by the caller, never left PENDING.
	ErrProviderUnavailable = errors.New("payment: provider temporarily unavailable")
	// ErrInvalidCreateRequest is returned for a malformed payment request
	ErrInvalidCreateRequest = errors.New("payment: invalid create payment request")
)

// ProviderSlug identifies one external payment service
type ProviderSlug string

const (
	// ProviderSlugLydia is the Lydia mobile payment provider
	ProviderSlugLydia ProviderSlug = "lydia"
	// ProviderSlugViva is the Viva Wallet smart checkout provider
	ProviderSlugViva ProviderSlug = "viva"
	// ProviderSlugSumUp is the SumUp online checkout provider
	ProviderSlugSumUp ProviderSlug = "sumup"
)

// IsValid returns true if the slug names a supported provider
func (s ProviderSlug) IsValid() bool {
	switch s {
	case ProviderSlugLydia, ProviderSlugViva, ProviderSlugSumUp:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderSlug
func (s ProviderSlug) String() string {
	return string(s)
}

// CreatePaymentRequest asks a provider to open an external payment session
type CreatePaymentRequest struct {
	// AmountCents is the net amount the organization must receive
	AmountCents int64
	// PayerEmail identifies the payer on the provider side
	PayerEmail string
	// Description is shown to the payer during checkout
	Description string
	// ReferenceID is our PENDING transaction reference; the provider echoes
	// it back in the settlement webhook.
	ReferenceID string
}

// Validate checks the request before it leaves the process
func (r *CreatePaymentRequest) Validate() error {
	if r.AmountCents <= 0 || r.PayerEmail == "" || r.ReferenceID == "" {
		return ErrInvalidCreateRequest
	}
	return nil
}

// CreatePaymentResponse is the provider's session handle
type CreatePaymentResponse struct {
	// PaymentID is the session identifier on the provider side
	PaymentID string
	// RedirectURL is where the payer completes the payment
	RedirectURL string
}

// WebhookVerification is the outcome of authenticating an inbound callback.
// Malformed or badly signed input yields IsValid=false with a nil error;
// a non-nil error is reserved for infrastructure faults.
type WebhookVerification struct {
	IsValid bool
	// TransactionRef is our reference extracted from the callback, empty
	// when the callback does not resolve to one.
	TransactionRef string
	// Failed is true when the provider reports a definitive payment failure
	// for the referenced transaction.
	Failed bool
}

// Provider is the port over one external payment service. Concrete adapters
// live in the infrastructure layer, one per supported slug; the set is
// closed on purpose.
type Provider interface {
	// Slug returns the identity of this provider
	Slug() ProviderSlug

	// CreatePayment opens a payment session. Calls must carry a bounded
	// timeout; network or auth failures surface as ErrProviderUnavailable.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)

	// VerifyWebhook authenticates a raw callback (body plus query/form
	// params) and extracts which transaction it concerns.
	VerifyWebhook(ctx context.Context, payload []byte, params url.Values) (*WebhookVerification, error)
}

// Registry resolves an enabled provider by slug. A disabled or unknown slug
// resolves to ErrProviderNotAvailable, never to a usable instance.
type Registry interface {
	Resolve(ctx context.Context, slug ProviderSlug) (Provider, error)
	// ListEnabled returns the payment methods currently open for top-ups
	ListEnabled(ctx context.Context) ([]*Method, error)
}
