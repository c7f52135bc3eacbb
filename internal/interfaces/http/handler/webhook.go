package handler

import (
	"errors"
	"io"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasso/backend/internal/application/ledger"
	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
)

// webhookBodyLimit caps inbound callback bodies
const webhookBodyLimit = 1 << 20 // 1 MiB

// WebhookHandler receives provider settlement callbacks. The routes are
// unauthenticated on purpose: each provider authenticates with the HMAC
// signature its adapter verifies.
type WebhookHandler struct {
	BaseHandler
	settlements *ledger.SettlementService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(settlements *ledger.SettlementService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{BaseHandler: NewBaseHandler(logger), settlements: settlements}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/:provider", h.HandleWebhook)
}

// WebhookResponse acknowledges a processed callback
type WebhookResponse struct {
	// Status is one of settled, already_settled, failed
	Status      string               `json:"status"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// HandleWebhook handles POST /webhooks/:provider
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	slug := payment.ProviderSlug(c.Param("provider"))

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		h.BadRequest(c, "Unreadable request body")
		return
	}

	// Providers deliver parameters as query strings or form fields; the
	// raw body is kept for signature verification.
	params := url.Values{}
	for k, vs := range c.Request.URL.Query() {
		params[k] = vs
	}
	if c.ContentType() == "application/x-www-form-urlencoded" {
		if form, err := url.ParseQuery(string(body)); err == nil {
			for k, vs := range form {
				params[k] = vs
			}
		}
	}

	outcome, err := h.settlements.ProcessWebhook(c.Request.Context(), slug, body, params)
	if err != nil {
		// All rejections are 400s: providers key their retry policy on the
		// status class, and none of these deliveries can ever succeed.
		switch {
		case errors.Is(err, payment.ErrProviderNotAvailable):
			h.BadRequest(c, "Unknown or disabled payment provider")
		case errors.Is(err, ledger.ErrInvalidWebhook):
			h.BadRequest(c, "Webhook rejected")
		case errors.Is(err, shared.ErrInvalidState):
			h.BadRequest(c, "Transaction can no longer be settled")
		default:
			h.HandleError(c, err)
		}
		return
	}

	resp := WebhookResponse{Status: "settled"}
	switch {
	case outcome.AlreadySettled:
		resp.Status = "already_settled"
	case outcome.Failed:
		resp.Status = "failed"
	}
	if outcome.Transaction != nil {
		tx := toTransactionResponse(outcome.Transaction)
		resp.Transaction = &tx
	}

	h.logger.Info("Webhook processed",
		zap.String("provider", slug.String()),
		zap.String("status", resp.Status))
	h.Success(c, resp)
}
