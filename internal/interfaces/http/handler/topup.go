package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasso/backend/internal/application/ledger"
	"github.com/kasso/backend/internal/domain/payment"
)

// TopUpHandler serves provider-settled wallet credits and the payment
// method listing with its fee preview.
type TopUpHandler struct {
	BaseHandler
	topups *ledger.TopUpService
}

// NewTopUpHandler creates a new TopUpHandler
func NewTopUpHandler(topups *ledger.TopUpService, logger *zap.Logger) *TopUpHandler {
	return &TopUpHandler{BaseHandler: NewBaseHandler(logger), topups: topups}
}

// RegisterRoutes registers top-up routes
func (h *TopUpHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/topups", h.InitiateTopUp)
	rg.GET("/payment-methods", h.ListMethods)
}

// TopUpRequest asks for a provider-settled wallet credit
type TopUpRequest struct {
	Provider    string `json:"provider" binding:"required,oneof=lydia viva sumup"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=255"`
}

// TopUpResponse carries the pending entry and the provider redirect
type TopUpResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	RedirectURL string              `json:"redirect_url"`
	PaymentID   string              `json:"payment_id"`
}

// InitiateTopUp handles POST /topups
func (h *TopUpHandler) InitiateTopUp(c *gin.Context) {
	actorID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	result, err := h.topups.InitiateTopUp(c.Request.Context(), ledger.TopUpRequest{
		ActorID:     actorID,
		Provider:    payment.ProviderSlug(req.Provider),
		AmountCents: req.AmountCents,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, TopUpResponse{
		Transaction: toTransactionResponse(result.Transaction),
		RedirectURL: result.RedirectURL,
		PaymentID:   result.PaymentID,
	})
}

// ListMethodsRequest optionally previews payer totals for an amount
type ListMethodsRequest struct {
	AmountCents int64 `form:"amount_cents" binding:"omitempty,gt=0"`
}

// MethodResponse is one enabled payment method with its fee preview
type MethodResponse struct {
	Slug          string `json:"slug"`
	DisplayName   string `json:"display_name"`
	FeeFixedCents int64  `json:"fee_fixed_cents"`
	FeePercent    string `json:"fee_percent"`
	// TotalCents is what the payer is charged so the wallet receives the
	// requested amount net of fees. Zero when no amount was given.
	TotalCents int64 `json:"total_cents,omitempty"`
}

// ListMethods handles GET /payment-methods
func (h *TopUpHandler) ListMethods(c *gin.Context) {
	var req ListMethodsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	previews, err := h.topups.ListMethods(c.Request.Context(), req.AmountCents)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]MethodResponse, 0, len(previews))
	for _, p := range previews {
		out = append(out, MethodResponse{
			Slug:          p.Method.Slug.String(),
			DisplayName:   p.Method.DisplayName,
			FeeFixedCents: p.Method.FeeFixedCents,
			FeePercent:    p.Method.FeePercent.String(),
			TotalCents:    p.TotalCents,
		})
	}
	h.Success(c, out)
}
