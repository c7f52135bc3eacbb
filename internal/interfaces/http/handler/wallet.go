package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kasso/backend/internal/application/ledger"
	"github.com/kasso/backend/internal/domain/wallet"
	"github.com/kasso/backend/internal/interfaces/http/dto"
)

// WalletHandler serves the synchronous ledger operations: purchases,
// transfers, adjustments, balances and statements.
type WalletHandler struct {
	BaseHandler
	ledger *ledger.LedgerService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(svc *ledger.LedgerService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{BaseHandler: NewBaseHandler(logger), ledger: svc}
}

// RegisterRoutes registers wallet routes
func (h *WalletHandler) RegisterRoutes(rg *gin.RouterGroup) {
	wallets := rg.Group("/wallets")
	{
		wallets.GET("/:source/:id/balance", h.Balance)
		wallets.GET("/:source/:id/transactions", h.Statement)
	}
	rg.POST("/purchases", h.Purchase)
	rg.POST("/transfers", h.Transfer)
	rg.POST("/adjustments", h.Adjust)
}

// TransactionResponse is the API shape of one ledger entry
type TransactionResponse struct {
	ID                uuid.UUID  `json:"id"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	WalletSource      string     `json:"wallet_source"`
	AmountCents       int64      `json:"amount_cents"`
	IssuerID          uuid.UUID  `json:"issuer_id"`
	TargetUserID      *uuid.UUID `json:"target_user_id,omitempty"`
	FamsID            *uuid.UUID `json:"fams_id,omitempty"`
	ReceiverUserID    *uuid.UUID `json:"receiver_user_id,omitempty"`
	ShopID            *uuid.UUID `json:"shop_id,omitempty"`
	ProductID         *uuid.UUID `json:"product_id,omitempty"`
	Quantity          int        `json:"quantity,omitempty"`
	EventID           *uuid.UUID `json:"event_id,omitempty"`
	ProviderReference string     `json:"provider_reference,omitempty"`
	Description       string     `json:"description,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toTransactionResponse(t *wallet.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		Type:              t.Type.String(),
		Status:            t.Status.String(),
		WalletSource:      t.WalletSource.String(),
		AmountCents:       t.AmountCents,
		IssuerID:          t.IssuerID,
		TargetUserID:      t.TargetUserID,
		FamsID:            t.FamsID,
		ReceiverUserID:    t.ReceiverUserID,
		ShopID:            t.ShopID,
		ProductID:         t.ProductID,
		Quantity:          t.Quantity,
		EventID:           t.EventID,
		ProviderReference: t.ProviderReference,
		Description:       t.Description,
		CreatedAt:         t.CreatedAt,
	}
}

// parseAccountRef resolves the :source/:id path segments to an account
func parseAccountRef(c *gin.Context) (wallet.AccountRef, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return wallet.AccountRef{}, false
	}
	switch c.Param("source") {
	case "personal":
		return wallet.PersonalAccount(id), true
	case "fams":
		return wallet.FamsAccount(id), true
	default:
		return wallet.AccountRef{}, false
	}
}

// accountRefFromBody builds an AccountRef from request body fields
func accountRefFromBody(source string, id uuid.UUID) (wallet.AccountRef, bool) {
	switch wallet.WalletSource(source) {
	case wallet.WalletSourcePersonal:
		return wallet.PersonalAccount(id), true
	case wallet.WalletSourceFamily:
		return wallet.FamsAccount(id), true
	default:
		return wallet.AccountRef{}, false
	}
}

// BalanceResponse is the cached balance of one account
type BalanceResponse struct {
	Source       string    `json:"source"`
	AccountID    uuid.UUID `json:"account_id"`
	BalanceCents int64     `json:"balance_cents"`
}

// Balance handles GET /wallets/:source/:id/balance
func (h *WalletHandler) Balance(c *gin.Context) {
	ref, ok := parseAccountRef(c)
	if !ok {
		h.BadRequest(c, "Invalid wallet reference")
		return
	}
	balance, err := h.ledger.Balance(c.Request.Context(), ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BalanceResponse{
		Source:       ref.Source.String(),
		AccountID:    ref.ID,
		BalanceCents: balance,
	})
}

// StatementRequest narrows a ledger listing
type StatementRequest struct {
	dto.ListRequest
	Type    string `form:"type" binding:"omitempty,oneof=TOPUP PURCHASE TRANSFER ADJUSTMENT"`
	Status  string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
	EventID string `form:"event_id" binding:"omitempty,uuid"`
	ShopID  string `form:"shop_id" binding:"omitempty,uuid"`
}

// Statement handles GET /wallets/:source/:id/transactions
func (h *WalletHandler) Statement(c *gin.Context) {
	ref, ok := parseAccountRef(c)
	if !ok {
		h.BadRequest(c, "Invalid wallet reference")
		return
	}
	var req StatementRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := wallet.TransactionFilter{Page: req.Page, PageSize: req.PageSize}
	if req.Type != "" {
		txType := wallet.TransactionType(req.Type)
		filter.Type = &txType
	}
	if req.Status != "" {
		status := wallet.TransactionStatus(req.Status)
		filter.Status = &status
	}
	if req.EventID != "" {
		eventID := uuid.MustParse(req.EventID)
		filter.EventID = &eventID
	}
	if req.ShopID != "" {
		shopID := uuid.MustParse(req.ShopID)
		filter.ShopID = &shopID
	}

	transactions, total, err := h.ledger.Statement(c.Request.Context(), ref, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	h.SuccessWithMeta(c, out, dto.NewMeta(req.Page, req.PageSize, total))
}

// PurchaseRequest debits a wallet for a shop sale
type PurchaseRequest struct {
	TargetSource string     `json:"target_source" binding:"required,oneof=PERSONAL FAMILY"`
	TargetID     uuid.UUID  `json:"target_id" binding:"required"`
	AmountCents  int64      `json:"amount_cents" binding:"required,gt=0"`
	ShopID       uuid.UUID  `json:"shop_id" binding:"required"`
	ProductID    *uuid.UUID `json:"product_id"`
	Quantity     int        `json:"quantity" binding:"omitempty,gt=0"`
	EventID      *uuid.UUID `json:"event_id"`
	Description  string     `json:"description" binding:"max=255"`
}

// Purchase handles POST /purchases
func (h *WalletHandler) Purchase(c *gin.Context) {
	issuerID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	target, ok := accountRefFromBody(req.TargetSource, req.TargetID)
	if !ok {
		h.BadRequest(c, "Invalid target wallet")
		return
	}
	tx, err := h.ledger.Purchase(c.Request.Context(), ledger.PurchaseRequest{
		IssuerID:    issuerID,
		Target:      target,
		AmountCents: req.AmountCents,
		ShopID:      req.ShopID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		EventID:     req.EventID,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTransactionResponse(tx))
}

// TransferRequest moves money between two wallets
type TransferRequest struct {
	SourceSource   string    `json:"source_source" binding:"required,oneof=PERSONAL FAMILY"`
	SourceID       uuid.UUID `json:"source_id" binding:"required"`
	ReceiverSource string    `json:"receiver_source" binding:"required,oneof=PERSONAL FAMILY"`
	ReceiverID     uuid.UUID `json:"receiver_id" binding:"required"`
	AmountCents    int64     `json:"amount_cents" binding:"required,gt=0"`
	Description    string    `json:"description" binding:"max=255"`
}

// TransferResponse returns both legs of a recorded transfer
type TransferResponse struct {
	Debit  TransactionResponse `json:"debit"`
	Credit TransactionResponse `json:"credit"`
}

// Transfer handles POST /transfers
func (h *WalletHandler) Transfer(c *gin.Context) {
	issuerID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	source, ok := accountRefFromBody(req.SourceSource, req.SourceID)
	if !ok {
		h.BadRequest(c, "Invalid source wallet")
		return
	}
	receiver, ok := accountRefFromBody(req.ReceiverSource, req.ReceiverID)
	if !ok {
		h.BadRequest(c, "Invalid receiver wallet")
		return
	}
	debit, credit, err := h.ledger.Transfer(c.Request.Context(), ledger.TransferRequest{
		IssuerID:    issuerID,
		Source:      source,
		Receiver:    receiver,
		AmountCents: req.AmountCents,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, TransferResponse{
		Debit:  toTransactionResponse(debit),
		Credit: toTransactionResponse(credit),
	})
}

// AdjustRequest sets a wallet balance by administrative decision
type AdjustRequest struct {
	TargetSource    string    `json:"target_source" binding:"required,oneof=PERSONAL FAMILY"`
	TargetID        uuid.UUID `json:"target_id" binding:"required"`
	NewBalanceCents int64     `json:"new_balance_cents"`
	Description     string    `json:"description" binding:"required,max=255"`
}

// Adjust handles POST /adjustments
func (h *WalletHandler) Adjust(c *gin.Context) {
	issuerID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	target, ok := accountRefFromBody(req.TargetSource, req.TargetID)
	if !ok {
		h.BadRequest(c, "Invalid target wallet")
		return
	}
	tx, err := h.ledger.Adjust(c.Request.Context(), ledger.AdjustRequest{
		IssuerID:        issuerID,
		Target:          target,
		NewBalanceCents: req.NewBalanceCents,
		Description:     req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTransactionResponse(tx))
}
