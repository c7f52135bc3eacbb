package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appmandat "github.com/kasso/backend/internal/application/mandat"
	"github.com/kasso/backend/internal/application/report"
	"github.com/kasso/backend/internal/domain/mandat"
)

// MandatHandler serves accounting periods and their benefice reports
type MandatHandler struct {
	BaseHandler
	mandats *appmandat.MandatService
	reports *report.MandatReportService
}

// NewMandatHandler creates a new MandatHandler
func NewMandatHandler(mandats *appmandat.MandatService, reports *report.MandatReportService, logger *zap.Logger) *MandatHandler {
	return &MandatHandler{BaseHandler: NewBaseHandler(logger), mandats: mandats, reports: reports}
}

// RegisterRoutes registers mandat routes
func (h *MandatHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mandats := rg.Group("/mandats")
	{
		mandats.POST("", h.Open)
		mandats.GET("", h.List)
		mandats.GET("/:id", h.Get)
		mandats.POST("/:id/finalize", h.Finalize)
		mandats.GET("/:id/report", h.Report)
	}
}

// MandatShopResponse is the per-shop slice of a mandat
type MandatShopResponse struct {
	ShopID                 uuid.UUID `json:"shop_id"`
	InitialStockValueCents int64     `json:"initial_stock_value_cents"`
	FinalStockValueCents   int64     `json:"final_stock_value_cents"`
	SalesCents             int64     `json:"sales_cents"`
	ExpensesCents          int64     `json:"expenses_cents"`
	BeneficeCents          int64     `json:"benefice_cents"`
}

// MandatResponse is the API shape of a mandat
type MandatResponse struct {
	ID                     uuid.UUID            `json:"id"`
	Name                   string               `json:"name"`
	Status                 string               `json:"status"`
	StartedAt              time.Time            `json:"started_at"`
	EndedAt                *time.Time           `json:"ended_at,omitempty"`
	InitialStockValueCents int64                `json:"initial_stock_value_cents"`
	FinalStockValueCents   int64                `json:"final_stock_value_cents"`
	FinalBeneficeCents     int64                `json:"final_benefice_cents"`
	Shops                  []MandatShopResponse `json:"shops"`
}

func toMandatResponse(m *mandat.Mandat) MandatResponse {
	resp := MandatResponse{
		ID:                     m.ID,
		Name:                   m.Name,
		Status:                 m.Status.String(),
		StartedAt:              m.StartedAt,
		EndedAt:                m.EndedAt,
		InitialStockValueCents: m.InitialStockValueCents,
		FinalStockValueCents:   m.FinalStockValueCents,
		FinalBeneficeCents:     m.FinalBeneficeCents,
		Shops:                  make([]MandatShopResponse, 0, len(m.Shops)),
	}
	for _, s := range m.Shops {
		resp.Shops = append(resp.Shops, MandatShopResponse{
			ShopID:                 s.ShopID,
			InitialStockValueCents: s.InitialStockValueCents,
			FinalStockValueCents:   s.FinalStockValueCents,
			SalesCents:             s.SalesCents,
			ExpensesCents:          s.ExpensesCents,
			BeneficeCents:          s.BeneficeCents,
		})
	}
	return resp
}

// OpenMandatRequest starts a new accounting period. Either the initial
// stock values are given explicitly or they are seeded from a previous
// finalized mandat.
type OpenMandatRequest struct {
	Name               string           `json:"name" binding:"required,max=100"`
	InitialStockByShop map[string]int64 `json:"initial_stock_by_shop"`
	FromPreviousID     *uuid.UUID       `json:"from_previous_id"`
}

// Open handles POST /mandats
func (h *MandatHandler) Open(c *gin.Context) {
	var req OpenMandatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var m *mandat.Mandat
	var err error
	if req.FromPreviousID != nil {
		m, err = h.mandats.OpenFromPrevious(c.Request.Context(), req.Name, *req.FromPreviousID)
	} else {
		stockByShop := make(map[uuid.UUID]int64, len(req.InitialStockByShop))
		for key, value := range req.InitialStockByShop {
			shopID, parseErr := uuid.Parse(key)
			if parseErr != nil {
				h.BadRequest(c, "Invalid shop ID in initial stock map")
				return
			}
			stockByShop[shopID] = value
		}
		m, err = h.mandats.Open(c.Request.Context(), req.Name, stockByShop)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMandatResponse(m))
}

// List handles GET /mandats
func (h *MandatHandler) List(c *gin.Context) {
	mandats, err := h.mandats.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]MandatResponse, 0, len(mandats))
	for _, m := range mandats {
		out = append(out, toMandatResponse(m))
	}
	h.Success(c, out)
}

// Get handles GET /mandats/:id
func (h *MandatHandler) Get(c *gin.Context) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid mandat ID")
		return
	}
	m, err := h.mandats.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMandatResponse(m))
}

// ShopClosingRequest carries the period-end figures for one shop
type ShopClosingRequest struct {
	ShopID               uuid.UUID `json:"shop_id" binding:"required"`
	FinalStockValueCents int64     `json:"final_stock_value_cents" binding:"gte=0"`
	SalesCents           int64     `json:"sales_cents" binding:"gte=0"`
	ExpensesCents        int64     `json:"expenses_cents" binding:"gte=0"`
}

// FinalizeMandatRequest closes a period with its reported figures
type FinalizeMandatRequest struct {
	Closings []ShopClosingRequest `json:"closings" binding:"required,min=1,dive"`
}

// Finalize handles POST /mandats/:id/finalize
func (h *MandatHandler) Finalize(c *gin.Context) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid mandat ID")
		return
	}
	var req FinalizeMandatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	closings := make([]mandat.ShopClosing, 0, len(req.Closings))
	for _, cl := range req.Closings {
		closings = append(closings, mandat.ShopClosing{
			ShopID:               cl.ShopID,
			FinalStockValueCents: cl.FinalStockValueCents,
			SalesCents:           cl.SalesCents,
			ExpensesCents:        cl.ExpensesCents,
		})
	}
	m, err := h.mandats.Finalize(c.Request.Context(), id, closings)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMandatResponse(m))
}

// Report handles GET /mandats/:id/report
func (h *MandatHandler) Report(c *gin.Context) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid mandat ID")
		return
	}
	r, err := h.reports.Report(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}
