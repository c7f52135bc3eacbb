package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/kasso/backend/internal/application/event"
	"github.com/kasso/backend/internal/application/report"
	"github.com/kasso/backend/internal/domain/event"
)

// EventHandler serves the event lifecycle and its profit/loss report
type EventHandler struct {
	BaseHandler
	events  *appevent.EventService
	reports *report.EventReportService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(events *appevent.EventService, reports *report.EventReportService, logger *zap.Logger) *EventHandler {
	return &EventHandler{BaseHandler: NewBaseHandler(logger), events: events, reports: reports}
}

// RegisterRoutes registers event routes
func (h *EventHandler) RegisterRoutes(rg *gin.RouterGroup) {
	events := rg.Group("/events")
	{
		events.POST("", h.Create)
		events.GET("/:id", h.Get)
		events.POST("/:id/activate", h.Activate)
		events.POST("/:id/close", h.Close)
		events.POST("/:id/archive", h.Archive)
		events.POST("/:id/revenues", h.AddRevenue)
		events.POST("/:id/expenses", h.AddExpense)
		events.POST("/:id/splits", h.AddSplit)
		events.POST("/:id/participants", h.Join)
		events.GET("/:id/report", h.Report)
	}
	rg.GET("/shops/:shopId/events", h.ListByShop)
}

// EventEntryResponse is one revenue/expense line of an event
type EventEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Label       string     `json:"label"`
	AmountCents int64      `json:"amount_cents"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventResponse is the API shape of an event
type EventResponse struct {
	ID                    uuid.UUID            `json:"id"`
	ShopID                uuid.UUID            `json:"shop_id"`
	Name                  string               `json:"name"`
	Type                  string               `json:"type"`
	Status                string               `json:"status"`
	AcompteCents          int64                `json:"acompte_cents"`
	AcompteCollectedCents int64                `json:"acompte_collected_cents"`
	AcompteBalanceCents   int64                `json:"acompte_balance_cents"`
	Revenues              []EventEntryResponse `json:"revenues"`
	Expenses              []EventEntryResponse `json:"expenses"`
	Splits                []EventEntryResponse `json:"splits"`
	Participants          []uuid.UUID          `json:"participants"`
	ClosedAt              *time.Time           `json:"closed_at,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
}

func toEventResponse(e *event.Event) EventResponse {
	resp := EventResponse{
		ID:                    e.ID,
		ShopID:                e.ShopID,
		Name:                  e.Name,
		Type:                  e.Type.String(),
		Status:                e.Status.String(),
		AcompteCents:          e.AcompteCents,
		AcompteCollectedCents: e.AcompteCollectedCents,
		AcompteBalanceCents:   e.AcompteBalanceCents(),
		Revenues:              make([]EventEntryResponse, 0, len(e.Revenues)),
		Expenses:              make([]EventEntryResponse, 0, len(e.Expenses)),
		Splits:                make([]EventEntryResponse, 0, len(e.Splits)),
		Participants:          make([]uuid.UUID, 0, len(e.Participants)),
		ClosedAt:              e.ClosedAt,
		CreatedAt:             e.CreatedAt,
	}
	for _, r := range e.Revenues {
		resp.Revenues = append(resp.Revenues, EventEntryResponse{
			ID: r.ID, Label: r.Label, AmountCents: r.AmountCents, CreatedAt: r.CreatedAt,
		})
	}
	for _, x := range e.Expenses {
		resp.Expenses = append(resp.Expenses, EventEntryResponse{
			ID: x.ID, Label: x.Label, AmountCents: x.AmountCents, CreatedAt: x.CreatedAt,
		})
	}
	for _, s := range e.Splits {
		resp.Splits = append(resp.Splits, EventEntryResponse{
			ID: s.ID, Label: s.Label, AmountCents: s.AmountCents, UserID: s.UserID, CreatedAt: s.CreatedAt,
		})
	}
	for _, p := range e.Participants {
		resp.Participants = append(resp.Participants, p.UserID)
	}
	return resp
}

// CreateEventRequest opens a DRAFT event on a shop
type CreateEventRequest struct {
	ShopID       uuid.UUID `json:"shop_id" binding:"required"`
	Name         string    `json:"name" binding:"required,max=100"`
	Type         string    `json:"type" binding:"required,oneof=COMMERCIAL SHARED_COST"`
	AcompteCents int64     `json:"acompte_cents" binding:"omitempty,gte=0"`
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	e, err := h.events.Create(c.Request.Context(), appevent.CreateEventRequest{
		ShopID:       req.ShopID,
		Name:         req.Name,
		Type:         event.EventType(req.Type),
		AcompteCents: req.AcompteCents,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toEventResponse(e))
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid event ID")
		return
	}
	e, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toEventResponse(e))
}

func (h *EventHandler) transition(c *gin.Context, apply func(*gin.Context, uuid.UUID) (*event.Event, error)) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid event ID")
		return
	}
	e, err := apply(c, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toEventResponse(e))
}

// Activate handles POST /events/:id/activate
func (h *EventHandler) Activate(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID) (*event.Event, error) {
		return h.events.Activate(c.Request.Context(), id)
	})
}

// Close handles POST /events/:id/close
func (h *EventHandler) Close(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID) (*event.Event, error) {
		return h.events.Close(c.Request.Context(), id)
	})
}

// Archive handles POST /events/:id/archive
func (h *EventHandler) Archive(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID) (*event.Event, error) {
		return h.events.Archive(c.Request.Context(), id)
	})
}

// EventEntryRequest attaches a revenue or expense line to an event
type EventEntryRequest struct {
	Label       string     `json:"label" binding:"required,max=255"`
	AmountCents int64      `json:"amount_cents" binding:"required,gt=0"`
	UserID      *uuid.UUID `json:"user_id"`
}

// AddRevenue handles POST /events/:id/revenues
func (h *EventHandler) AddRevenue(c *gin.Context) {
	h.addEntry(c, func(c *gin.Context, id uuid.UUID, req EventEntryRequest) (*event.Event, error) {
		return h.events.AddRevenue(c.Request.Context(), id, req.Label, req.AmountCents)
	})
}

// AddExpense handles POST /events/:id/expenses
func (h *EventHandler) AddExpense(c *gin.Context) {
	h.addEntry(c, func(c *gin.Context, id uuid.UUID, req EventEntryRequest) (*event.Event, error) {
		return h.events.AddExpense(c.Request.Context(), id, req.Label, req.AmountCents)
	})
}

// AddSplit handles POST /events/:id/splits
func (h *EventHandler) AddSplit(c *gin.Context) {
	h.addEntry(c, func(c *gin.Context, id uuid.UUID, req EventEntryRequest) (*event.Event, error) {
		return h.events.AddSplit(c.Request.Context(), id, req.Label, req.AmountCents, req.UserID)
	})
}

func (h *EventHandler) addEntry(c *gin.Context, apply func(*gin.Context, uuid.UUID, EventEntryRequest) (*event.Event, error)) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid event ID")
		return
	}
	var req EventEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	e, err := apply(c, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toEventResponse(e))
}

// Join handles POST /events/:id/participants
func (h *EventHandler) Join(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid event ID")
		return
	}
	e, err := h.events.Join(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toEventResponse(e))
}

// ListByShopRequest filters the per-shop event listing
type ListByShopRequest struct {
	IncludeArchived bool `form:"include_archived"`
}

// ListByShop handles GET /shops/:shopId/events
func (h *EventHandler) ListByShop(c *gin.Context) {
	shopID, ok := bindUUIDParam(c, "shopId")
	if !ok {
		h.BadRequest(c, "Invalid shop ID")
		return
	}
	var req ListByShopRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	events, err := h.events.ListByShop(c.Request.Context(), shopID, req.IncludeArchived)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	h.Success(c, out)
}

// Report handles GET /events/:id/report
func (h *EventHandler) Report(c *gin.Context) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid event ID")
		return
	}
	r, err := h.reports.Report(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}
