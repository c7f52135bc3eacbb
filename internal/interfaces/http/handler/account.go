package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appwallet "github.com/kasso/backend/internal/application/wallet"
	"github.com/kasso/backend/internal/domain/wallet"
)

// AccountHandler serves personal wallets and shared fams wallets
type AccountHandler struct {
	BaseHandler
	accounts *appwallet.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *appwallet.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{BaseHandler: NewBaseHandler(logger), accounts: accounts}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("", h.RegisterUser)
		users.GET("/:id", h.GetUser)
	}
	fams := rg.Group("/fams")
	{
		fams.POST("", h.CreateFams)
		fams.GET("/:id", h.GetFams)
		fams.POST("/:id/members", h.AddMember)
		fams.DELETE("/:id/members/:userId", h.RemoveMember)
		fams.POST("/:id/members/:userId/promote", h.PromoteAdmin)
	}
}

// UserResponse is the API shape of a personal wallet
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	BalanceCents int64     `json:"balance_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserResponse(u *wallet.UserAccount) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		BalanceCents: u.BalanceCents,
		CreatedAt:    u.CreatedAt,
	}
}

// FamsMemberResponse is one membership row of a fams
type FamsMemberResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
}

// FamsResponse is the API shape of a shared wallet
type FamsResponse struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	BalanceCents int64                `json:"balance_cents"`
	Members      []FamsMemberResponse `json:"members"`
	CreatedAt    time.Time            `json:"created_at"`
}

func toFamsResponse(f *wallet.Fams) FamsResponse {
	members := make([]FamsMemberResponse, 0, len(f.Members))
	for _, m := range f.Members {
		members = append(members, FamsMemberResponse{UserID: m.UserID, IsAdmin: m.IsAdmin})
	}
	return FamsResponse{
		ID:           f.ID,
		Name:         f.Name,
		BalanceCents: f.BalanceCents,
		Members:      members,
		CreatedAt:    f.CreatedAt,
	}
}

// RegisterUserRequest opens a personal wallet
type RegisterUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
}

// RegisterUser handles POST /users
func (h *AccountHandler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	account, err := h.accounts.RegisterUser(c.Request.Context(), req.Email, req.DisplayName)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUserResponse(account))
}

// GetUser handles GET /users/:id
func (h *AccountHandler) GetUser(c *gin.Context) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	account, err := h.accounts.GetUser(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(account))
}

// CreateFamsRequest opens a shared wallet; the caller becomes its admin
type CreateFamsRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateFams handles POST /fams
func (h *AccountHandler) CreateFams(c *gin.Context) {
	actorID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req CreateFamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	fams, err := h.accounts.CreateFams(c.Request.Context(), req.Name, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFamsResponse(fams))
}

// GetFams handles GET /fams/:id
func (h *AccountHandler) GetFams(c *gin.Context) {
	id, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid fams ID")
		return
	}
	fams, err := h.accounts.GetFams(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFamsResponse(fams))
}

// AddMemberRequest enrolls a user into a fams
type AddMemberRequest struct {
	UserID  uuid.UUID `json:"user_id" binding:"required"`
	IsAdmin bool      `json:"is_admin"`
}

// AddMember handles POST /fams/:id/members
func (h *AccountHandler) AddMember(c *gin.Context) {
	actorID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	famsID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid fams ID")
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	fams, err := h.accounts.AddFamsMember(c.Request.Context(), famsID, actorID, req.UserID, req.IsAdmin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFamsResponse(fams))
}

// RemoveMember handles DELETE /fams/:id/members/:userId
func (h *AccountHandler) RemoveMember(c *gin.Context) {
	actorID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	famsID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid fams ID")
		return
	}
	userID, ok := bindUUIDParam(c, "userId")
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	fams, err := h.accounts.RemoveFamsMember(c.Request.Context(), famsID, actorID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFamsResponse(fams))
}

// PromoteAdmin handles POST /fams/:id/members/:userId/promote
func (h *AccountHandler) PromoteAdmin(c *gin.Context) {
	actorID, ok := h.getUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	famsID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid fams ID")
		return
	}
	userID, ok := bindUUIDParam(c, "userId")
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	fams, err := h.accounts.PromoteFamsAdmin(c.Request.Context(), famsID, actorID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFamsResponse(fams))
}
