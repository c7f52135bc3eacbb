package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kasso/backend/internal/domain/payment"
	"github.com/kasso/backend/internal/domain/shared"
	"github.com/kasso/backend/internal/domain/wallet"
	"github.com/kasso/backend/internal/interfaces/http/dto"
	"github.com/kasso/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common response helpers for all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// getRequestID extracts the request ID from the context
func (h *BaseHandler) getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// getUserID extracts the authenticated user's ID
func (h *BaseHandler) getUserID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetJWTUserID(c)
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, meta *dto.Meta) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, meta))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode sends an error response for a standardized code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, h.getRequestID(c)))
}

// BadRequest sends a 400 validation error
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeValidation, message)
}

// Unauthorized sends a 401 error
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeUnauthorized, message)
}

// NotFound sends a 404 error
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeNotFound, message)
}

// HandleError maps an application error onto the response envelope
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.ErrorWithCode(c, code, domainErr.Message)

	case errors.Is(err, payment.ErrProviderNotAvailable):
		h.ErrorWithCode(c, dto.ErrCodeBusinessRule, "Payment provider is not available")

	case errors.Is(err, payment.ErrProviderUnavailable):
		h.ErrorWithCode(c, dto.ErrCodeProviderUnavailable, "Payment provider is temporarily unavailable")

	case errors.Is(err, payment.ErrInvalidCreateRequest),
		errors.Is(err, wallet.ErrZeroAmount),
		errors.Is(err, wallet.ErrMissingIssuer),
		errors.Is(err, wallet.ErrMissingProviderReference),
		errors.Is(err, wallet.ErrUnbalancedTransfer):
		h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())

	case errors.Is(err, wallet.ErrTransactionFinal):
		h.ErrorWithCode(c, dto.ErrCodeInvalidState, err.Error())

	default:
		h.logger.Error("Unhandled error",
			zap.String("request_id", h.getRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeInternal, "Internal server error")
	}
}

// bindUUIDParam parses a UUID path parameter
func bindUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
