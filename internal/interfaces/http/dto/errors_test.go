package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"domain not found", "NOT_FOUND", ErrCodeNotFound},
		{"account not found folds to not found", "ACCOUNT_NOT_FOUND", ErrCodeNotFound},
		{"insufficient funds", "INSUFFICIENT_FUNDS", ErrCodeInsufficientFunds},
		{"invalid state", "INVALID_STATE", ErrCodeInvalidState},
		{"validation alias", "INVALID_AMOUNT", ErrCodeValidation},
		{"already standardized", ErrCodeForbidden, ErrCodeForbidden},
		{"unknown falls back to internal", "SOMETHING_ODD", ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.code))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(ErrCodeNotFound))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeAlreadyExists))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(ErrCodeInsufficientFunds))
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus(ErrCodeProviderUnavailable))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("ERR_WHATEVER"))
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 20, 45)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(45), meta.Total)
}

func TestListRequestNormalize(t *testing.T) {
	r := ListRequest{Page: 0, PageSize: 1000}
	r.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 100, r.PageSize)
}
