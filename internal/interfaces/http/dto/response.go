package dto

// Response is the unified API response envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries error details in a response
type ErrorInfo struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Meta carries pagination metadata for list responses
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response with data
func NewSuccessResponse(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta creates a success response with pagination metadata
func NewSuccessResponseWithMeta(data interface{}, meta *Meta) *Response {
	return &Response{Success: true, Data: data, Meta: meta}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) *Response {
	return &Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) *Response {
	return &Response{Success: false, Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// NewErrorResponseWithDetails creates an error response with extra details
func NewErrorResponseWithDetails(code, message string, details interface{}) *Response {
	return &Response{Success: false, Error: &ErrorInfo{Code: code, Message: message, Details: details}}
}

// NewMeta builds pagination metadata from a total row count
func NewMeta(page, pageSize int, total int64) *Meta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Meta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// ListRequest is the common query shape of paginated listings
type ListRequest struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// Normalize clamps pagination to usable values
func (r *ListRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// IDRequest binds a UUID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
