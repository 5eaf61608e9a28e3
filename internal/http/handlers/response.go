// Package handlers provides the HTTP handlers of the church website API.
//
// Every response carries a "success" flag. Failures use ErrorResponse;
// single resources are wrapped in Envelope and listings in ListEnvelope.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "code": "not_found",
//	  "message": "Sermon not found",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000"
//	}
//
// Example list response:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "count": 2, "totalPages": 3, "currentPage": 1, "data": [...] }
package handlers

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/http/middleware"
	"github.com/tbourn/go-church-backend/internal/services"
	"github.com/tbourn/go-church-backend/internal/validation"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Sermon not found"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Per-field validation failures
	Errors []validation.FieldError `json:"errors,omitempty"`
	// Goroutine stack, only when APP_ENV=development
	Stack string `json:"stack,omitempty"`
}

// Envelope wraps a single resource or a mutation result.
type Envelope struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Sermon created successfully"`
	Data    any    `json:"data,omitempty"`
}

// ListEnvelope wraps a listing. TotalPages and CurrentPage are only set on
// paginated listings.
type ListEnvelope struct {
	Success     bool `json:"success" example:"true"`
	Count       int  `json:"count" example:"10"`
	TotalPages  *int `json:"totalPages,omitempty" example:"3"`
	CurrentPage *int `json:"currentPage,omitempty" example:"1"`
	Data        any  `json:"data"`
}

// fail aborts the request with the error envelope. 5xx responses are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      code,
		Message:   msg,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// Fail is the exported variant of fail() for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// errorStatus maps a service error kind to the HTTP status and code.
func errorStatus(k services.Kind) (int, string) {
	switch k {
	case services.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case services.KindValidation:
		return http.StatusBadRequest, ErrCodeValidation
	case services.KindConflict:
		return http.StatusConflict, ErrCodeConflict
	case services.KindUpstream:
		return http.StatusServiceUnavailable, ErrCodeUpstream
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// failErr translates err into the error envelope. Classified service errors
// keep their message; anything else becomes a logged 500 with a generic
// message.
func (h *Handlers) failErr(c *gin.Context, err error) {
	var (
		status = http.StatusInternalServerError
		code   = ErrCodeInternal
		msg    = "Server Error"
		fields []validation.FieldError
	)

	var se *services.Error
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status, code = http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge
		msg = "Request body too large"
	case errors.As(err, &se):
		status, code = errorStatus(se.Kind)
		if status < http.StatusInternalServerError {
			msg = se.Error()
		} else if se.Kind == services.KindUpstream {
			msg = se.Message
		}
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		fields = verr.Fields
	}

	lg := middleware.LoggerFrom(c)
	if status >= http.StatusInternalServerError {
		lg.Error().Err(err).Int("status", status).Str("code", code).Msg("api error")
	} else {
		lg.Debug().Err(err).Int("status", status).Str("code", code).Msg("request rejected")
	}

	resp := ErrorResponse{
		Code:      code,
		Message:   msg,
		RequestID: middleware.RequestIDFrom(c),
		Errors:    fields,
	}
	if h.opts.Development {
		resp.Stack = string(debug.Stack())
	}
	c.AbortWithStatusJSON(status, resp)
}

// ok writes a single-resource envelope.
func ok(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Envelope{Success: true, Message: msg, Data: data})
}

// okList writes an unpaginated listing.
func okList[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, ListEnvelope{Success: true, Count: len(items), Data: items})
}

// okPage writes one page of a paginated listing.
func okPage[T any](c *gin.Context, p services.PageResult[T]) {
	totalPages, page := p.TotalPages, p.Page
	c.JSON(http.StatusOK, ListEnvelope{
		Success:     true,
		Count:       len(p.Items),
		TotalPages:  &totalPages,
		CurrentPage: &page,
		Data:        p.Items,
	})
}
