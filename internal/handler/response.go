package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"park/internal/repository"
	"park/internal/service"
)

// Response statuses used in the shared envelope.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Message: err.Error(), Status: statusError})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidVendorID),
		errors.Is(err, service.ErrInvalidEmployeeID),
		errors.Is(err, service.ErrInvalidSessionID),
		errors.Is(err, service.ErrInvalidPairingToken),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidRadius),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidCoupon):
		return http.StatusBadRequest

	// Rejected transitions - Unauthorized
	case errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrExpiredCode),
		errors.Is(err, service.ErrInvalidVerificationCode),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrAlreadyRated):
		return http.StatusUnauthorized

	// Conflict errors
	case errors.Is(err, service.ErrConflictingSession),
		errors.Is(err, service.ErrLocked):
		return http.StatusConflict

	// Payment declined by the gateway
	case errors.Is(err, service.ErrPaymentRejected):
		return http.StatusPaymentRequired

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
