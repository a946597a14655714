package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"park/internal/service"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// SessionHandler handles HTTP requests for parking sessions.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// PairingCodeResponse is the HTTP response for issuing a pairing code.
type PairingCodeResponse struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Expiry string `json:"expiry"`
}

// IssuePairingCode handles POST /v1/customers/:id/code
func (h *SessionHandler) IssuePairingCode(c *gin.Context) {
	customerID := c.Param("id")

	result, err := h.sessionService.IssuePairingCode(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PairingCodeResponse{
		Status: statusSuccess,
		Code:   result.Code,
		Expiry: result.Expiry.Format(timeFormat),
	})
}

// OpenSessionRequest is the HTTP request body for opening a session.
type OpenSessionRequest struct {
	EmployeeID string `json:"employee_id"`
	VendorID   string `json:"vendor_id"`
	Token      string `json:"token"` // "code-customerId"
}

// SessionResponse is the HTTP response for session operations.
type SessionResponse struct {
	Status        string  `json:"status"`
	SessionID     string  `json:"session_id"`
	CustomerID    string  `json:"customer_id"`
	VendorID      string  `json:"vendor_id"`
	EmployeeID    string  `json:"employee_id"`
	SessionStatus string  `json:"session_status"`
	RequestTime   string  `json:"request_time"`
	ReplyTime     string  `json:"reply_time,omitempty"`
	ClosedTime    string  `json:"closed_time,omitempty"`
	TotalMinutes  int     `json:"total_minutes,omitempty"`
	TotalPrice    float64 `json:"total_price,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	ParkName      string  `json:"park_name,omitempty"`
	EmployeeName  string  `json:"employee_name,omitempty"`
}

// OpenSession handles POST /v1/sessions
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	token, err := service.ParsePairingToken(req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := h.sessionService.OpenSession(c.Request.Context(), service.OpenSessionRequest{
		EmployeeID: req.EmployeeID,
		VendorID:   req.VendorID,
		Token:      token,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SessionResponse{
		Status:        statusSuccess,
		SessionID:     session.ID,
		CustomerID:    session.CustomerID,
		VendorID:      session.VendorID,
		EmployeeID:    session.EmployeeID,
		SessionStatus: string(session.Status),
		RequestTime:   session.RequestTime.Format(timeFormat),
		CustomerName:  session.CustomerName,
		ParkName:      session.ParkName,
		EmployeeName:  session.EmployeeName,
	})
}

// RespondRequest is the HTTP request body for the customer's approval reply.
type RespondRequest struct {
	VendorID   string `json:"vendor_id"`
	CustomerID string `json:"customer_id"`
	Accept     *bool  `json:"accept"`
}

// MessageResponse is the HTTP response for operations without a payload.
type MessageResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Respond handles POST /v1/sessions/:id/respond
func (h *SessionHandler) Respond(c *gin.Context) {
	sessionID := c.Param("id")

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Accept == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	err := h.sessionService.Respond(c.Request.Context(), service.RespondRequest{
		SessionID:  sessionID,
		VendorID:   req.VendorID,
		CustomerID: req.CustomerID,
		Accept:     *req.Accept,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := "session accepted"
	if !*req.Accept {
		message = "session denied"
	}

	respondJSON(c, http.StatusOK, MessageResponse{Message: message, Status: statusSuccess})
}

// CloseSessionRequest is the HTTP request body for closing a session.
type CloseSessionRequest struct {
	VendorID   string `json:"vendor_id"`
	EmployeeID string `json:"employee_id"`
}

// CloseSessionResponse is the HTTP response for closing a session.
type CloseSessionResponse struct {
	Status       string  `json:"status"`
	SessionID    string  `json:"session_id"`
	TotalMinutes int     `json:"total_minutes"`
	TotalPrice   float64 `json:"total_price"`
	ClosedTime   string  `json:"closed_time"`
}

// CloseSession handles POST /v1/sessions/:id/close
func (h *SessionHandler) CloseSession(c *gin.Context) {
	sessionID := c.Param("id")

	var req CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	result, err := h.sessionService.CloseSession(c.Request.Context(), service.CloseSessionRequest{
		SessionID:  sessionID,
		VendorID:   req.VendorID,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CloseSessionResponse{
		Status:       statusSuccess,
		SessionID:    result.CustomerCopy.ID,
		TotalMinutes: result.CustomerCopy.TotalMinutes,
		TotalPrice:   result.CustomerCopy.TotalPrice,
		ClosedTime:   result.CustomerCopy.ClosedTime.Format(timeFormat),
	})
}

// SettlePaymentRequest is the HTTP request body for settling a session.
type SettlePaymentRequest struct {
	CustomerID         string  `json:"customer_id"`
	VendorID           string  `json:"vendor_id"`
	PaymentMethodToken string  `json:"payment_method_token"`
	CouponID           string  `json:"coupon_id,omitempty"`
	Density            float64 `json:"density"`
}

// SettlePaymentResponse is the HTTP response for settling a session.
type SettlePaymentResponse struct {
	Status        string  `json:"status"`
	PaymentID     string  `json:"payment_id"`
	AmountCharged float64 `json:"amount_charged"`
}

// SettlePayment handles POST /v1/sessions/:id/pay
func (h *SessionHandler) SettlePayment(c *gin.Context) {
	sessionID := c.Param("id")

	var req SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	result, err := h.sessionService.SettlePayment(c.Request.Context(), service.SettlePaymentRequest{
		SessionID:          sessionID,
		CustomerID:         req.CustomerID,
		VendorID:           req.VendorID,
		PaymentMethodToken: req.PaymentMethodToken,
		CouponID:           req.CouponID,
		Density:            req.Density,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SettlePaymentResponse{
		Status:        statusSuccess,
		PaymentID:     result.PaymentID,
		AmountCharged: result.AmountCharged,
	})
}

// RateSessionRequest is the HTTP request body for rating a session.
type RateSessionRequest struct {
	CustomerID     string  `json:"customer_id"`
	VendorID       string  `json:"vendor_id"`
	Security       float64 `json:"security"`
	Accessibility  float64 `json:"accessibility"`
	ServiceQuality float64 `json:"service_quality"`
	Comment        string  `json:"comment,omitempty"`
}

// RateSession handles POST /v1/sessions/:id/rate
func (h *SessionHandler) RateSession(c *gin.Context) {
	sessionID := c.Param("id")

	var req RateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	err := h.sessionService.RateSession(c.Request.Context(), service.RateSessionRequest{
		SessionID:      sessionID,
		CustomerID:     req.CustomerID,
		VendorID:       req.VendorID,
		Security:       req.Security,
		Accessibility:  req.Accessibility,
		ServiceQuality: req.ServiceQuality,
		Comment:        req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{Message: "rating recorded", Status: statusSuccess})
}
