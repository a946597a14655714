package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"park/internal/service"
)

// VerificationHandler handles HTTP requests for phone verification.
type VerificationHandler struct {
	verificationService *service.VerificationService
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationService *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// SendCodeRequest is the HTTP request body for sending a verification code.
type SendCodeRequest struct {
	AccountID  string `json:"account_id"`
	IsEmployee bool   `json:"is_employee,omitempty"`
}

// SendCode handles POST /v1/verification/send
func (h *VerificationHandler) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	if _, err := h.verificationService.SendCode(c.Request.Context(), req.AccountID, req.IsEmployee); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{Message: "verification code sent", Status: statusSuccess})
}

// VerifyCodeRequest is the HTTP request body for verifying a code.
type VerifyCodeRequest struct {
	AccountID  string `json:"account_id"`
	Code       string `json:"code"`
	IsEmployee bool   `json:"is_employee,omitempty"`
}

// VerifyCode handles POST /v1/verification/verify
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	if err := h.verificationService.VerifyCode(c.Request.Context(), req.AccountID, req.Code, req.IsEmployee); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{Message: "account verified", Status: statusSuccess})
}
