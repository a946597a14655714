package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"park/internal/service"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// RegisterCustomerRequest is the HTTP request body for registering a
// customer.
type RegisterCustomerRequest struct {
	ID          string `json:"id,omitempty"`
	NameSurname string `json:"name_surname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// RegisterCustomerResponse is the HTTP response for registering a customer.
type RegisterCustomerResponse struct {
	Status      string `json:"status"`
	CustomerID  string `json:"customer_id"`
	NameSurname string `json:"name_surname"`
	Email       string `json:"email"`
}

// RegisterCustomer handles POST /v1/customers
func (h *CustomerHandler) RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	customer, err := h.customerService.RegisterCustomer(c.Request.Context(), service.RegisterCustomerRequest{
		ID:          req.ID,
		NameSurname: req.NameSurname,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, RegisterCustomerResponse{
		Status:      statusSuccess,
		CustomerID:  customer.ID,
		NameSurname: customer.NameSurname,
		Email:       customer.Email,
	})
}
