package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"park/internal/service"
)

// EmployeeHandler handles HTTP requests for employees.
type EmployeeHandler struct {
	vendorService *service.VendorService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(vendorService *service.VendorService) *EmployeeHandler {
	return &EmployeeHandler{vendorService: vendorService}
}

// GetEmployeeResponse is the HTTP response for fetching an employee.
type GetEmployeeResponse struct {
	Status   string                   `json:"status"`
	Employee *service.EmployeeProfile `json:"employee"`
}

// GetEmployee handles GET /v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employeeID := c.Param("id")

	profile, err := h.vendorService.GetEmployee(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, GetEmployeeResponse{Status: statusSuccess, Employee: profile})
}
