package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"park/internal/service"
)

// VendorHandler handles HTTP requests for vendors and discovery.
type VendorHandler struct {
	vendorService    *service.VendorService
	discoveryService *service.DiscoveryService
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(vendorService *service.VendorService, discoveryService *service.DiscoveryService) *VendorHandler {
	return &VendorHandler{
		vendorService:    vendorService,
		discoveryService: discoveryService,
	}
}

// CreateVendorRequest is the HTTP request body for provisioning a vendor.
type CreateVendorRequest struct {
	ParkName       string  `json:"park_name"`
	Address        string  `json:"address"`
	IBAN           string  `json:"iban"`
	TaxNumber      string  `json:"tax_number"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	CommissionRate float64 `json:"commission_rate"`

	EmployeeNameSurname string `json:"employee_name_surname"`
	EmployeeEmail       string `json:"employee_email"`
	EmployeePhone       string `json:"employee_phone"`
}

// CreateVendorResponse is the HTTP response for provisioning a vendor.
type CreateVendorResponse struct {
	Status     string `json:"status"`
	VendorID   string `json:"vendor_id"`
	EmployeeID string `json:"employee_id"`
}

// CreateVendor handles POST /v1/vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Status: statusError})
		return
	}

	result, err := h.vendorService.CreateVendor(c.Request.Context(), service.CreateVendorRequest{
		ParkName:            req.ParkName,
		Address:             req.Address,
		IBAN:                req.IBAN,
		TaxNumber:           req.TaxNumber,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		CommissionRate:      req.CommissionRate,
		EmployeeNameSurname: req.EmployeeNameSurname,
		EmployeeEmail:       req.EmployeeEmail,
		EmployeePhone:       req.EmployeePhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateVendorResponse{
		Status:     statusSuccess,
		VendorID:   result.VendorID,
		EmployeeID: result.EmployeeID,
	})
}

// GetVendorResponse is the HTTP response for fetching a single vendor.
type GetVendorResponse struct {
	Status string                 `json:"status"`
	Vendor *service.VendorSummary `json:"vendor"`
}

// GetVendor handles GET /v1/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendorID := c.Param("id")

	summary, err := h.vendorService.GetVendor(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, GetVendorResponse{Status: statusSuccess, Vendor: summary})
}

// FindNearResponse is the HTTP response for a discovery query.
type FindNearResponse struct {
	Status  string                   `json:"status"`
	Vendors []*service.VendorSummary `json:"vendors"`
}

// FindNear handles GET /v1/vendors/near
func (h *VendorHandler) FindNear(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		respondError(c, service.ErrInvalidLocation)
		return
	}

	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		respondError(c, service.ErrInvalidLocation)
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "1"), 64)
	if err != nil {
		respondError(c, service.ErrInvalidRadius)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid limit", Status: statusError})
			return
		}
	}

	vendors, err := h.discoveryService.FindNear(c.Request.Context(), service.FindNearRequest{
		Latitude:    lat,
		Longitude:   lng,
		RadiusMiles: radius,
		Limit:       limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, FindNearResponse{Status: statusSuccess, Vendors: vendors})
}
