package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"park/internal/domain"
	"park/internal/geo"
	"park/internal/repository"
)

const (
	defaultOpenTime  = "09:00"
	defaultCloseTime = "18:00"
	defaultTaxRate   = 0.18
)

// VendorService handles vendor provisioning and lookups.
type VendorService struct {
	vendors   repository.VendorRepository
	employees repository.EmployeeRepository
	density   *DensityService
	log       *logrus.Logger
}

// NewVendorService creates a new VendorService.
func NewVendorService(
	vendors repository.VendorRepository,
	employees repository.EmployeeRepository,
	density *DensityService,
	log *logrus.Logger,
) *VendorService {
	return &VendorService{
		vendors:   vendors,
		employees: employees,
		density:   density,
		log:       log,
	}
}

// CreateVendorRequest contains the parameters for provisioning a vendor.
type CreateVendorRequest struct {
	ParkName       string
	Address        string
	IBAN           string
	TaxNumber      string
	Latitude       float64
	Longitude      float64
	CommissionRate float64

	// Owning employee. If no employee exists with this email one is
	// created.
	EmployeeNameSurname string
	EmployeeEmail       string
	EmployeePhone       string
}

// CreateVendorResponse contains the identifiers of the provisioned records.
type CreateVendorResponse struct {
	VendorID   string
	EmployeeID string
}

// CreateVendor provisions a vendor with defaults, computes its geohash from
// the coordinates, and registers the owning employee. The geohash is written
// once here and never recomputed if the coordinates later change.
func (s *VendorService) CreateVendor(ctx context.Context, req CreateVendorRequest) (*CreateVendorResponse, error) {
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, ErrInvalidLocation
	}

	now := time.Now()

	employee, err := s.employees.GetByEmail(ctx, req.EmployeeEmail)
	if err != nil {
		if err != repository.ErrNotFound {
			return nil, err
		}
		employee = &domain.Employee{
			ID:          uuid.New().String(),
			NameSurname: req.EmployeeNameSurname,
			Email:       req.EmployeeEmail,
			Phone:       req.EmployeePhone,
			CreatedAt:   now,
		}
		if err := s.employees.Create(ctx, employee); err != nil {
			return nil, err
		}
	}

	vendor := &domain.Vendor{
		ID:             uuid.New().String(),
		ParkName:       req.ParkName,
		Address:        req.Address,
		IBAN:           req.IBAN,
		TaxNumber:      req.TaxNumber,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Geohash:        geo.Encode(req.Latitude, req.Longitude),
		OpenTime:       defaultOpenTime,
		CloseTime:      defaultCloseTime,
		PriceTable:     domain.DefaultPriceTable(),
		CommissionRate: req.CommissionRate,
		TaxRate:        defaultTaxRate,
		Security:       5,
		Accessibility:  5,
		ServiceQuality: 5,
		Rating:         5,
		Active:         false,
		CreatedAt:      now,
	}

	if err := s.vendors.Create(ctx, vendor); err != nil {
		return nil, err
	}

	if err := s.vendors.AddMembership(ctx, &domain.VendorMembership{
		VendorID:   vendor.ID,
		EmployeeID: employee.ID,
		Permission: "owner",
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"vendor_id":   vendor.ID,
		"employee_id": employee.ID,
	}).Info("vendor provisioned")

	return &CreateVendorResponse{VendorID: vendor.ID, EmployeeID: employee.ID}, nil
}

// GetVendor returns the public view of a vendor together with its recent
// density average.
func (s *VendorService) GetVendor(ctx context.Context, vendorID string) (*VendorSummary, error) {
	if vendorID == "" {
		return nil, ErrInvalidVendorID
	}

	vendor, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	summary := summarizeVendor(vendor)

	density, err := s.density.RecentAverage(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	summary.Density = density

	return summary, nil
}

// EmployeeVendor is one vendor an employee belongs to.
type EmployeeVendor struct {
	VendorID   string `json:"vendorId"`
	ParkName   string `json:"parkName"`
	Address    string `json:"address"`
	Active     bool   `json:"active"`
	Permission string `json:"permission"`
}

// EmployeeProfile is an employee together with their vendor memberships.
type EmployeeProfile struct {
	EmployeeID  string           `json:"employeeId"`
	NameSurname string           `json:"employeeNameSurname"`
	Email       string           `json:"employeeEmail"`
	Phone       string           `json:"employeePhoneNumber"`
	Image       string           `json:"employeeImage"`
	Verified    bool             `json:"verified"`
	Vendors     []EmployeeVendor `json:"vendors"`
}

// GetEmployee returns an employee and the vendors they work at.
func (s *VendorService) GetEmployee(ctx context.Context, employeeID string) (*EmployeeProfile, error) {
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.vendors.ListMembershipsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	profile := &EmployeeProfile{
		EmployeeID:  employee.ID,
		NameSurname: employee.NameSurname,
		Email:       employee.Email,
		Phone:       employee.Phone,
		Image:       employee.Image,
		Verified:    employee.Verified,
		Vendors:     make([]EmployeeVendor, 0, len(memberships)),
	}

	for _, m := range memberships {
		vendor, err := s.vendors.GetByID(ctx, m.VendorID)
		if err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return nil, err
		}
		profile.Vendors = append(profile.Vendors, EmployeeVendor{
			VendorID:   vendor.ID,
			ParkName:   vendor.ParkName,
			Address:    vendor.Address,
			Active:     vendor.Active,
			Permission: m.Permission,
		})
	}

	return profile, nil
}
