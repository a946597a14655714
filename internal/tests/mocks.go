package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"park/internal/domain"
	"park/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK CUSTOMER REPOSITORY
// ──────────────────────────────────────────────

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
	coupons   map[string]*domain.Coupon

	// Counters for verification
	CreateCallCount       int32
	DeleteCouponCallCount int32

	// Error injection
	CreateError       error
	DeleteCouponError error
}

// NewMockCustomerRepository creates a new mock customer repository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
		coupons:   make(map[string]*domain.Coupon),
	}
}

// AddCustomer adds a customer to the mock repository.
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = customer
}

// AddCoupon adds a coupon to the mock repository.
func (m *MockCustomerRepository) AddCoupon(coupon *domain.Coupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[coupon.ID] = coupon
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = customer
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customer, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *customer
	return &copy, nil
}

func (m *MockCustomerRepository) UpdatePairingCode(ctx context.Context, id, code string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	customer.PairingCode = code
	customer.PairingCodeExpiry = expiry
	return nil
}

func (m *MockCustomerRepository) UpdateVerification(ctx context.Context, id, code string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	customer.VerificationCode = code
	customer.Verified = verified
	return nil
}

func (m *MockCustomerRepository) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[coupon.ID] = coupon
	return nil
}

func (m *MockCustomerRepository) GetCoupon(ctx context.Context, customerID, couponID string) (*domain.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coupon, ok := m.coupons[couponID]
	if !ok || coupon.CustomerID != customerID {
		return nil, repository.ErrNotFound
	}
	copy := *coupon
	return &copy, nil
}

func (m *MockCustomerRepository) DeleteCoupon(ctx context.Context, customerID, couponID string) error {
	atomic.AddInt32(&m.DeleteCouponCallCount, 1)
	if m.DeleteCouponError != nil {
		return m.DeleteCouponError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coupon, ok := m.coupons[couponID]
	if !ok || coupon.CustomerID != customerID {
		return repository.ErrNotFound
	}
	delete(m.coupons, couponID)
	return nil
}

// GetCustomer returns a customer for test assertions.
func (m *MockCustomerRepository) GetCustomer(id string) *domain.Customer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.customers[id]
}

// CouponCount returns the number of stored coupons.
func (m *MockCustomerRepository) CouponCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.coupons)
}

// ──────────────────────────────────────────────
// MOCK EMPLOYEE REPOSITORY
// ──────────────────────────────────────────────

// MockEmployeeRepository is a mock implementation of EmployeeRepository.
type MockEmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]*domain.Employee

	CreateCallCount int32
	CreateError     error
}

// NewMockEmployeeRepository creates a new mock employee repository.
func NewMockEmployeeRepository() *MockEmployeeRepository {
	return &MockEmployeeRepository{
		employees: make(map[string]*domain.Employee),
	}
}

// AddEmployee adds an employee to the mock repository.
func (m *MockEmployeeRepository) AddEmployee(employee *domain.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[employee.ID] = employee
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[employee.ID] = employee
	return nil
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	employee, ok := m.employees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *employee
	return &copy, nil
}

func (m *MockEmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.employees {
		if e.Email == email {
			copy := *e
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockEmployeeRepository) UpdateVerification(ctx context.Context, id, code string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	employee, ok := m.employees[id]
	if !ok {
		return repository.ErrNotFound
	}
	employee.VerificationCode = code
	employee.Verified = verified
	return nil
}

// ──────────────────────────────────────────────
// MOCK VENDOR REPOSITORY
// ──────────────────────────────────────────────

// MockVendorRepository is a mock implementation of VendorRepository.
type MockVendorRepository struct {
	mu          sync.RWMutex
	vendors     map[string]*domain.Vendor
	memberships []*domain.VendorMembership

	UpdateRatingsCallCount int32
	UpdateRatingsError     error
}

// NewMockVendorRepository creates a new mock vendor repository.
func NewMockVendorRepository() *MockVendorRepository {
	return &MockVendorRepository{
		vendors: make(map[string]*domain.Vendor),
	}
}

// AddVendor adds a vendor to the mock repository.
func (m *MockVendorRepository) AddVendor(vendor *domain.Vendor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vendors[vendor.ID] = vendor
}

func (m *MockVendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vendors[vendor.ID] = vendor
	return nil
}

func (m *MockVendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vendor, ok := m.vendors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vendor
	return &copy, nil
}

func (m *MockVendorRepository) QueryByGeohashRange(ctx context.Context, lower, upper string, limit int) ([]*domain.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Vendor
	for _, v := range m.vendors {
		if v.Geohash >= lower && v.Geohash <= upper {
			copy := *v
			result = append(result, &copy)
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *MockVendorRepository) UpdateRatings(ctx context.Context, id string, security, accessibility, serviceQuality, rating float64) error {
	atomic.AddInt32(&m.UpdateRatingsCallCount, 1)
	if m.UpdateRatingsError != nil {
		return m.UpdateRatingsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vendor, ok := m.vendors[id]
	if !ok {
		return repository.ErrNotFound
	}
	vendor.Security = security
	vendor.Accessibility = accessibility
	vendor.ServiceQuality = serviceQuality
	vendor.Rating = rating
	return nil
}

func (m *MockVendorRepository) AddMembership(ctx context.Context, membership *domain.VendorMembership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberships = append(m.memberships, membership)
	return nil
}

func (m *MockVendorRepository) ListMembershipsByEmployee(ctx context.Context, employeeID string) ([]*domain.VendorMembership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.VendorMembership
	for _, mem := range m.memberships {
		if mem.EmployeeID == employeeID {
			result = append(result, mem)
		}
	}
	return result, nil
}

// GetVendor returns a vendor for test assertions.
func (m *MockVendorRepository) GetVendor(id string) *domain.Vendor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vendors[id]
}

// ──────────────────────────────────────────────
// MOCK SESSION REPOSITORY
// ──────────────────────────────────────────────

// MockSessionRepository is a mock implementation of SessionRepository. It
// also implements SessionUnitOfWork; WithinTx simply runs fn against the
// same store, so a mid-transaction failure leaves earlier writes applied.
// Tests that need all-or-nothing semantics inject errors before any write.
type MockSessionRepository struct {
	mu             sync.RWMutex
	customerCopies map[string]*domain.Session
	vendorCopies   map[string]*domain.Session

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateCustomerCopyError error
	CreateVendorCopyError   error
	UpdateCustomerCopyError error
	UpdateVendorCopyError   error
}

// NewMockSessionRepository creates a new mock session repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		customerCopies: make(map[string]*domain.Session),
		vendorCopies:   make(map[string]*domain.Session),
	}
}

// AddCustomerCopy seeds the customer-side copy of a session.
func (m *MockSessionRepository) AddCustomerCopy(s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.customerCopies[s.ID] = &copy
}

// AddVendorCopy seeds the vendor-side copy of a session.
func (m *MockSessionRepository) AddVendorCopy(s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.vendorCopies[s.ID] = &copy
}

func (m *MockSessionRepository) CreateCustomerCopy(ctx context.Context, s *domain.Session) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateCustomerCopyError != nil {
		return m.CreateCustomerCopyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.customerCopies[s.ID] = &copy
	return nil
}

func (m *MockSessionRepository) CreateVendorCopy(ctx context.Context, s *domain.Session) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateVendorCopyError != nil {
		return m.CreateVendorCopyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *s
	m.vendorCopies[s.ID] = &copy
	return nil
}

func (m *MockSessionRepository) GetCustomerCopy(ctx context.Context, customerID, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.customerCopies[sessionID]
	if !ok || s.CustomerID != customerID {
		return nil, repository.ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (m *MockSessionRepository) GetVendorCopy(ctx context.Context, vendorID, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.vendorCopies[sessionID]
	if !ok || s.VendorID != vendorID {
		return nil, repository.ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (m *MockSessionRepository) UpdateCustomerCopy(ctx context.Context, s *domain.Session) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateCustomerCopyError != nil {
		return m.UpdateCustomerCopyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customerCopies[s.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *s
	m.customerCopies[s.ID] = &copy
	return nil
}

func (m *MockSessionRepository) UpdateVendorCopy(ctx context.Context, s *domain.Session) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateVendorCopyError != nil {
		return m.UpdateVendorCopyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vendorCopies[s.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *s
	m.vendorCopies[s.ID] = &copy
	return nil
}

func (m *MockSessionRepository) ListCustomerByStatus(ctx context.Context, customerID string, statuses []domain.SessionStatus) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Session
	for _, s := range m.customerCopies {
		if s.CustomerID != customerID {
			continue
		}
		for _, status := range statuses {
			if s.Status == status {
				copy := *s
				result = append(result, &copy)
				break
			}
		}
	}
	return result, nil
}

// WithinTx implements SessionUnitOfWork against the same in-memory store.
func (m *MockSessionRepository) WithinTx(ctx context.Context, fn func(repository.SessionRepository) error) error {
	return fn(m)
}

// CustomerCopy returns the stored customer-side copy for test assertions.
func (m *MockSessionRepository) CustomerCopy(sessionID string) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.customerCopies[sessionID]
}

// VendorCopy returns the stored vendor-side copy for test assertions.
func (m *MockSessionRepository) VendorCopy(sessionID string) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vendorCopies[sessionID]
}

// ──────────────────────────────────────────────
// MOCK SAMPLE REPOSITORY
// ──────────────────────────────────────────────

// MockSampleRepository is a mock implementation of SampleRepository.
type MockSampleRepository struct {
	mu             sync.RWMutex
	densitySamples []*domain.DensitySample
	ratingSamples  []*domain.RatingSample

	AppendDensityCallCount int32
	AppendDensityError     error
	AppendRatingError      error
}

// NewMockSampleRepository creates a new mock sample repository.
func NewMockSampleRepository() *MockSampleRepository {
	return &MockSampleRepository{}
}

// AddDensitySample seeds a density sample.
func (m *MockSampleRepository) AddDensitySample(sample *domain.DensitySample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.densitySamples = append(m.densitySamples, sample)
}

// AddRatingSample seeds a rating sample.
func (m *MockSampleRepository) AddRatingSample(sample *domain.RatingSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingSamples = append(m.ratingSamples, sample)
}

func (m *MockSampleRepository) AppendDensity(ctx context.Context, sample *domain.DensitySample) error {
	atomic.AddInt32(&m.AppendDensityCallCount, 1)
	if m.AppendDensityError != nil {
		return m.AppendDensityError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.densitySamples = append(m.densitySamples, sample)
	return nil
}

func (m *MockSampleRepository) DensityAverageSince(ctx context.Context, vendorID string, since time.Time) (float64, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	var count int
	for _, s := range m.densitySamples {
		if s.VendorID == vendorID && !s.TakenAt.Before(since) {
			sum += s.Density
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (m *MockSampleRepository) AppendRating(ctx context.Context, sample *domain.RatingSample) error {
	if m.AppendRatingError != nil {
		return m.AppendRatingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingSamples = append(m.ratingSamples, sample)
	return nil
}

func (m *MockSampleRepository) RatingAggregates(ctx context.Context, vendorID string) (*repository.RatingAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agg := &repository.RatingAggregate{}
	for _, s := range m.ratingSamples {
		if s.VendorID != vendorID {
			continue
		}
		agg.Security += s.Security
		agg.Accessibility += s.Accessibility
		agg.ServiceQuality += s.ServiceQuality
		agg.Count++
	}
	if agg.Count > 0 {
		agg.Security /= float64(agg.Count)
		agg.Accessibility /= float64(agg.Count)
		agg.ServiceQuality /= float64(agg.Count)
	}
	return agg, nil
}

// DensitySampleCount returns the number of stored density samples.
func (m *MockSampleRepository) DensitySampleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.densitySamples)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

// HoldCustomerLock pre-acquires a customer lock, simulating a concurrent
// holder.
func (m *MockLockStore) HoldCustomerLock(customerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks["customer:"+customerID] = true
}

// HoldSessionLock pre-acquires a session lock.
func (m *MockLockStore) HoldSessionLock(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks["session:"+sessionID] = true
}

func (m *MockLockStore) acquire(key string) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MockLockStore) release(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

func (m *MockLockStore) AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (bool, error) {
	return m.acquire("customer:" + customerID)
}

func (m *MockLockStore) ReleaseCustomerLock(ctx context.Context, customerID string) error {
	return m.release("customer:" + customerID)
}

func (m *MockLockStore) AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return m.acquire("session:" + sessionID)
}

func (m *MockLockStore) ReleaseSessionLock(ctx context.Context, sessionID string) error {
	return m.release("session:" + sessionID)
}
