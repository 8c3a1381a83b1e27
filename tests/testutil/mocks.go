package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/tenancy/backend/internal/domain/apartment"
	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/domain/complaint"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/rules"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateRentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return m.Called(ctx, id, amount).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByNationalID(ctx context.Context, nationalID string) (bool, error) {
	args := m.Called(ctx, nationalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindByApartment(ctx context.Context, apartmentName string, role identity.Role) ([]*identity.User, error) {
	args := m.Called(ctx, apartmentName, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindLandlordForApartment(ctx context.Context, apartmentName string) (*identity.User, error) {
	args := m.Called(ctx, apartmentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllLandlords(ctx context.Context) ([]*identity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

// MockApartmentRepository is a mock implementation of apartment.Repository
type MockApartmentRepository struct {
	mock.Mock
}

func (m *MockApartmentRepository) Create(ctx context.Context, a *apartment.Apartment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockApartmentRepository) Update(ctx context.Context, a *apartment.Apartment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockApartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*apartment.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apartment.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) FindByLandlordAndName(ctx context.Context, landlordID uuid.UUID, name string) (*apartment.Apartment, error) {
	args := m.Called(ctx, landlordID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apartment.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*apartment.Apartment, error) {
	args := m.Called(ctx, landlordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apartment.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) FindActive(ctx context.Context) ([]*apartment.Apartment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apartment.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) IncrementTenants(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockRegistrar records account registrations
type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) RegisterLandlord(ctx context.Context, user *identity.User, apt *apartment.Apartment) error {
	return m.Called(ctx, user, apt).Error(0)
}

func (m *MockRegistrar) RegisterTenant(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockBillRepository is a mock implementation of billing.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) ExistsForPeriod(ctx context.Context, tenantID uuid.UUID, period billing.Period) (bool, error) {
	args := m.Called(ctx, tenantID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *MockBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *MockBillRepository) Find(ctx context.Context, filter billing.BillFilter) ([]*billing.Bill, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.Bill), args.Error(1)
}

// MockComplaintRepository is a mock implementation of complaint.Repository
type MockComplaintRepository struct {
	mock.Mock
}

func (m *MockComplaintRepository) Create(ctx context.Context, c *complaint.Complaint) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockComplaintRepository) Update(ctx context.Context, c *complaint.Complaint) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*complaint.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*complaint.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*complaint.Complaint, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*complaint.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) FindByApartment(ctx context.Context, apartmentName string) ([]*complaint.Complaint, error) {
	args := m.Called(ctx, apartmentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*complaint.Complaint), args.Error(1)
}

// MockRuleBookRepository is a mock implementation of rules.Repository
type MockRuleBookRepository struct {
	mock.Mock
}

func (m *MockRuleBookRepository) Save(ctx context.Context, b *rules.RuleBook) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockRuleBookRepository) FindByLandlordAndApartment(ctx context.Context, landlordID uuid.UUID, apartmentName string) (*rules.RuleBook, error) {
	args := m.Called(ctx, landlordID, apartmentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rules.RuleBook), args.Error(1)
}

func (m *MockRuleBookRepository) FindByApartment(ctx context.Context, apartmentName string) ([]*rules.RuleBook, error) {
	args := m.Called(ctx, apartmentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rules.RuleBook), args.Error(1)
}

func (m *MockRuleBookRepository) FindByRuleID(ctx context.Context, ruleID uuid.UUID) (*rules.RuleBook, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rules.RuleBook), args.Error(1)
}

// MockChatRepository is a mock implementation of chat.Repository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, msg *chat.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockChatRepository) FindRecentDuplicate(ctx context.Context, senderID, receiverID uuid.UUID, body string, since time.Time) (*chat.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.Message), args.Error(1)
}

func (m *MockChatRepository) FindForUser(ctx context.Context, userID uuid.UUID, apartmentName string) ([]*chat.Message, error) {
	args := m.Called(ctx, userID, apartmentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.Message), args.Error(1)
}

func (m *MockChatRepository) FindBetween(ctx context.Context, a, b uuid.UUID) ([]*chat.Message, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.Message), args.Error(1)
}

var (
	_ identity.UserRepository = (*MockUserRepository)(nil)
	_ apartment.Repository    = (*MockApartmentRepository)(nil)
	_ billing.BillRepository  = (*MockBillRepository)(nil)
	_ complaint.Repository    = (*MockComplaintRepository)(nil)
	_ rules.Repository        = (*MockRuleBookRepository)(nil)
	_ chat.Repository         = (*MockChatRepository)(nil)
)
