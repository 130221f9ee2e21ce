package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ubuxa-console/internal/models"
	"ubuxa-console/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// stubTx records whether the transaction ended in a commit or a
// rollback. The repositories are mocked directly, so no statements run
// through it.
type stubTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type stubTxBeginner struct {
	tx *stubTx
}

func (b *stubTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	b.tx = &stubTx{}
	return b.tx, nil
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, filter repositories.TenantFilter) ([]*models.Tenant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) CountByStatus(ctx context.Context) (map[models.TenantStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.TenantStatus]int), args.Error(1)
}

func (m *MockTenantRepository) ListByDemoDateRange(ctx context.Context, from, to time.Time) ([]*models.Tenant, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) WithTx(tx repositories.DB) repositories.TenantRepository {
	return m
}

type MockTenantAdminRepository struct {
	mock.Mock
}

func (m *MockTenantAdminRepository) Create(ctx context.Context, user *models.TenantAdmin) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockTenantAdminRepository) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantAdmin, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantAdmin), args.Error(1)
}

func (m *MockTenantAdminRepository) WithTx(tx repositories.DB) repositories.TenantAdminRepository {
	return m
}

type MockFlutterwaveService struct {
	mock.Mock
}

func (m *MockFlutterwaveService) VerifyTransaction(ctx context.Context, transactionID int64) (*FlutterwaveTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FlutterwaveTransaction), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendRegistrationEmail(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockNotificationService) SendDemoReminder(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockNotificationService) SendAdminInvite(ctx context.Context, email, inviteToken string) error {
	args := m.Called(ctx, email, inviteToken)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockCacheService) SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	args := m.Called(ctx, tenant, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) GetDashboardStats(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockCacheService) SetDashboardStats(ctx context.Context, stats map[string]int, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type TenantServiceTestSuite struct {
	suite.Suite
	beginner      *stubTxBeginner
	mockRepo      *MockTenantRepository
	mockAdminRepo *MockTenantAdminRepository
	mockPayments  *MockFlutterwaveService
	mockNotify    *MockNotificationService
	mockCache     *MockCacheService
	service       *tenantService
	now           time.Time
	ctx           context.Context
}

func (suite *TenantServiceTestSuite) SetupTest() {
	suite.beginner = &stubTxBeginner{}
	suite.mockRepo = &MockTenantRepository{}
	suite.mockAdminRepo = &MockTenantAdminRepository{}
	suite.mockPayments = &MockFlutterwaveService{}
	suite.mockNotify = &MockNotificationService{}
	suite.mockCache = &MockCacheService{}
	suite.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	suite.ctx = context.Background()

	svc := NewTenantService(suite.beginner, suite.mockRepo, suite.mockAdminRepo, suite.mockPayments, suite.mockNotify, suite.mockCache, "NGN")
	suite.service = svc.(*tenantService)
	suite.service.now = func() time.Time { return suite.now }

	suite.mockRepo.Test(suite.T())
	suite.mockAdminRepo.Test(suite.T())
	suite.mockPayments.Test(suite.T())
}

func (suite *TenantServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAdminRepo.AssertExpectations(suite.T())
	suite.mockPayments.AssertExpectations(suite.T())
	suite.mockNotify.AssertExpectations(suite.T())
}

func TestTenantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

// expectCacheInvalidation allows the post-update cache refresh without
// making it a hard expectation.
func (suite *TenantServiceTestSuite) expectCacheInvalidation() {
	suite.mockCache.On("DeleteTenant", mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.mockCache.On("SetTenant", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func validDemoRequest() *RequestDemoRequest {
	return &RequestDemoRequest{
		FirstName:   "Ada",
		LastName:    "Obi",
		Email:       "ada@acme.test",
		CompanyName: "Acme Ltd",
		Phone:       "08012345678",
		Interest:    "inventory",
		MoreInfo:    "We manage three warehouses",
	}
}

func (suite *TenantServiceTestSuite) TestRequestDemo_Success() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil).Run(func(args mock.Arguments) {
		tenant := args.Get(1).(*models.Tenant)
		assert.Equal(suite.T(), models.StatusUnprocessed, tenant.Status)
		assert.Equal(suite.T(), "Acme Ltd", tenant.CompanyName)
		assert.NotEqual(suite.T(), uuid.Nil, tenant.ID)
	})

	tenant, err := suite.service.RequestDemo(suite.ctx, validDemoRequest())
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), tenant)
}

func (suite *TenantServiceTestSuite) TestRequestDemo_ShortPhoneRejectedBeforeRepo() {
	req := validDemoRequest()
	req.Phone = "12345"

	_, err := suite.service.RequestDemo(suite.ctx, req)

	var valErr *ValidationError
	assert.ErrorAs(suite.T(), err, &valErr)
	assert.Equal(suite.T(), "phone", valErr.Field)
	suite.mockRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestRequestDemo_ShortMessageRejected() {
	req := validDemoRequest()
	req.MoreInfo = "too short"

	_, err := suite.service.RequestDemo(suite.ctx, req)

	var valErr *ValidationError
	assert.ErrorAs(suite.T(), err, &valErr)
	assert.Equal(suite.T(), "moreInfo", valErr.Field)
}

func (suite *TenantServiceTestSuite) TestSetDemoDate_Success() {
	id := uuid.New()
	demoDate := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusUnprocessed}, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.expectCacheInvalidation()

	tenant, err := suite.service.SetDemoDate(suite.ctx, id, demoDate)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusSetDemoDate, tenant.Status)
	assert.Equal(suite.T(), demoDate, *tenant.DemoDate)
}

func (suite *TenantServiceTestSuite) TestSetDemoDate_PastDateRejected() {
	_, err := suite.service.SetDemoDate(suite.ctx, uuid.New(), suite.now.Add(-time.Hour))

	var valErr *ValidationError
	assert.ErrorAs(suite.T(), err, &valErr)
	suite.mockRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestSetDemoDate_OutsideBusinessHoursRejected() {
	cases := []time.Time{
		time.Date(2026, 3, 5, 8, 45, 0, 0, time.UTC),
		time.Date(2026, 3, 5, 17, 15, 0, 0, time.UTC),
		time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC),
	}
	for _, demoDate := range cases {
		_, err := suite.service.SetDemoDate(suite.ctx, uuid.New(), demoDate)
		var valErr *ValidationError
		assert.ErrorAs(suite.T(), err, &valErr, demoDate.String())
	}
}

func (suite *TenantServiceTestSuite) TestSetDemoDate_OffGridMinutesRejected() {
	_, err := suite.service.SetDemoDate(suite.ctx, uuid.New(), time.Date(2026, 3, 5, 14, 10, 0, 0, time.UTC))

	var valErr *ValidationError
	assert.ErrorAs(suite.T(), err, &valErr)
	assert.Equal(suite.T(), "demoDate", valErr.Field)
}

func (suite *TenantServiceTestSuite) TestSetDemoDate_DoubleSubmitConflicts() {
	id := uuid.New()
	demoDate := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusSetDemoDate}, nil)

	_, err := suite.service.SetDemoDate(suite.ctx, id, demoDate)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
	suite.mockRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestSetMonthlyFee_Success() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusSetDemoDate, Email: "ada@acme.test"}, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.mockNotify.On("SendRegistrationEmail", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.expectCacheInvalidation()

	tenant, err := suite.service.SetMonthlyFee(suite.ctx, id, 250)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusPending, tenant.Status)
	assert.Equal(suite.T(), 250.0, *tenant.MonthlyFee)
	assert.True(suite.T(), tenant.RegistrationSent)
}

func (suite *TenantServiceTestSuite) TestSetMonthlyFee_NonPositiveRejected() {
	for _, fee := range []float64{0, -10} {
		_, err := suite.service.SetMonthlyFee(suite.ctx, uuid.New(), fee)
		var valErr *ValidationError
		assert.ErrorAs(suite.T(), err, &valErr)
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestSetMonthlyFee_EmailFailureDoesNotBlock() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusSetDemoDate}, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.mockNotify.On("SendRegistrationEmail", suite.ctx, mock.Anything).Return(errors.New("relay down"))
	suite.expectCacheInvalidation()

	tenant, err := suite.service.SetMonthlyFee(suite.ctx, id, 99.5)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusPending, tenant.Status)
}

func validPaymentRequest() *InitialPaymentRequest {
	return &InitialPaymentRequest{
		FirstName:        "Ada",
		LastName:         "Obi",
		Email:            "ada@acme.test",
		Phone:            "08012345678",
		Location:         "Lagos",
		Password:         "correct-horse-9",
		ConfirmPassword:  "correct-horse-9",
		PaymentReference: 439241,
	}
}

func (suite *TenantServiceTestSuite) pendingTenant(id uuid.UUID, fee float64) *models.Tenant {
	return &models.Tenant{ID: id, Status: models.StatusPending, MonthlyFee: &fee, Email: "ada@acme.test"}
}

func (suite *TenantServiceTestSuite) TestCompleteInitialPayment_Success() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(suite.pendingTenant(id, 250), nil)
	suite.mockPayments.On("VerifyTransaction", suite.ctx, int64(439241)).Return(&FlutterwaveTransaction{
		ID: 439241, Amount: 250, Currency: "NGN", Status: "successful",
	}, nil)
	suite.mockAdminRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.TenantAdmin")).Return(nil).Run(func(args mock.Arguments) {
		admin := args.Get(1).(*models.TenantAdmin)
		assert.Equal(suite.T(), id, admin.TenantID)
		assert.NotEqual(suite.T(), "correct-horse-9", admin.PasswordHash)
	})
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.expectCacheInvalidation()

	tenant, err := suite.service.CompleteInitialPayment(suite.ctx, id, validPaymentRequest())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusOnboardPaymentDetails, tenant.Status)
	assert.Equal(suite.T(), "flutterwave", *tenant.PaymentProvider)
	assert.True(suite.T(), tenant.RegistrationCompleted)
	assert.True(suite.T(), suite.beginner.tx.committed)
}

func (suite *TenantServiceTestSuite) TestCompleteInitialPayment_UpdateFailureRollsBackAdmin() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(suite.pendingTenant(id, 250), nil)
	suite.mockPayments.On("VerifyTransaction", suite.ctx, int64(439241)).Return(&FlutterwaveTransaction{
		ID: 439241, Amount: 250, Currency: "NGN", Status: "successful",
	}, nil)
	suite.mockAdminRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.TenantAdmin")).Return(nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(errors.New("connection reset"))

	_, err := suite.service.CompleteInitialPayment(suite.ctx, id, validPaymentRequest())
	assert.Error(suite.T(), err)
	assert.True(suite.T(), suite.beginner.tx.rolledBack, "admin insert must not survive a failed tenant update")
	assert.False(suite.T(), suite.beginner.tx.committed)
}

func (suite *TenantServiceTestSuite) TestCompleteInitialPayment_WrongCurrency() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(suite.pendingTenant(id, 250), nil)
	suite.mockPayments.On("VerifyTransaction", suite.ctx, int64(439241)).Return(&FlutterwaveTransaction{
		ID: 439241, Amount: 250, Currency: "USD", Status: "successful",
	}, nil)

	_, err := suite.service.CompleteInitialPayment(suite.ctx, id, validPaymentRequest())
	assert.ErrorIs(suite.T(), err, ErrPaymentMismatch)
	suite.mockAdminRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestCompleteInitialPayment_PasswordMismatchBeforeProvider() {
	req := validPaymentRequest()
	req.ConfirmPassword = "different"

	_, err := suite.service.CompleteInitialPayment(suite.ctx, uuid.New(), req)

	var valErr *ValidationError
	assert.ErrorAs(suite.T(), err, &valErr)
	assert.Equal(suite.T(), "confirmPassword", valErr.Field)
	suite.mockPayments.AssertNotCalled(suite.T(), "VerifyTransaction", mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestCompleteInitialPayment_FailedTransaction() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(suite.pendingTenant(id, 250), nil)
	suite.mockPayments.On("VerifyTransaction", suite.ctx, int64(439241)).Return(&FlutterwaveTransaction{
		ID: 439241, Amount: 250, Status: "failed",
	}, nil)

	_, err := suite.service.CompleteInitialPayment(suite.ctx, id, validPaymentRequest())
	assert.ErrorIs(suite.T(), err, ErrPaymentNotSuccessful)
	suite.mockAdminRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestCompleteInitialPayment_AmountBelowFee() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(suite.pendingTenant(id, 250), nil)
	suite.mockPayments.On("VerifyTransaction", suite.ctx, int64(439241)).Return(&FlutterwaveTransaction{
		ID: 439241, Amount: 100, Currency: "NGN", Status: "successful",
	}, nil)

	_, err := suite.service.CompleteInitialPayment(suite.ctx, id, validPaymentRequest())
	assert.ErrorIs(suite.T(), err, ErrPaymentMismatch)
	suite.mockAdminRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestCompleteInitialPayment_WrongStatusSkipsProvider() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusUnprocessed}, nil)

	_, err := suite.service.CompleteInitialPayment(suite.ctx, id, validPaymentRequest())
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
	suite.mockPayments.AssertNotCalled(suite.T(), "VerifyTransaction", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestSetRole_Success() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusOnboardCustomization}, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.expectCacheInvalidation()

	tenant, err := suite.service.SetRole(suite.ctx, id, "Operations Manager")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusOnboardRole, tenant.Status)
	assert.Equal(suite.T(), "Operations Manager", *tenant.RoleName)
}

func (suite *TenantServiceTestSuite) TestActivate_SetsActivationDate() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusOnboardTeammate}, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.expectCacheInvalidation()

	tenant, err := suite.service.Activate(suite.ctx, id)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusActive, tenant.Status)
	assert.Equal(suite.T(), suite.now.UTC(), *tenant.ActivationDate)
}

func (suite *TenantServiceTestSuite) TestReject_RequiresReason() {
	_, err := suite.service.Reject(suite.ctx, uuid.New(), "  ")

	var valErr *ValidationError
	assert.ErrorAs(suite.T(), err, &valErr)
	suite.mockRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *TenantServiceTestSuite) TestReject_FromAnyNonTerminalState() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusOnboardRole}, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Tenant")).Return(nil)
	suite.expectCacheInvalidation()

	tenant, err := suite.service.Reject(suite.ctx, id, "No longer interested")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusRejected, tenant.Status)
}

func (suite *TenantServiceTestSuite) TestDeactivate_RejectedTenantConflicts() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Tenant{ID: id, Status: models.StatusRejected}, nil)

	_, err := suite.service.Deactivate(suite.ctx, id, "cleanup")
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

func (suite *TenantServiceTestSuite) TestDashboardStats_ComputesBuckets() {
	suite.mockCache.On("GetDashboardStats", suite.ctx).Return(nil, nil)
	suite.mockRepo.On("CountByStatus", suite.ctx).Return(map[models.TenantStatus]int{
		models.StatusUnprocessed:           3,
		models.StatusPending:               2,
		models.StatusOnboardPaymentDetails: 1,
		models.StatusOnboardRole:           1,
		models.StatusActive:                5,
		models.StatusRejected:              2,
	}, nil)
	suite.mockCache.On("SetDashboardStats", suite.ctx, mock.Anything, mock.Anything).Return(nil)

	stats, err := suite.service.DashboardStats(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 14, stats["total"])
	assert.Equal(suite.T(), 3, stats["unprocessed"])
	assert.Equal(suite.T(), 2, stats["onboarding"])
	assert.Equal(suite.T(), 5, stats["active"])
	assert.Equal(suite.T(), 0, stats["deactivated"])
}

func (suite *TenantServiceTestSuite) TestDashboardStats_ServedFromCache() {
	cached := map[string]int{"total": 7, "active": 7}
	suite.mockCache.On("GetDashboardStats", suite.ctx).Return(cached, nil)

	stats, err := suite.service.DashboardStats(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, stats)
	suite.mockRepo.AssertNotCalled(suite.T(), "CountByStatus", mock.Anything)
}

func (suite *TenantServiceTestSuite) TestGetByID_CacheMissFallsThrough() {
	id := uuid.New()
	tenant := &models.Tenant{ID: id, Status: models.StatusActive}
	suite.mockCache.On("GetTenant", suite.ctx, id).Return(nil, nil)
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(tenant, nil)
	suite.mockCache.On("SetTenant", suite.ctx, tenant, mock.Anything).Return(nil)

	got, err := suite.service.GetByID(suite.ctx, id)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), tenant, got)
}
