package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ubuxa-console/internal/caching"
	"ubuxa-console/internal/models"
	"ubuxa-console/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors the handlers translate to HTTP statuses. A stale
// transition (double submit, or an admin acting on an outdated row)
// surfaces as ErrInvalidTransition and must leave the record untouched.
var (
	ErrInvalidTransition    = errors.New("transition not allowed from current status")
	ErrPaymentNotSuccessful = errors.New("payment was not successful")
	ErrPaymentMismatch      = errors.New("payment does not match the agreed monthly fee")
)

// ValidationError is a client-side-preventable input error, rejected
// before any repository write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const tenantCacheTTL = 5 * time.Minute

// defaultPaymentCurrency is the currency the registration widget
// charges in. Verified transactions in any other currency are refused.
const defaultPaymentCurrency = "NGN"

// Demo slots are restricted to business hours on a 15-minute grid.
const (
	demoDayStartHour = 9
	demoDayEndHour   = 17
	demoSlotMinutes  = 15
)

type TenantService interface {
	RequestDemo(ctx context.Context, req *RequestDemoRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, filter repositories.TenantFilter) ([]*models.Tenant, error)
	Timeline(ctx context.Context, id uuid.UUID) ([]models.TimelineEntry, error)
	DashboardStats(ctx context.Context) (map[string]int, error)
	RefreshDashboardStats(ctx context.Context) (map[string]int, error)

	SetDemoDate(ctx context.Context, id uuid.UUID, demoDate time.Time) (*models.Tenant, error)
	SetMonthlyFee(ctx context.Context, id uuid.UUID, fee float64) (*models.Tenant, error)
	CompleteInitialPayment(ctx context.Context, id uuid.UUID, req *InitialPaymentRequest) (*models.Tenant, error)
	SetBranding(ctx context.Context, id uuid.UUID, brandingStatus string) (*models.Tenant, error)
	SetRole(ctx context.Context, id uuid.UUID, roleName string) (*models.Tenant, error)
	SetTeammate(ctx context.Context, id uuid.UUID, name, role string) (*models.Tenant, error)
	Activate(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Tenant, error)
	Deactivate(ctx context.Context, id uuid.UUID, reason string) (*models.Tenant, error)
}

type tenantService struct {
	db              repositories.TxBeginner
	tenantRepo      repositories.TenantRepository
	tenantAdminRepo repositories.TenantAdminRepository
	flutterwave     FlutterwaveService
	notifications   NotificationService
	cacheSvc        caching.CacheService
	currency        string
	now             func() time.Time
}

func NewTenantService(
	db repositories.TxBeginner,
	tenantRepo repositories.TenantRepository,
	tenantAdminRepo repositories.TenantAdminRepository,
	flutterwave FlutterwaveService,
	notifications NotificationService,
	cacheSvc caching.CacheService,
	currency string,
) TenantService {
	if currency == "" {
		currency = defaultPaymentCurrency
	}
	return &tenantService{
		db:              db,
		tenantRepo:      tenantRepo,
		tenantAdminRepo: tenantAdminRepo,
		flutterwave:     flutterwave,
		notifications:   notifications,
		cacheSvc:        cacheSvc,
		currency:        currency,
		now:             time.Now,
	}
}

// RequestDemoRequest carries the public demo-request form fields.
type RequestDemoRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
	Phone       string `json:"phone"`
	Interest    string `json:"interest"`
	MoreInfo    string `json:"moreInfo"`
}

// InitialPaymentRequest is the registration wizard's final submission:
// the tenant admin profile plus the Flutterwave transaction reference.
type InitialPaymentRequest struct {
	FirstName        string `json:"firstname"`
	LastName         string `json:"lastname"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Location         string `json:"location"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirmPassword"`
	PaymentReference int64  `json:"paymentReference"`
}

func (s *tenantService) RequestDemo(ctx context.Context, req *RequestDemoRequest) (*models.Tenant, error) {
	if err := validateDemoRequest(req); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:          uuid.New(),
		CompanyName: strings.TrimSpace(req.CompanyName),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Interest:    strings.TrimSpace(req.Interest),
		MoreInfo:    strings.TrimSpace(req.MoreInfo),
		Status:      models.StatusUnprocessed,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if cached, err := s.cacheSvc.GetTenant(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetTenant(ctx, tenant, tenantCacheTTL); err != nil {
		log.Printf("Failed to cache tenant %s: %v", id, err)
	}
	return tenant, nil
}

func (s *tenantService) List(ctx context.Context, filter repositories.TenantFilter) ([]*models.Tenant, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.tenantRepo.List(ctx, filter)
}

func (s *tenantService) Timeline(ctx context.Context, id uuid.UUID) ([]models.TimelineEntry, error) {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.BuildTimeline(tenant), nil
}

// DashboardStats returns the pipeline bucket counts, served from cache
// when the background refresher has populated it.
func (s *tenantService) DashboardStats(ctx context.Context) (map[string]int, error) {
	if cached, err := s.cacheSvc.GetDashboardStats(ctx); err == nil && cached != nil {
		return cached, nil
	}
	return s.RefreshDashboardStats(ctx)
}

// RefreshDashboardStats recomputes the bucket counts and refreshes the
// cache. Also invoked by the scheduled stats job.
func (s *tenantService) RefreshDashboardStats(ctx context.Context) (map[string]int, error) {
	counts, err := s.tenantRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	onboarding := counts[models.StatusOnboardPaymentDetails] +
		counts[models.StatusOnboardCustomization] +
		counts[models.StatusOnboardRole] +
		counts[models.StatusOnboardTeammate]

	total := 0
	for _, n := range counts {
		total += n
	}

	stats := map[string]int{
		"total":          total,
		"unprocessed":    counts[models.StatusUnprocessed],
		"demoSet":        counts[models.StatusSetDemoDate],
		"pendingPayment": counts[models.StatusPending],
		"onboarding":     onboarding,
		"active":         counts[models.StatusActive],
		"rejected":       counts[models.StatusRejected],
		"deactivated":    counts[models.StatusDeactivated],
	}

	if err := s.cacheSvc.SetDashboardStats(ctx, stats, 10*time.Minute); err != nil {
		log.Printf("Failed to cache dashboard stats: %v", err)
	}
	return stats, nil
}

func (s *tenantService) SetDemoDate(ctx context.Context, id uuid.UUID, demoDate time.Time) (*models.Tenant, error) {
	if err := s.validateDemoDate(demoDate); err != nil {
		return nil, err
	}

	return s.transition(ctx, id, models.StatusSetDemoDate, func(t *models.Tenant) error {
		t.DemoDate = &demoDate
		return nil
	})
}

func (s *tenantService) SetMonthlyFee(ctx context.Context, id uuid.UUID, fee float64) (*models.Tenant, error) {
	if fee <= 0 {
		return nil, &ValidationError{Field: "monthlyFee", Message: "monthly fee must be a positive number"}
	}

	tenant, err := s.transition(ctx, id, models.StatusPending, func(t *models.Tenant) error {
		t.MonthlyFee = &fee
		t.RegistrationSent = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Registration email is best effort: the fee is agreed either way and
	// the link can be resent from the console.
	if err := s.notifications.SendRegistrationEmail(ctx, tenant); err != nil {
		log.Printf("Failed to send registration email to %s: %v", tenant.Email, err)
	}
	return tenant, nil
}

func (s *tenantService) CompleteInitialPayment(ctx context.Context, id uuid.UUID, req *InitialPaymentRequest) (*models.Tenant, error) {
	if err := validateInitialPayment(req); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tenant.Status.CanTransition(models.StatusOnboardPaymentDetails) {
		return nil, ErrInvalidTransition
	}
	if tenant.MonthlyFee == nil {
		return nil, ErrInvalidTransition
	}

	tx, err := s.flutterwave.VerifyTransaction(ctx, req.PaymentReference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentNotSuccessful, err)
	}
	if !strings.EqualFold(tx.Status, "successful") {
		return nil, ErrPaymentNotSuccessful
	}
	if !strings.EqualFold(tx.Currency, s.currency) {
		return nil, ErrPaymentMismatch
	}
	if tx.Amount < *tenant.MonthlyFee {
		return nil, ErrPaymentMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &models.TenantAdmin{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Location:     strings.TrimSpace(req.Location),
	}

	provider := "flutterwave"
	tenant.PaymentProvider = &provider
	tenant.RegistrationCompleted = true
	tenant.Status = models.StatusOnboardPaymentDetails

	// The admin account and the tenant row advance together or not at
	// all. A failed commit leaves the tenant PENDING with no orphaned
	// admin, so the wizard's retry starts clean.
	err = repositories.WithinTx(ctx, s.db, func(txDB repositories.DB) error {
		if err := s.tenantAdminRepo.WithTx(txDB).Create(ctx, admin); err != nil {
			return err
		}
		return s.tenantRepo.WithTx(txDB).Update(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return tenant, nil
}

func (s *tenantService) SetBranding(ctx context.Context, id uuid.UUID, brandingStatus string) (*models.Tenant, error) {
	if strings.TrimSpace(brandingStatus) == "" {
		return nil, &ValidationError{Field: "brandingStatus", Message: "branding status is required"}
	}
	return s.transition(ctx, id, models.StatusOnboardCustomization, func(t *models.Tenant) error {
		t.BrandingStatus = &brandingStatus
		return nil
	})
}

func (s *tenantService) SetRole(ctx context.Context, id uuid.UUID, roleName string) (*models.Tenant, error) {
	if strings.TrimSpace(roleName) == "" {
		return nil, &ValidationError{Field: "roleName", Message: "role name is required"}
	}
	return s.transition(ctx, id, models.StatusOnboardRole, func(t *models.Tenant) error {
		t.RoleName = &roleName
		return nil
	})
}

func (s *tenantService) SetTeammate(ctx context.Context, id uuid.UUID, name, role string) (*models.Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "teammateName", Message: "teammate name is required"}
	}
	if strings.TrimSpace(role) == "" {
		return nil, &ValidationError{Field: "teammateRole", Message: "teammate role is required"}
	}
	return s.transition(ctx, id, models.StatusOnboardTeammate, func(t *models.Tenant) error {
		t.TeammateName = &name
		t.TeammateRole = &role
		return nil
	})
}

func (s *tenantService) Activate(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.transition(ctx, id, models.StatusActive, func(t *models.Tenant) error {
		now := s.now().UTC()
		t.ActivationDate = &now
		active := "active"
		t.ActivationStatus = &active
		return nil
	})
}

func (s *tenantService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Tenant, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "rejection reason is required"}
	}
	return s.transition(ctx, id, models.StatusRejected, func(t *models.Tenant) error {
		t.RejectionReason = &reason
		return nil
	})
}

func (s *tenantService) Deactivate(ctx context.Context, id uuid.UUID, reason string) (*models.Tenant, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "deactivation reason is required"}
	}
	return s.transition(ctx, id, models.StatusDeactivated, func(t *models.Tenant) error {
		t.DeactivationReason = &reason
		return nil
	})
}

// transition loads the tenant, checks the lifecycle rule against its
// current status, applies the stage mutation and persists. The status
// check is what makes transitions idempotence-safe: a duplicate submit
// finds the tenant already advanced and gets ErrInvalidTransition.
func (s *tenantService) transition(ctx context.Context, id uuid.UUID, next models.TenantStatus, apply func(*models.Tenant) error) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := models.ParseTenantStatus(string(tenant.Status))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if !current.CanTransition(next) {
		return nil, ErrInvalidTransition
	}

	if err := apply(tenant); err != nil {
		return nil, err
	}
	tenant.Status = next

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return tenant, nil
}

func (s *tenantService) invalidate(ctx context.Context, tenant *models.Tenant) {
	if err := s.cacheSvc.DeleteTenant(ctx, tenant.ID); err != nil {
		log.Printf("Failed to invalidate tenant cache %s: %v", tenant.ID, err)
	}
	if err := s.cacheSvc.SetTenant(ctx, tenant, tenantCacheTTL); err != nil {
		log.Printf("Failed to recache tenant %s: %v", tenant.ID, err)
	}
}

// validateDemoDate enforces the scheduling rules before any network or
// database work: no past dates, business hours 09:00-17:00, 15-minute
// slot granularity.
func (s *tenantService) validateDemoDate(demoDate time.Time) error {
	if demoDate.Before(s.now()) {
		return &ValidationError{Field: "demoDate", Message: "demo date cannot be in the past"}
	}
	if demoDate.Second() != 0 || demoDate.Nanosecond() != 0 || demoDate.Minute()%demoSlotMinutes != 0 {
		return &ValidationError{Field: "demoDate", Message: "demo time must be on a 15-minute boundary"}
	}
	hour, minute := demoDate.Hour(), demoDate.Minute()
	if hour < demoDayStartHour || hour > demoDayEndHour || (hour == demoDayEndHour && minute > 0) {
		return &ValidationError{Field: "demoDate", Message: "demo time must be within business hours (09:00-17:00)"}
	}
	return nil
}

func validateDemoRequest(req *RequestDemoRequest) error {
	if len(strings.TrimSpace(req.FirstName)) < 2 {
		return &ValidationError{Field: "firstName", Message: "first name must be at least 2 characters long"}
	}
	if len(strings.TrimSpace(req.LastName)) < 2 {
		return &ValidationError{Field: "lastName", Message: "last name must be at least 2 characters long"}
	}
	if !strings.Contains(req.Email, "@") || strings.TrimSpace(req.Email) == "" {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if len(strings.TrimSpace(req.CompanyName)) < 2 {
		return &ValidationError{Field: "companyName", Message: "company name must be at least 2 characters long"}
	}
	if len(strings.TrimSpace(req.Phone)) < 10 {
		return &ValidationError{Field: "phone", Message: "phone number must be at least 10 characters long"}
	}
	if len(strings.TrimSpace(req.Interest)) < 2 {
		return &ValidationError{Field: "interest", Message: "please select an option"}
	}
	if len(strings.TrimSpace(req.MoreInfo)) < 10 {
		return &ValidationError{Field: "moreInfo", Message: "message must be at least 10 characters long"}
	}
	return nil
}

func validateInitialPayment(req *InitialPaymentRequest) error {
	if len(strings.TrimSpace(req.FirstName)) < 2 {
		return &ValidationError{Field: "firstname", Message: "first name is too short"}
	}
	if len(strings.TrimSpace(req.LastName)) < 2 {
		return &ValidationError{Field: "lastname", Message: "last name is too short"}
	}
	if !strings.Contains(req.Email, "@") {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if len(strings.TrimSpace(req.Phone)) < 5 {
		return &ValidationError{Field: "phone", Message: "phone number is too short"}
	}
	if strings.TrimSpace(req.Location) == "" {
		return &ValidationError{Field: "location", Message: "location is required"}
	}
	if len(req.Password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if req.Password != req.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	if req.PaymentReference <= 0 {
		return &ValidationError{Field: "paymentReference", Message: "payment reference is required"}
	}
	return nil
}
