package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a prospective or onboarded customer organization moving
// through the sales/onboarding pipeline. The record accretes history:
// fields populated at a stage are never cleared when the tenant advances,
// which is what the derived timeline relies on.
type Tenant struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	CompanyName string       `json:"companyName" db:"company_name"`
	FirstName   string       `json:"firstName" db:"first_name"`
	LastName    string       `json:"lastName" db:"last_name"`
	Email       string       `json:"email" db:"email"`
	Phone       string       `json:"phone" db:"phone"`
	Status      TenantStatus `json:"status" db:"status"`

	Interest string `json:"interest,omitempty" db:"interest"`
	MoreInfo string `json:"moreInfo,omitempty" db:"more_info"`

	DemoDate        *time.Time `json:"demoDate,omitempty" db:"demo_date"`
	MonthlyFee      *float64   `json:"monthlyFee,omitempty" db:"monthly_fee"`
	PaymentProvider *string    `json:"paymentProvider,omitempty" db:"payment_provider"`
	BrandingStatus  *string    `json:"brandingStatus,omitempty" db:"branding_status"`
	RoleName        *string    `json:"roleName,omitempty" db:"role_name"`
	TeammateName    *string    `json:"teammateName,omitempty" db:"teammate_name"`
	TeammateRole    *string    `json:"teammateRole,omitempty" db:"teammate_role"`

	ActivationDate     *time.Time `json:"activationDate,omitempty" db:"activation_date"`
	RejectionReason    *string    `json:"rejectionReason,omitempty" db:"rejection_reason"`
	DeactivationReason *string    `json:"deactivationReason,omitempty" db:"deactivation_reason"`

	// Legacy display fields. Kept only as a fallback rendering path for
	// records written before the status enum existed.
	RegistrationSent      bool    `json:"registrationSent" db:"registration_sent"`
	RegistrationCompleted bool    `json:"registrationCompleted" db:"registration_completed"`
	ActivationStatus      *string `json:"activationStatus,omitempty" db:"activation_status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DisplayLabel resolves the badge label for a tenant, falling back to the
// legacy fields when the stored status is not a known TenantStatus.
func (t *Tenant) DisplayLabel() string {
	if s, err := ParseTenantStatus(string(t.Status)); err == nil {
		return s.BadgeLabel()
	}
	switch {
	case t.RegistrationSent && !t.RegistrationCompleted:
		return "Registration Pending"
	case t.RegistrationCompleted && (t.ActivationStatus == nil || *t.ActivationStatus != "active"):
		return "Ready for Activation"
	case t.ActivationStatus != nil && *t.ActivationStatus == "active":
		return "Active"
	default:
		return "Unknown"
	}
}
