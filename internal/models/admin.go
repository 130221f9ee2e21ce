package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin roles. Owners can invite other console admins.
const (
	AdminRoleOwner = "owner"
	AdminRoleAdmin = "admin"
)

// AdminUser is a console operator. Distinct from the tenant-side admin
// account created during registration, which lives with the tenant record.
type AdminUser struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// TenantAdmin is the first user of an onboarded tenant, created when the
// initial subscription payment clears.
type TenantAdmin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenantId" db:"tenant_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Phone        string    `json:"phone" db:"phone"`
	Location     string    `json:"location" db:"location"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
