package repositories

import (
	"context"

	"ubuxa-console/internal/models"

	"github.com/google/uuid"
)

type TenantAdminRepository interface {
	Create(ctx context.Context, user *models.TenantAdmin) error
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantAdmin, error)
	WithTx(tx DB) TenantAdminRepository
}

type tenantAdminRepo struct {
	db DB
}

func NewTenantAdminRepository(db DB) TenantAdminRepository {
	return &tenantAdminRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *tenantAdminRepo) WithTx(tx DB) TenantAdminRepository {
	return &tenantAdminRepo{db: tx}
}

func (r *tenantAdminRepo) Create(ctx context.Context, user *models.TenantAdmin) error {
	query := `
		INSERT INTO tenant_admins (id, tenant_id, email, password_hash, first_name, last_name, phone, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Phone, user.Location,
	)
	return err
}

func (r *tenantAdminRepo) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.TenantAdmin, error) {
	user := &models.TenantAdmin{}
	query := `
		SELECT id, tenant_id, email, password_hash, first_name, last_name, phone, location, created_at
		FROM tenant_admins
		WHERE tenant_id = $1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&user.ID, &user.TenantID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Phone, &user.Location,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
