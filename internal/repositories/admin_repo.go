package repositories

import (
	"context"

	"ubuxa-console/internal/models"

	"github.com/google/uuid"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type adminRepo struct {
	db DB
}

func NewAdminRepository(db DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) Create(ctx context.Context, admin *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		admin.ID, admin.Email, admin.PasswordHash, admin.FirstName, admin.LastName, admin.Role,
	)
	return err
}

func (r *adminRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at, updated_at
		FROM admin_users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash,
		&admin.FirstName, &admin.LastName, &admin.Role,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at, updated_at
		FROM admin_users
		WHERE LOWER(email) = LOWER($1)
	`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash,
		&admin.FirstName, &admin.LastName, &admin.Role,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *adminRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE admin_users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, passwordHash, id)
	return err
}
