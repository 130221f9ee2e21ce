package repositories

import (
	"context"
	"time"

	"ubuxa-console/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	List(ctx context.Context, filter TenantFilter) ([]*models.Tenant, error)
	CountByStatus(ctx context.Context) (map[models.TenantStatus]int, error)
	ListByDemoDateRange(ctx context.Context, from, to time.Time) ([]*models.Tenant, error)
	WithTx(tx DB) TenantRepository
}

// TenantFilter narrows the tenant list the way the dashboard's filter
// dropdown and search box do.
type TenantFilter struct {
	Statuses []models.TenantStatus
	Search   string
	Limit    int
	Offset   int
}

type tenantRepo struct {
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *tenantRepo) WithTx(tx DB) TenantRepository {
	return &tenantRepo{db: tx}
}

const tenantColumns = `id, company_name, first_name, last_name, email, phone, status,
		interest, more_info, demo_date, monthly_fee, payment_provider,
		branding_status, role_name, teammate_name, teammate_role,
		activation_date, rejection_reason, deactivation_reason,
		registration_sent, registration_completed, activation_status,
		created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := row.Scan(
		&t.ID, &t.CompanyName, &t.FirstName, &t.LastName, &t.Email, &t.Phone, &t.Status,
		&t.Interest, &t.MoreInfo, &t.DemoDate, &t.MonthlyFee, &t.PaymentProvider,
		&t.BrandingStatus, &t.RoleName, &t.TeammateName, &t.TeammateRole,
		&t.ActivationDate, &t.RejectionReason, &t.DeactivationReason,
		&t.RegistrationSent, &t.RegistrationCompleted, &t.ActivationStatus,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, company_name, first_name, last_name, email, phone, status,
			interest, more_info, registration_sent, registration_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, false, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		tenant.ID, tenant.CompanyName, tenant.FirstName, tenant.LastName,
		tenant.Email, tenant.Phone, tenant.Status, tenant.Interest, tenant.MoreInfo,
	)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE id = $1
	`
	return scanTenant(r.db.QueryRow(ctx, query, id))
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET status = $1, demo_date = $2, monthly_fee = $3, payment_provider = $4,
			branding_status = $5, role_name = $6, teammate_name = $7, teammate_role = $8,
			activation_date = $9, rejection_reason = $10, deactivation_reason = $11,
			registration_sent = $12, registration_completed = $13, activation_status = $14,
			updated_at = NOW()
		WHERE id = $15
	`
	_, err := r.db.Exec(ctx, query,
		tenant.Status, tenant.DemoDate, tenant.MonthlyFee, tenant.PaymentProvider,
		tenant.BrandingStatus, tenant.RoleName, tenant.TeammateName, tenant.TeammateRole,
		tenant.ActivationDate, tenant.RejectionReason, tenant.DeactivationReason,
		tenant.RegistrationSent, tenant.RegistrationCompleted, tenant.ActivationStatus,
		tenant.ID,
	)
	return err
}

func (r *tenantRepo) List(ctx context.Context, filter TenantFilter) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE ($1::text[] IS NULL OR UPPER(status) = ANY($1))
			AND ($2 = '' OR company_name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	var statuses []string
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	rows, err := r.db.Query(ctx, query, statuses, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *tenantRepo) CountByStatus(ctx context.Context) (map[models.TenantStatus]int, error) {
	query := `
		SELECT UPPER(status), COUNT(*)
		FROM tenants
		GROUP BY UPPER(status)
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.TenantStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.TenantStatus(status)] = count
	}
	return counts, rows.Err()
}

// ListByDemoDateRange returns tenants whose demo falls inside [from, to).
// Used by the reminder job.
func (r *tenantRepo) ListByDemoDateRange(ctx context.Context, from, to time.Time) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE demo_date >= $1 AND demo_date < $2
		ORDER BY demo_date ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
