package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ubuxa-console/internal/common"
	"ubuxa-console/internal/models"
	"ubuxa-console/internal/repositories"
	"ubuxa-console/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// TenantHandlers exposes the tenant lifecycle over HTTP.
type TenantHandlers struct {
	tenantService   services.TenantService
	brandingService services.BrandingService
}

func NewTenantHandlers(tenantService services.TenantService, brandingService services.BrandingService) *TenantHandlers {
	return &TenantHandlers{
		tenantService:   tenantService,
		brandingService: brandingService,
	}
}

// filterBuckets maps the console's sidebar filters to status sets.
var filterBuckets = map[string][]models.TenantStatus{
	"unprocessed": {models.StatusUnprocessed},
	"demo-set":    {models.StatusSetDemoDate},
	"pending":     {models.StatusPending},
	"onboarding": {
		models.StatusOnboardPaymentDetails,
		models.StatusOnboardCustomization,
		models.StatusOnboardRole,
		models.StatusOnboardTeammate,
	},
	"active":      {models.StatusActive},
	"rejected":    {models.StatusRejected},
	"deactivated": {models.StatusDeactivated},
}

// mapServiceError translates service errors into HTTP responses.
// Stale lifecycle transitions come back as 409 so a double submit is
// distinguishable from bad input.
func mapServiceError(c echo.Context, err error) error {
	var valErr *services.ValidationError
	switch {
	case errors.As(err, &valErr):
		return common.SendValidationError(c, valErr.Field, valErr.Message)
	case errors.Is(err, services.ErrInvalidTransition):
		return common.SendConflictError(c, "Tenant is not in a state that allows this action")
	case errors.Is(err, services.ErrPaymentNotSuccessful):
		return common.SendClientError(c, "Payment could not be verified")
	case errors.Is(err, services.ErrPaymentMismatch):
		return common.SendClientError(c, "Payment does not match the agreed monthly fee")
	case errors.Is(err, pgx.ErrNoRows):
		return common.SendNotFoundError(c, "Tenant")
	default:
		return common.SendServerError(c, "Operation failed")
	}
}

// RequestDemo handles the public demo request form.
func (h *TenantHandlers) RequestDemo(c echo.Context) error {
	var req services.RequestDemoRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.RequestDemo(c.Request().Context(), &req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": tenant})
}

// ListTenantsRequest represents query parameters for listing tenants
type ListTenantsRequest struct {
	Filter string `query:"filter"`
	Search string `query:"search"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListTenants returns tenants filtered by pipeline bucket and search.
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	var req ListTenantsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	filter := repositories.TenantFilter{
		Search: common.SanitizeSearchQuery(req.Search),
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	bucket := strings.ToLower(strings.TrimSpace(req.Filter))
	if bucket != "" && bucket != "all" {
		statuses, ok := filterBuckets[bucket]
		if !ok {
			return common.SendValidationError(c, "filter", "unknown filter value")
		}
		filter.Statuses = statuses
	}

	tenants, err := h.tenantService.List(c.Request().Context(), filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list tenants")
	}

	if tenants == nil {
		tenants = []*models.Tenant{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   tenants,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetTenant returns a single tenant by ID.
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenant, err := h.tenantService.GetByID(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// GetTimeline returns the derived onboarding timeline for a tenant.
func (h *TenantHandlers) GetTimeline(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	entries, err := h.tenantService.Timeline(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": entries})
}

// SetDemoDateRequest carries the scheduled demo slot.
type SetDemoDateRequest struct {
	DemoDate string `json:"demoDate"`
}

// SetDemoDate schedules the demo call for an unprocessed tenant.
func (h *TenantHandlers) SetDemoDate(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req SetDemoDateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	demoDate, err := time.Parse(time.RFC3339, req.DemoDate)
	if err != nil {
		return common.SendValidationError(c, "demoDate", "must be an RFC 3339 timestamp")
	}

	tenant, err := h.tenantService.SetDemoDate(c.Request().Context(), id, demoDate)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// SetMonthlyFeeRequest carries the agreed monthly fee.
type SetMonthlyFeeRequest struct {
	MonthlyFee float64 `json:"monthlyFee"`
}

// SetMonthlyFee records the agreed fee and sends the registration link.
func (h *TenantHandlers) SetMonthlyFee(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req SetMonthlyFeeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.SetMonthlyFee(c.Request().Context(), id, req.MonthlyFee)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// CompleteInitialPayment finalizes registration after the Flutterwave
// charge. The password check happens before any verification call so a
// mismatch never reaches the payment provider.
func (h *TenantHandlers) CompleteInitialPayment(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req services.InitialPaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Password != req.ConfirmPassword {
		return common.SendValidationError(c, "confirmPassword", "passwords do not match")
	}

	tenant, err := h.tenantService.CompleteInitialPayment(c.Request().Context(), id, &req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

const maxLogoSize = 5 << 20 // 5 MiB

// SetBranding accepts the tenant's logo upload and marks the branding
// stage complete.
func (h *TenantHandlers) SetBranding(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return common.SendValidationError(c, "logo", "logo file is required")
	}
	if file.Size > maxLogoSize {
		return common.SendValidationError(c, "logo", "logo must be 5MB or smaller")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	objectName, err := h.brandingService.UploadLogo(
		c.Request().Context(), id, file.Filename,
		file.Header.Get("Content-Type"), src, file.Size,
	)
	if err != nil {
		return common.SendValidationError(c, "logo", err.Error())
	}

	tenant, err := h.tenantService.SetBranding(c.Request().Context(), id, objectName)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// SetRoleRequest carries the first role created during onboarding.
type SetRoleRequest struct {
	RoleName string `json:"roleName"`
}

func (h *TenantHandlers) SetRole(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req SetRoleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.SetRole(c.Request().Context(), id, req.RoleName)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// SetTeammateRequest carries the first invited teammate.
type SetTeammateRequest struct {
	TeammateName string `json:"teammateName"`
	TeammateRole string `json:"teammateRole"`
}

func (h *TenantHandlers) SetTeammate(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req SetTeammateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.SetTeammate(c.Request().Context(), id, req.TeammateName, req.TeammateRole)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// Activate moves a tenant into the ACTIVE state.
func (h *TenantHandlers) Activate(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenant, err := h.tenantService.Activate(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// ReasonRequest carries the reason for a terminal transition.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

func (h *TenantHandlers) Reject(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req ReasonRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

func (h *TenantHandlers) Deactivate(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "tenant ID")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req ReasonRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.tenantService.Deactivate(c.Request().Context(), id, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": tenant})
}

// DashboardStats returns the pipeline bucket counts for the dashboard.
func (h *TenantHandlers) DashboardStats(c echo.Context) error {
	stats, err := h.tenantService.DashboardStats(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to compute dashboard stats")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": stats})
}

// RegisterRoutes wires the tenant endpoints onto the API group. The
// demo request stays public; everything else sits behind auth.
func (h *TenantHandlers) RegisterRoutes(public, protected *echo.Group, rateLimit echo.MiddlewareFunc) {
	public.POST("/tenants", h.RequestDemo, rateLimit)
	public.POST("/tenants/onboard-initial-payment/:id", h.CompleteInitialPayment)

	protected.GET("/tenants", h.ListTenants)
	protected.GET("/tenants/:id", h.GetTenant)
	protected.GET("/tenants/:id/timeline", h.GetTimeline)
	protected.PATCH("/tenants/:id", h.SetDemoDate)
	protected.PATCH("/tenants/onboard-company-agreed-amount/:id", h.SetMonthlyFee)
	protected.POST("/tenants/:id/branding", h.SetBranding)
	protected.PATCH("/tenants/onboard-role/:id", h.SetRole)
	protected.PATCH("/tenants/onboard-teammate/:id", h.SetTeammate)
	protected.POST("/tenants/:id/activate", h.Activate)
	protected.POST("/tenants/:id/reject", h.Reject)
	protected.POST("/tenants/:id/deactivate", h.Deactivate)
	protected.GET("/admin/dashboard/stats", h.DashboardStats)
}
