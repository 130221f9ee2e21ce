package handlers

import (
	"errors"
	"net/http"

	"ubuxa-console/internal/common"
	"ubuxa-console/internal/middleware"
	"ubuxa-console/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers exposes console operator authentication.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendClientError(c, "Email and password are required")
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		return common.SendServerError(c, "Login failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": token})
}

// Logout revokes the current access token.
func (h *AuthHandlers) Logout(c echo.Context) error {
	claims, ok := middleware.GetTokenClaims(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return common.SendServerError(c, "Logout failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Logged out"})
}

// Validate confirms the current token and reports who holds it.
func (h *AuthHandlers) Validate(c echo.Context) error {
	ctx := c.Request().Context()
	adminID, ok := common.GetAdminIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	role, _ := common.GetAdminRoleFromContext(ctx)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": map[string]string{
			"adminId": adminID.String(),
			"role":    role,
		},
	})
}

// InviteRequest represents the operator invite payload
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Invite issues an invite token for a new console operator.
func (h *AuthHandlers) Invite(c echo.Context) error {
	var req InviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	token, err := h.authService.InviteAdmin(c.Request().Context(), req.Email, req.Role)
	if err != nil {
		var valErr *services.ValidationError
		if errors.As(err, &valErr) {
			return common.SendValidationError(c, valErr.Field, valErr.Message)
		}
		return common.SendServerError(c, "Failed to create invite")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"data": map[string]string{"inviteToken": token},
	})
}

// SetPasswordRequest represents the invite redemption payload
type SetPasswordRequest struct {
	InviteToken     string `json:"inviteToken"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SetPassword redeems an invite token and sets the operator password.
func (h *AuthHandlers) SetPassword(c echo.Context) error {
	var req SetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Password != req.ConfirmPassword {
		return common.SendValidationError(c, "confirmPassword", "passwords do not match")
	}

	admin, err := h.authService.SetPassword(c.Request().Context(), req.InviteToken, req.Password)
	if err != nil {
		var valErr *services.ValidationError
		switch {
		case errors.As(err, &valErr):
			return common.SendValidationError(c, valErr.Field, valErr.Message)
		case errors.Is(err, services.ErrInviteInvalid):
			return common.SendClientError(c, "Invite token is invalid or expired")
		default:
			return common.SendServerError(c, "Failed to set password")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": admin})
}

// RegisterRoutes wires the auth endpoints. Login and set-password are
// public; invite is owner-only.
func (h *AuthHandlers) RegisterRoutes(public, protected *echo.Group, ownerOnly echo.MiddlewareFunc) {
	public.POST("/admin/login", h.Login)
	public.POST("/admin/set-password", h.SetPassword)

	protected.POST("/admin/logout", h.Logout)
	protected.GET("/admin/validate", h.Validate)
	protected.POST("/admin/invite", h.Invite, ownerOnly)
}
