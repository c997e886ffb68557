package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/labsphere/lab-management-api/internal/constants"
	"github.com/labsphere/lab-management-api/internal/dto"
	apierrors "github.com/labsphere/lab-management-api/internal/errors"
	"github.com/labsphere/lab-management-api/internal/middleware"
	"github.com/labsphere/lab-management-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// CreateSuperAdmin bootstraps the one super admin of a freshly registered
// lab and starts its session.
func (h *AuthHandler) CreateSuperAdmin(c *gin.Context) {
	type CreateSuperAdminRequest struct {
		LabID    uint64 `json:"lab_id" binding:"required"`
		HFID     string `json:"hfid" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req CreateSuperAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	admin, principal, err := h.authService.BootstrapSuperAdmin(services.BootstrapSuperAdminInput{
		LabID:    req.LabID,
		HFID:     req.HFID,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if err := middleware.SaveSession(c, principal); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"admin_id": admin.ID,
		"lab_id":   admin.LabID,
		"role":     constants.RoleSuperAdmin,
	})
}

// Login authenticates a person for a role and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		HFID     string `json:"hfid" binding:"required"`
		LabID    uint64 `json:"lab_id" binding:"required"`
		Role     string `json:"role" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	principal, user, err := h.authService.Login(services.LoginInput{
		HFID:     req.HFID,
		LabID:    req.LabID,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if err := middleware.SaveSession(c, principal); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": dto.ToUserDTO(*user),
		"role": principal.Role,
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentSession returns the principal behind the session.
func (h *AuthHandler) GetCurrentSession(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lab_id":   principal.LabID,
		"admin_id": principal.AdminRowID,
		"role":     principal.Role,
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUnknownRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrSuperAdminExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrLabNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
