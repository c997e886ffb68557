package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/labsphere/lab-management-api/internal/constants"
	"github.com/labsphere/lab-management-api/internal/database"
	apierrors "github.com/labsphere/lab-management-api/internal/errors"
	"github.com/labsphere/lab-management-api/internal/models"
)

// RequireSuperAdmin restricts a route to sessions holding the super admin
// role.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, exists := GetPrincipal(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if principal.Role != constants.RoleSuperAdmin {
			apierrors.Forbidden(c, "Only the super admin can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdminRole restricts a route to super admin or admin sessions.
func RequireAdminRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, exists := GetPrincipal(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if principal.Role != constants.RoleSuperAdmin && principal.Role != constants.RoleAdmin {
			apierrors.Forbidden(c, "Admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireLabScope checks that the lab named in the URL belongs to the acting
// principal's lab family. Out-of-scope labs report not found rather than
// forbidden so their existence does not leak across tenants.
func RequireLabScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		labIDStr := c.Param("id")
		labID, err := strconv.ParseUint(labIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid lab ID")
			c.Abort()
			return
		}

		principal, exists := GetPrincipal(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var target models.Lab
		if err := database.GetDB().First(&target, labID).Error; err != nil {
			apierrors.NotFound(c, "Lab not found")
			c.Abort()
			return
		}

		mainLabID := target.LabReference
		if target.IsMainLab() {
			mainLabID = target.ID
		}

		var caller models.Lab
		if err := database.GetDB().First(&caller, principal.LabID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		callerMainID := caller.LabReference
		if caller.IsMainLab() {
			callerMainID = caller.ID
		}

		if callerMainID != mainLabID {
			apierrors.NotFound(c, "Lab not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyLab, target)
		c.Next()
	}
}
