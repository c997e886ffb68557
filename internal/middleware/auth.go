package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/labsphere/lab-management-api/internal/constants"
	apierrors "github.com/labsphere/lab-management-api/internal/errors"
	"github.com/labsphere/lab-management-api/internal/models"
)

// RequireAuth checks the session claims and materializes them into an
// explicit Principal stored on the request context. Handlers and services
// only ever see the Principal value, never the session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		adminID := session.Get(constants.ContextKeyAdminID)
		labID := session.Get(constants.ContextKeyLabID)
		role := session.Get(constants.ContextKeyRole)

		if adminID == nil || labID == nil || role == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		adminRowID, okAdmin := toUint64(adminID)
		sessionLabID, okLab := toUint64(labID)
		roleStr, okRole := role.(string)
		if !okAdmin || !okLab || !okRole {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipal, models.Principal{
			LabID:      sessionLabID,
			AdminRowID: adminRowID,
			Role:       roleStr,
		})
		c.Next()
	}
}

// GetPrincipal retrieves the current principal from context
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return models.Principal{}, false
	}

	principal, ok := value.(models.Principal)
	if !ok {
		return models.Principal{}, false
	}
	return principal, true
}

// SaveSession writes the principal's claims into the session.
func SaveSession(c *gin.Context, principal models.Principal) error {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyAdminID, principal.AdminRowID)
	session.Set(constants.ContextKeyLabID, principal.LabID)
	session.Set(constants.ContextKeyRole, principal.Role)
	return session.Save()
}

func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
