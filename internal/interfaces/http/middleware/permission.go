package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for the role guard
type RoleConfig struct {
	Logger *zap.Logger
	// OnDenied is called when the role check fails (optional)
	OnDenied func(c *gin.Context, required identity.Role)
}

// RequireRole creates middleware that lets only actors with the given role
// through. It must run after JWTAuthMiddleware.
func RequireRole(role identity.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(role, RoleConfig{})
}

// RequireRoleWithConfig creates the role guard with custom config
func RequireRoleWithConfig(role identity.Role, cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", getRequestID(c)))
			return
		}
		if actor.Role != role {
			handleRoleDenied(c, cfg, role, actor.Role)
			return
		}
		c.Next()
	}
}

// RequireLandlord guards landlord-only routes
func RequireLandlord() gin.HandlerFunc {
	return RequireRole(identity.RoleLandlord)
}

// RequireTenant guards tenant-only routes
func RequireTenant() gin.HandlerFunc {
	return RequireRole(identity.RoleTenant)
}

func handleRoleDenied(c *gin.Context, cfg RoleConfig, required, actual identity.Role) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Role check failed",
			zap.String("user_id", c.GetString(JWTUserIDKey)),
			zap.String("required_role", string(required)),
			zap.String("role", string(actual)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Only a "+string(required)+" can do this", getRequestID(c)))
}
