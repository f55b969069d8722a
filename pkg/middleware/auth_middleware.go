package middleware

import (
	"net/http"
	"strings"

	"ledger-service/internal/auth"
	"ledger-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by AuthMiddleware
const (
	UserIDContextKey   = "user_id"
	TenantIDContextKey = "tenant_id"
	RoleContextKey     = "role"
)

// AuthMiddleware validates JWT tokens and stores the caller's user, tenant and role
func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.NewUnauthorized("missing authorization header", "Header: Authorization"))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.NewUnauthorized("invalid authorization header format", "Expected: Bearer <token>"))
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errors.NewUnauthorized("token expired", "Token has expired, please login again"))
				return
			}

			logger.Warn("Invalid token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errors.NewUnauthorized("invalid token", err.Error()))
			return
		}

		c.Set(UserIDContextKey, claims.Subject)
		c.Set(TenantIDContextKey, claims.TenantID)
		c.Set(RoleContextKey, claims.Role)

		logger.Debug("Token validated",
			zap.String("user_id", claims.Subject),
			zap.String("tenant_id", claims.TenantID),
			zap.String("role", claims.Role),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles
func RequireRole(logger *zap.Logger, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(RoleContextKey)
		if _, ok := allowed[role]; !ok {
			logger.Warn("Role not permitted",
				zap.String("role", role),
				zap.String("user_id", c.GetString(UserIDContextKey)),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, errors.NewForbidden(role))
			return
		}
		c.Next()
	}
}

// GetTenantID returns the authenticated tenant
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDContextKey)
}

// GetUserID returns the authenticated user
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDContextKey)
}
