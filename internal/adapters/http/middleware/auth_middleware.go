package middleware

import (
	"strings"

	"insureadmin/internal/config"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/core/services"
	"insureadmin/internal/pkg/jwt"
	"insureadmin/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware. The role claim is parsed
// against the closed role set here, so downstream handlers only ever see one
// of the three known roles.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Role must be one of the three known roles
		role, err := domain.ParseRole(claims.Role)
		if err != nil {
			return response.Unauthorized(c, "Invalid access token")
		}

		// 6. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", role)

		return c.Next()
	}
}

// Caller builds the caller identity for the current request
func Caller(c *fiber.Ctx) (services.Caller, bool) {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return services.Caller{}, false
	}
	role, ok := c.Locals("role").(domain.Role)
	if !ok {
		return services.Caller{}, false
	}
	return services.Caller{UserID: userID, Role: role}, true
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(domain.Role)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the administrator role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdministrator)
}

// AgentOrAdmin middleware allows agent or administrator roles
func AgentOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleAgent, domain.RoleAdministrator)
}
