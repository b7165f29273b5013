package middleware

import (
	"strings"

	"github.com/dibyendu2004/BrightPath/config"
	"github.com/dibyendu2004/BrightPath/utils/auth"
	"github.com/dibyendu2004/BrightPath/utils/response"
	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "user_id"
	localClaims = "claims"

	// HeaderUserID carries the caller's id in header mode
	HeaderUserID = "userid"
)

// IdentityMiddleware establishes the caller's user id for protected routes
type IdentityMiddleware struct {
	mode       string
	jwtManager *auth.JWTManager
}

// NewIdentityMiddleware creates the identity boundary. jwtManager is only
// used (and required) in jwt mode.
func NewIdentityMiddleware(mode string, jwtManager *auth.JWTManager) *IdentityMiddleware {
	return &IdentityMiddleware{mode: mode, jwtManager: jwtManager}
}

// Required rejects requests without an identity
func (m *IdentityMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.mode == config.AuthModeJWT {
			return m.fromToken(c)
		}

		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			return response.Unauthorized(c, "")
		}
		c.Locals(localUserID, userID)
		return c.Next()
	}
}

func (m *IdentityMiddleware) fromToken(c *fiber.Ctx) error {
	if m.jwtManager == nil {
		return response.Unauthorized(c, "")
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c, "Missing authorization token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return response.Unauthorized(c, "Invalid authorization format")
	}

	claims, err := m.jwtManager.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if err == auth.ErrExpiredToken {
			return response.Unauthorized(c, "Token has expired")
		}
		return response.Unauthorized(c, "Invalid token")
	}

	c.Locals(localUserID, claims.UserID())
	c.Locals(localClaims, claims)
	return c.Next()
}

// GetUserID returns the authenticated user id, or "" outside protected routes
func GetUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(localUserID).(string); ok {
		return id
	}
	return ""
}

// GetClaims returns the verified token claims in jwt mode
func GetClaims(c *fiber.Ctx) *auth.Claims {
	if claims, ok := c.Locals(localClaims).(*auth.Claims); ok {
		return claims
	}
	return nil
}
