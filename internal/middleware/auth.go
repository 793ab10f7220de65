package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-console/pkg/auth"
	apperrors "github.com/jwalitptl/admin-console/pkg/errors"
	"github.com/jwalitptl/admin-console/pkg/httputil"
)

const ContextClaims = "claims"

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and that it was issued for the
// request's tenant.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondError(c, unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondError(c, unauthorized("invalid authorization format"))
			return
		}

		claims, err := m.jwt.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token has expired"
			}
			httputil.RespondError(c, unauthorized(msg))
			return
		}

		if tenant := GetTenant(c); tenant != "" && claims.Tenant != tenant {
			httputil.RespondError(c, forbidden("token was issued for another tenant"))
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireSuperAdmin must run after Authenticate.
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !claims.SuperAdmin {
			httputil.RespondError(c, forbidden("super admin access required"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified token claims, or nil when the request was
// not authenticated.
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func unauthorized(msg string) *apperrors.AppError {
	err := apperrors.Unauthorized(nil)
	err.Message = msg
	return err
}

func forbidden(msg string) *apperrors.AppError {
	return apperrors.NewForbidden(msg)
}
