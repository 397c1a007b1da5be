package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	authservice "github.com/RigelNana/cinexnema/services/auth-service/service"
)

// TokenValidator introspects bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*authservice.Principal, error)
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if after, ok := strings.CutPrefix(header, "bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}

// JWTAuth rejects requests without a valid bearer token and stores the
// principal in the context.
func JWTAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			RenderError(c, apperr.Unauthorized("missing Authorization header"))
			return
		}
		principal, err := v.ValidateToken(c.Request.Context(), token)
		if err != nil {
			RenderError(c, err)
			return
		}
		setPrincipal(c, principal)
		c.Next()
	}
}

// RequireAdmin must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			RenderError(c, apperr.Unauthorized("authentication required"))
			return
		}
		if !p.IsAdmin() {
			RenderError(c, apperr.Forbidden("admin role required"))
			return
		}
		c.Next()
	}
}
