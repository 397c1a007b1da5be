package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	authservice "github.com/RigelNana/cinexnema/services/auth-service/service"
)

const (
	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextRole      = "role"
	contextPrincipal = "principal"
)

func setPrincipal(c *gin.Context, p *authservice.Principal) {
	c.Set(contextPrincipal, p)
	c.Set(ContextUserID, p.UserID.String())
	c.Set(ContextEmail, p.Email)
	c.Set(ContextRole, p.Role)
}

// CurrentPrincipal returns the caller set by JWTAuth.
func CurrentPrincipal(c *gin.Context) (*authservice.Principal, bool) {
	v, ok := c.Get(contextPrincipal)
	if !ok {
		return nil, false
	}
	p, ok := v.(*authservice.Principal)
	return p, ok && p != nil
}

// CurrentUserID is CurrentPrincipal's id, uuid.Nil when unauthenticated.
func CurrentUserID(c *gin.Context) uuid.UUID {
	if p, ok := CurrentPrincipal(c); ok {
		return p.UserID
	}
	return uuid.Nil
}

// RenderError aborts the request with the error envelope for err.
func RenderError(c *gin.Context, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		ae = apperr.Internal(err)
	}
	_ = c.Error(err)

	body := gin.H{
		"success": false,
		"error":   ae.Kind,
		"message": ae.Message,
	}
	if ae.Reason != "" {
		body["reason"] = ae.Reason
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(ae.Kind), body)
}
