package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RigelNana/cinexnema/gateway/middleware"
	"github.com/RigelNana/cinexnema/pkg/apperr"
	authservice "github.com/RigelNana/cinexnema/services/auth-service/service"
)

type AuthHandler struct {
	auth authservice.AuthService
}

func NewAuthHandler(auth authservice.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req authservice.Credentials
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, session)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req authservice.Credentials
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session)
}

// Session POST /api/auth/session signs in, registering the user first if needed.
func (h *AuthHandler) Session(c *gin.Context) {
	var req authservice.Credentials
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.SignInOrSignUp(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if session.Created {
		status = http.StatusCreated
	}
	respond(c, status, session)
}

// Validate GET /api/auth/validate reports whether the bearer token is usable.
// An unusable token is a valid answer, not an error.
func (h *AuthHandler) Validate(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		token = c.Query("token")
	}
	principal, err := h.auth.ValidateToken(c.Request.Context(), token)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			ok(c, gin.H{"valid": false})
			return
		}
		fail(c, err)
		return
	}
	ok(c, gin.H{"valid": true, "user": principal})
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ChangePassword PUT /api/auth/password replaces the caller's password.
// Tokens already issued stay valid until they expire.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, found := callerID(c)
	if !found {
		return
	}
	var req passwordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.UpdatePassword(c.Request.Context(), id, req.Password); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"updated": true})
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, found := middleware.CurrentPrincipal(c)
	if !found {
		fail(c, apperr.Unauthorized("authentication required"))
		return
	}
	ok(c, p)
}
