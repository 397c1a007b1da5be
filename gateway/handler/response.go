package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RigelNana/cinexnema/gateway/middleware"
	"github.com/RigelNana/cinexnema/pkg/apperr"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func ok(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, data)
}

func fail(c *gin.Context, err error) {
	middleware.RenderError(c, err)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperr.Wrap(apperr.KindValidation, "invalid request body: "+err.Error(), err))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, apperr.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// callerID is the authenticated user. Routes using it sit behind JWTAuth.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.CurrentUserID(c)
	if id == uuid.Nil {
		fail(c, apperr.Unauthorized("authentication required"))
		return uuid.Nil, false
	}
	return id, true
}
