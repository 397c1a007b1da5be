package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RigelNana/cinexnema/services/video-service/service"
)

type CreatorHandler struct {
	creators service.CreatorService
}

func NewCreatorHandler(creators service.CreatorService) *CreatorHandler {
	return &CreatorHandler{creators: creators}
}

// Dashboard GET /api/creators/dashboard
func (h *CreatorHandler) Dashboard(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	dash, err := h.creators.Dashboard(c.Request.Context(), creatorID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, dash)
}

// ListProjects GET /api/creators/projects
func (h *CreatorHandler) ListProjects(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	projects, err := h.creators.ListProjects(c.Request.Context(), creatorID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"projects": projects})
}

// CreateProject POST /api/creators/projects
func (h *CreatorHandler) CreateProject(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	project, err := h.creators.CreateProject(c.Request.Context(), creatorID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"project": project})
}

// DeleteProject DELETE /api/creators/projects/:id
func (h *CreatorHandler) DeleteProject(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.creators.DeleteProject(c.Request.Context(), creatorID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": id})
}
