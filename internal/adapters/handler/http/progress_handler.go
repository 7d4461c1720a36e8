package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type ProgressHandler struct {
	svc *services.ProgressService
}

func NewProgressHandler(svc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		svc: svc,
	}
}

type saveStepRequest struct {
	Completed *bool           `json:"completed" binding:"required"`
	Notes     *string         `json:"notes"`
	Metadata  domain.Metadata `json:"metadata"`
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	progress := router.Group("/progress")
	{
		progress.GET("", h.List)
		progress.GET("/overview", h.Overview)
		progress.GET("/:module", h.Module)
		progress.GET("/:module/next", h.Next)
		progress.PUT("/:module/:step", h.SaveStep)
	}
}

func (h *ProgressHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	set, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *ProgressHandler) Overview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *ProgressHandler) Module(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	module, ok := moduleParam(c)
	if !ok {
		return
	}

	view, err := h.svc.ModuleProgress(c.Request.Context(), userID, module)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ProgressHandler) Next(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	module, ok := moduleParam(c)
	if !ok {
		return
	}

	step, found, err := h.svc.NextStep(c.Request.Context(), userID, module)
	if err != nil {
		writeError(c, err)
		return
	}

	if !found {
		c.JSON(http.StatusOK, gin.H{"module": module, "next_step": nil, "complete": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"module": module, "next_step": step, "complete": false})
}

// SaveStep godoc
// @Summary      Mark a module step completed or not
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        module  path      string           true  "module id"
// @Param        step    path      string           true  "step id"
// @Param        body    body      saveStepRequest  true  "step state"
// @Success      200     {object}  domain.ProgressRecord
// @Failure      400     {object}  map[string]string
// @Security     BearerAuth
// @Router       /progress/{module}/{step} [put]
func (h *ProgressHandler) SaveStep(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req saveStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.svc.SaveStep(c.Request.Context(), services.SaveStepInput{
		UserID:    userID,
		Module:    domain.ModuleID(c.Param("module")),
		Step:      c.Param("step"),
		Completed: *req.Completed,
		Notes:     req.Notes,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func moduleParam(c *gin.Context) (domain.ModuleID, bool) {
	module := domain.ModuleID(c.Param("module"))
	if _, known := domain.LookupModule(module); !known {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUnknownModule.Error()})
		return "", false
	}
	return module, true
}
