package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type StreakHandler struct {
	svc *services.StreakService
}

func NewStreakHandler(svc *services.StreakService) *StreakHandler {
	return &StreakHandler{
		svc: svc,
	}
}

func (h *StreakHandler) RegisterRoutes(router *gin.RouterGroup) {
	streaks := router.Group("/streaks")
	{
		streaks.GET("", h.Summary)
		streaks.POST("/login", h.RecordLogin)
		streaks.POST("/task", h.RecordTask)
	}
}

// Summary godoc
// @Summary      Streak counters and at-risk flags
// @Tags         streaks
// @Produce      json
// @Success      200  {object}  services.StreakSummary
// @Security     BearerAuth
// @Router       /streaks [get]
func (h *StreakHandler) Summary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *StreakHandler) RecordLogin(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	state, recorded, err := h.svc.RecordLogin(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak": state, "recorded": recorded})
}

func (h *StreakHandler) RecordTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	state, err := h.svc.RecordTaskCompletion(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak": state})
}
