package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type AchievementHandler struct {
	svc *services.AchievementService
}

func NewAchievementHandler(svc *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		svc: svc,
	}
}

func (h *AchievementHandler) RegisterRoutes(router *gin.RouterGroup) {
	achievements := router.Group("/achievements")
	{
		achievements.GET("", h.List)
		achievements.GET("/stats", h.Stats)
		achievements.POST("/check", h.Check)
	}
}

// List godoc
// @Summary      Achievement catalog joined with the user's earned set
// @Tags         achievements
// @Produce      json
// @Success      200  {array}  domain.AchievementView
// @Security     BearerAuth
// @Router       /achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	views, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *AchievementHandler) Stats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Check runs the evaluator synchronously and returns what was newly earned.
func (h *AchievementHandler) Check(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	awarded, err := h.svc.CheckAndAward(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if awarded == nil {
		awarded = []domain.Achievement{}
	}

	c.JSON(http.StatusOK, gin.H{"awarded": awarded})
}
