package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type LayoutHandler struct {
	svc *services.LayoutService
}

func NewLayoutHandler(svc *services.LayoutService) *LayoutHandler {
	return &LayoutHandler{
		svc: svc,
	}
}

type reorderRequest struct {
	Order []domain.WidgetID `json:"order" binding:"required"`
}

type layoutResponse struct {
	*domain.WidgetLayout
	Visible []domain.WidgetID `json:"visible"`
	Message string            `json:"message,omitempty"`
}

func newLayoutResponse(l *domain.WidgetLayout, msg string) layoutResponse {
	return layoutResponse{WidgetLayout: l, Visible: l.Visible(), Message: msg}
}

func (h *LayoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	layout := router.Group("/dashboard/layout")
	{
		layout.GET("", h.Get)
		layout.PUT("/order", h.Reorder)
		layout.POST("/widgets/:id/toggle", h.Toggle)
		layout.POST("/reset", h.Reset)
	}
}

// Get godoc
// @Summary      Dashboard widget layout
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  layoutResponse
// @Security     BearerAuth
// @Router       /dashboard/layout [get]
func (h *LayoutHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	layout, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLayoutResponse(layout, ""))
}

func (h *LayoutHandler) Reorder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	layout, err := h.svc.Reorder(c.Request.Context(), userID, req.Order)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLayoutResponse(layout, ""))
}

func (h *LayoutHandler) Toggle(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	layout, msg, err := h.svc.Toggle(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLayoutResponse(layout, msg))
}

func (h *LayoutHandler) Reset(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	layout, err := h.svc.Reset(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLayoutResponse(layout, "Dashboard reset to default"))
}
