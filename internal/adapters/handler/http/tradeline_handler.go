package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type TradelineHandler struct {
	svc *services.TradelineService
}

func NewTradelineHandler(svc *services.TradelineService) *TradelineHandler {
	return &TradelineHandler{
		svc: svc,
	}
}

type addTradelineRequest struct {
	VendorName  string     `json:"vendor_name" binding:"required"`
	CreditLimit float64    `json:"credit_limit"`
	ReportsTo   []string   `json:"reports_to"`
	OpenedAt    *time.Time `json:"opened_at"`
}

func (h *TradelineHandler) RegisterRoutes(router *gin.RouterGroup) {
	tradelines := router.Group("/tradelines")
	{
		tradelines.GET("", h.List)
		tradelines.POST("", h.Add)
	}
}

func (h *TradelineHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *TradelineHandler) Add(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req addTradelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.svc.Add(c.Request.Context(), services.AddTradelineInput{
		UserID:      userID,
		VendorName:  req.VendorName,
		CreditLimit: req.CreditLimit,
		ReportsTo:   req.ReportsTo,
		OpenedAt:    req.OpenedAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}
