package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type BillingHandler struct {
	svc *services.BillingService
}

func NewBillingHandler(svc *services.BillingService) *BillingHandler {
	return &BillingHandler{
		svc: svc,
	}
}

type checkoutRequest struct {
	PriceID string `json:"price_id"`
}

func (h *BillingHandler) RegisterRoutes(router *gin.RouterGroup) {
	billing := router.Group("/billing")
	{
		billing.GET("/addons", h.Addons)
		billing.POST("/checkout", h.Checkout)
		billing.POST("/portal", h.Portal)
	}
}

func (h *BillingHandler) Addons(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	addons, err := h.svc.Addons(c.Request.Context(), middleware.GetAccessToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, addons)
}

// Checkout godoc
// @Summary      Start a hosted checkout for a price
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        body  body      checkoutRequest  true  "price"
// @Success      200   {object}  domain.RedirectURL
// @Failure      400   {object}  map[string]string
// @Security     BearerAuth
// @Router       /billing/checkout [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.svc.Checkout(c.Request.Context(), userID, middleware.GetAccessToken(c), req.PriceID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, url)
}

func (h *BillingHandler) Portal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	url, err := h.svc.Portal(c.Request.Context(), userID, middleware.GetAccessToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, url)
}
