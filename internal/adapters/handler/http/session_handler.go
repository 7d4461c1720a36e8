package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type SessionHandler struct {
	svc *services.SessionService
}

func NewSessionHandler(svc *services.SessionService) *SessionHandler {
	return &SessionHandler{
		svc: svc,
	}
}

type loginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type recoverRequest struct {
	Email string `json:"email" binding:"required"`
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *SessionHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	session := router.Group("/session")
	{
		session.POST("/login", h.Login)
		session.POST("/signup", h.SignUp)
		session.POST("/recover", h.Recover)
	}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	session := router.Group("/session")
	{
		session.GET("", h.Current)
		session.POST("/logout", h.Logout)
		session.GET("/subscription", h.Subscription)
	}
}

// Login godoc
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "credentials"
// @Success      200   {object}  services.SessionResult
// @Failure      401   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.SignIn(c.Request.Context(), services.SignInInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SignUp godoc
// @Summary      Create an account
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "account"
// @Success      201   {object}  services.SessionResult
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /session/signup [post]
func (h *SessionHandler) SignUp(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.SignUp(c.Request.Context(), services.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SessionHandler) Recover(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.RecoverPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "recovery email sent"})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.SignOut(c.Request.Context(), userID, middleware.GetAccessToken(c)); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Current returns the live user from the auth provider and records the
// daily login on first use of the day.
func (h *SessionHandler) Current(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), middleware.GetAccessToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.svc.EnsureDailyLogin(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Subscription godoc
// @Summary      Current subscription tier
// @Tags         session
// @Produce      json
// @Param        force  query     bool  false  "bypass the cache"
// @Success      200    {object}  domain.Subscription
// @Security     BearerAuth
// @Router       /session/subscription [get]
func (h *SessionHandler) Subscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	force := false
	if raw := c.Query("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "force must be a boolean"})
			return
		}
		force = v
	}

	sub, err := h.svc.Subscription(c.Request.Context(), userID, middleware.GetAccessToken(c), force)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}
