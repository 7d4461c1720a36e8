package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

var badRequestErrors = []error{
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrUnknownModule,
	domain.ErrUnknownStep,
	domain.ErrUnknownWidget,
	domain.ErrInvalidTradeline,
	domain.ErrMissingPrice,
}

var notFoundErrors = []error{
	domain.ErrProfileNotFound,
	domain.ErrProgressNotFound,
	domain.ErrUnknownAchievement,
}

// writeError maps domain sentinels to status codes. Unmapped errors are
// attached to the context for the request logger and hidden from clients.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return "", false
	}
	return userID, true
}
