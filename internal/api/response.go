package api

import (
	"errors"
	"net/http"
	"strconv"

	"dating_platform/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Every endpoint answers with the same envelope:
// {"success": true, "data": ...} or {"success": false, "message": ...}.

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError translates domain sentinels into client-facing statuses.
// Unexpected errors are logged with full detail and answered with an opaque
// message — internals never reach the response body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondMessage(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrConfigNotSet),
		errors.Is(err, domain.ErrKYCNotVerified),
		errors.Is(err, domain.ErrProfileIncomplete),
		errors.Is(err, domain.ErrReviewNotAccepted),
		errors.Is(err, domain.ErrBelowMinimum):
		respondMessage(c, http.StatusBadRequest, err.Error())
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
		respondMessage(c, http.StatusInternalServerError, "Something went wrong")
	}
}

// currentUserID pulls the authenticated user's id out of the gin context.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return id, true
}

// paramID parses a numeric :id path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondMessage(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// currentAdminID pulls the acting admin's id set by AdminOnlyMiddleware.
func currentAdminID(c *gin.Context) uint {
	if v, exists := c.Get("adminID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
