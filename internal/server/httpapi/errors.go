package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
)

// writeError maps a note, trash or assistant error to a response. Unknown
// errors are logged with their cause and answered with a generic message.
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, common.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in"})
	case errors.Is(err, common.ErrNotFoundInTrash):
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found in trash"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrAIUnavailable):
		h.logger.Warn(c.Request.Context(), "assistant unavailable", "op", op, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai assistant unavailable"})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op})
	}
}

// writeAuthError answers account routes through the auth.Kind taxonomy.
func (h *Handler) writeAuthError(c *gin.Context, op string, err error) {
	k := auth.Classify(err)
	if k == auth.KindInternal {
		h.logger.Error(c.Request.Context(), "account request failed", "op", op, "error", err)
	}
	c.JSON(k.Status(), gin.H{"error": k.Message(), "code": k.String()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
