package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophnotes/internal/server/sweeper"
)

// sweep runs the expiry sweep for the external scheduler. When a cron secret
// is configured the bearer token must match it.
func (h *Handler) sweep(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cronSecret != "" {
		token := bearerToken(c)
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
			h.logger.Warn(ctx, "sweep rejected: bad cron secret", "remote", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
	}

	res, err := h.sweeper.Run(ctx, sweeper.TriggerEndpoint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":      false,
			"deletedCount": 0,
			"error":        "sweep failed",
			"details":      err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": res.DeletedCount})
}
