package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultUsageWindow = 30 * 24 * time.Hour

func (h *Handler) summarize(c *gin.Context) {
	n, err := h.assistant.Summarize(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.writeError(c, "generate summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": n.Summary, "note": n})
}

func (h *Handler) generateTags(c *gin.Context) {
	n, err := h.assistant.GenerateTags(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.writeError(c, "generate tags", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": n.Tags, "note": n})
}

type usageQuery struct {
	Since time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
}

// usage reports token totals since the RFC 3339 "since" query parameter,
// defaulting to the last 30 days.
func (h *Handler) usage(c *gin.Context) {
	var q usageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "since must be an RFC 3339 timestamp")
		return
	}
	since := q.Since
	if since.IsZero() {
		since = h.now().Add(-defaultUsageWindow)
	}

	totals, err := h.assistant.Usage(c.Request.Context(), identity(c), since)
	if err != nil {
		h.writeError(c, "load usage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"since": since, "totals": totals})
}
