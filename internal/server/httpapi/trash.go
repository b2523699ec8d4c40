package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listTrash(c *gin.Context) {
	page, limit, ok := bindPage(c)
	if !ok {
		return
	}
	res, err := h.trash.ListTrash(c.Request.Context(), identity(c), page, limit)
	if err != nil {
		h.writeError(c, "load trash", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) restore(c *gin.Context) {
	if err := h.trash.Restore(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		h.writeError(c, "restore note", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) purge(c *gin.Context) {
	if err := h.trash.Purge(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		h.writeError(c, "delete note permanently", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) emptyTrash(c *gin.Context) {
	res, err := h.trash.EmptyTrash(c.Request.Context(), identity(c))
	if err != nil {
		h.writeError(c, "empty trash", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
