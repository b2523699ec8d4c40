package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

type noteRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

func (r noteRequest) input() services.NoteInput {
	return services.NoteInput{Title: r.Title, Content: r.Content, Tags: r.Tags}
}

func (h *Handler) listNotes(c *gin.Context) {
	page, limit, ok := bindPage(c)
	if !ok {
		return
	}
	res, err := h.notes.List(c.Request.Context(), identity(c), page, limit)
	if err != nil {
		h.writeError(c, "load notes", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err, "invalid request body"))
		return
	}

	n, err := h.notes.Create(c.Request.Context(), identity(c), req.input())
	if err != nil {
		h.writeError(c, "create note", err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) getNote(c *gin.Context) {
	n, err := h.notes.Get(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.writeError(c, "load note", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) updateNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err, "invalid request body"))
		return
	}

	n, err := h.notes.Update(c.Request.Context(), identity(c), c.Param("id"), req.input())
	if err != nil {
		h.writeError(c, "update note", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) deleteNote(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		h.writeError(c, "delete note", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
