package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// bindFailed answers an account request whose body did not bind, in the
// same shape as writeAuthError.
func bindFailed(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": bindMessage(err, "invalid request body"),
		"code":  auth.KindValidation.String(),
	})
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, "register", err)
		return
	}
	h.logger.Info(c.Request.Context(), "Registered", "user_id", u.ID)
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	tokens, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	tokens, err := h.accounts.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(c, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.writeAuthError(c, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.accounts.Me(c.Request.Context(), identity(c))
	if err != nil {
		h.writeAuthError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), identity(c), req.OldPassword, req.NewPassword); err != nil {
		h.writeAuthError(c, "change password", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) completeOnboarding(c *gin.Context) {
	if err := h.accounts.CompleteOnboarding(c.Request.Context(), identity(c)); err != nil {
		h.writeAuthError(c, "onboarding", err)
		return
	}
	c.Status(http.StatusNoContent)
}
