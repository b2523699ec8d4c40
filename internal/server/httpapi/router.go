package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "gophnotes-server"

// NewRouter registers every route of the API on a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(h.requestLogger(), metricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a := r.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/refresh", h.refresh)
	a.POST("/logout", h.logout)

	authed := r.Group("/", h.authenticate())
	authed.GET("/auth/me", h.me)
	authed.POST("/auth/password", h.changePassword)
	authed.POST("/auth/onboarding", h.completeOnboarding)

	authed.GET("/notes", h.listNotes)
	authed.POST("/notes", h.createNote)
	authed.GET("/notes/:id", h.getNote)
	authed.PUT("/notes/:id", h.updateNote)
	authed.DELETE("/notes/:id", h.deleteNote)
	authed.POST("/notes/:id/summary", h.summarize)
	authed.POST("/notes/:id/tags", h.generateTags)
	authed.GET("/ai/usage", h.usage)

	authed.GET("/trash", h.listTrash)
	authed.POST("/trash/:id/restore", h.restore)
	authed.DELETE("/trash/:id", h.purge)
	authed.DELETE("/trash", h.emptyTrash)

	r.POST("/maintenance/sweep", h.sweep)
	r.GET("/maintenance/sweep", h.sweep)

	return r
}
