package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

const identityKey = "gophnotes_identity"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader(common.AuthorizationHeaderName)
	n := len(common.BearerPrefix)
	if len(h) < n || !strings.EqualFold(h[:n], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[n:])
}

// authenticate resolves the bearer token into an Identity. A request without
// a token continues as Anonymous and is refused by the services; a token that
// does not verify is rejected here.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Set(identityKey, services.Anonymous)
			c.Next()
			return
		}

		id, err := h.accounts.Authenticate(token)
		if err != nil {
			k := auth.Classify(err)
			c.AbortWithStatusJSON(k.Status(), gin.H{"error": k.Message(), "code": k.String()})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identity(c *gin.Context) services.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(services.Identity); ok {
			return id
		}
	}
	return services.Anonymous
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
