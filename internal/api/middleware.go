package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/auth"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const (
	userIDKey = "uid"
	roleKey   = "role"
)

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}).Debug("request handled")
	}
}

// authenticate requires "Authorization: Bearer <jwt>" and stores the caller in the context.
func authenticate(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "no token")
			return
		}

		claims, err := issuer.ParseToken(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "bad token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

func requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if callerRole(c) != role {
			abort(c, http.StatusForbidden, "forbidden", "available to "+string(role)+"s only")
			return
		}
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func callerRole(c *gin.Context) models.Role {
	role, _ := c.Get(roleKey)
	r, _ := role.(models.Role)
	return r
}
