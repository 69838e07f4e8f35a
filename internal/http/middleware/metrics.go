package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
)

var unobservedRoutes = map[string]bool{
	"/metrics": true,
	"/healthz": true,
}

// Metrics records request count and latency per matched route. Health routes
// are skipped, unmatched paths share one label, and presence streams are
// counted without latency since they stay open for the whole session.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if unobservedRoutes[route] {
			c.Next()
			return
		}
		streaming := strings.HasSuffix(route, "/presence")
		if !streaming {
			m.ApiInflightInc()
			defer m.ApiInflightDec()
		}
		start := time.Now()

		c.Next()

		if route == "" {
			route = "unmatched"
		}
		dur := time.Since(start)
		if streaming {
			dur = 0
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), dur)
	}
}
