package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

// RequestLogger writes one line per request with the caller, the dispatched
// action (set by the app router) and trace ids. Health and metrics routes log at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if id := ctxutil.UserID(c.Request.Context()); id != uuid.Nil {
			fields = append(fields, "user_id", id.String())
		}
		if action := c.GetString("action"); action != "" {
			fields = append(fields, "action", action)
		}

		switch {
		case unobservedRoutes[route]:
			log.Debug("request", fields...)
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
