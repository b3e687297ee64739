package middleware

import (
	"log/slog"
	"time"

	"order-management-service/pkg/ctxmanage"
	"order-management-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Logger assigns a trace id to every request and logs method, path, status and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.SetTraceIdOfRequest(c)
		start := time.Now()

		c.Next()

		slog.Info("request completed",
			slog.String(logkey.TraceID, traceId),
			slog.String(logkey.Method, c.Request.Method),
			slog.String(logkey.Path, c.Request.URL.Path),
			slog.Int(logkey.Status, c.Writer.Status()),
			slog.String(logkey.Latency, time.Since(start).String()),
		)
	}
}
