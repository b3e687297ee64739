// Package ctxmanage carries per-request values, currently only the trace id assigned
// by the logging middleware.
package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const traceIDKey = "trace_id"

// SetTraceIdOfRequest assigns a fresh trace id to the request and returns it.
func SetTraceIdOfRequest(c *gin.Context) string {
	traceId := uuid.NewString()
	c.Set(traceIDKey, traceId)
	return traceId
}

// GetTraceIdOfRequest returns the trace id set by the logging middleware, or an empty
// string when the middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(traceIDKey).(string)
	if !ok {
		return ""
	}
	return traceId
}
