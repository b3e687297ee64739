// Package logkey holds the structured-logging attribute names used across the service
// so log output stays grep-able.
package logkey

const (
	TraceID = "trace_id"
	Error   = "error"
	Method  = "method"
	Path    = "path"
	Status  = "status"
	Latency = "latency"
)
