package relay

import "time"

// Version is the service version reported by the health and root endpoints.
const Version = "1.0.0"

// Health status vocabulary. Degraded means the model service is reachable
// but no Kit extension is connected for tool execution.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status       string    `json:"status"`
	Version      string    `json:"version"`
	ADKReady     bool      `json:"adk_ready"`
	KitConnected bool      `json:"kit_connected"`
	Timestamp    time.Time `json:"timestamp"`
}

// ErrorResponse is the body of non-streaming error replies.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
