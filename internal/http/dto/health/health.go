// Package health contiene DTOs para health checks.
package health

import "time"

// HealthResponse es la respuesta de /healthz y /readyz.
type HealthResponse struct {
	Status     string            `json:"status"` // ok | degraded
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
