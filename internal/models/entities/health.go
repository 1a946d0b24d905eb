package entities

import "time"

const (
	StatusOK   = "ok"
	StatusDown = "down"
)

// ServiceStatus is the health of one dependency (postgres, cache).
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}
