package models

// Health states reported by GET /health
const (
	HealthOK       = "healthy"
	HealthDegraded = "degraded"

	// HealthUnavailable marks a failed component; the cause is only logged
	HealthUnavailable = "unavailable"
)

// HealthReport summarizes backend reachability
type HealthReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
