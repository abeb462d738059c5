package system

import (
	"context"
	"time"
)

// ComponentStatus represents the status of system components
type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"

	checkTimeout = 5 * time.Second
)

// Component is a dependency probed by CheckHealth.
type Component struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthStatus represents system health status
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

// CheckHealth probes every component. The system is unhealthy when any
// component is down.
func (s *System) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "healthy",
		Components: make(map[string]ComponentStatus, len(s.cfg.Checks)),
	}

	for _, c := range s.cfg.Checks {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.Check(cctx)
		cancel()

		if err != nil {
			s.logger.Error(err, "health check failed", "component", c.Name)
			status.Components[c.Name] = StatusDown
			status.Status = "unhealthy"
			continue
		}
		status.Components[c.Name] = StatusUp
	}

	return status
}
