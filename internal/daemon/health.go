package daemon

import (
	"os/exec"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/version"
)

// HealthStatus represents the overall health of the daemon.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a single health check.
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthResponse represents the complete health check response.
type HealthResponse struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Checks    []HealthCheck `json:"checks"`
}

// Health executes all health checks and returns the overall status. A
// missing generator or repository degrades the daemon rather than failing
// liveness: the HTTP surface still works and the condition may be repaired
// without a restart.
func (d *Daemon) Health() *HealthResponse {
	checks := []HealthCheck{
		d.checkRepository(),
		d.checkGenerator(),
		d.checkQueue(),
	}

	overall := HealthStatusHealthy
	for _, c := range checks {
		if c.Status != HealthStatusHealthy {
			overall = HealthStatusDegraded
			break
		}
	}

	return &HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Uptime:    time.Since(d.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Checks:    checks,
	}
}

func (d *Daemon) checkRepository() HealthCheck {
	if err := d.git.EnsureRepository(); err != nil {
		return HealthCheck{Name: "repository", Status: HealthStatusDegraded, Message: err.Error()}
	}
	return HealthCheck{Name: "repository", Status: HealthStatusHealthy}
}

func (d *Daemon) checkGenerator() HealthCheck {
	command := d.generatorCommand()
	if command == "" {
		return HealthCheck{Name: "generator", Status: HealthStatusDegraded, Message: "no generator command configured"}
	}
	if _, err := exec.LookPath(command); err != nil {
		return HealthCheck{Name: "generator", Status: HealthStatusDegraded, Message: err.Error()}
	}
	return HealthCheck{Name: "generator", Status: HealthStatusHealthy}
}

func (d *Daemon) checkQueue() HealthCheck {
	depth := d.queue.Length()
	if depth >= d.queue.Capacity() {
		return HealthCheck{Name: "queue", Status: HealthStatusDegraded, Message: "publish queue is full"}
	}
	return HealthCheck{Name: "queue", Status: HealthStatusHealthy}
}

func (d *Daemon) generatorCommand() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg.Generator.Command
}
