package services

import (
	"context"
	"time"
)

// HealthReport is the body of the health endpoint.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthService pings the named backends.
type HealthService struct {
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthService(checks map[string]Pinger) *HealthService {
	if checks == nil {
		checks = map[string]Pinger{}
	}
	return &HealthService{checks: checks, timeout: 2 * time.Second}
}

// Check reports "ok" when every backend answers, "degraded" otherwise.
func (s *HealthService) Check(ctx context.Context) (HealthReport, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := HealthReport{Status: "ok", Checks: make(map[string]string, len(s.checks))}
	healthy := true
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			report.Checks[name] = err.Error()
			healthy = false
			continue
		}
		report.Checks[name] = "ok"
	}
	if !healthy {
		report.Status = "degraded"
	}
	return report, healthy
}
