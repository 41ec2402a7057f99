package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker is a dependency that can report its health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (f HealthCheckFunc) Name() string                    { return f.ComponentName }
func (f HealthCheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

// LivenessResponse is the response for liveness probe.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the response for readiness probe.
type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// ComponentCheck is the health of one dependency.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz: 200 when every dependency is healthy,
// 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Components: h.checkAll(ctx)}
	code := http.StatusOK
	for _, c := range resp.Components {
		if c.Status != "healthy" {
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, resp)
}

// checkAll probes every checker concurrently.  A failing checker is reported
// in its component entry and never cancels the others.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]ComponentCheck {
	results := make(map[string]ComponentCheck, len(h.checkers))
	var mu sync.Mutex
	var g errgroup.Group

	for _, checker := range h.checkers {
		c := checker
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			status := ComponentCheck{Status: "healthy", Latency: time.Since(start).Truncate(time.Microsecond).String()}
			if err != nil {
				status.Status = "unhealthy"
				status.Error = err.Error()
			}
			mu.Lock()
			results[c.Name()] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

//Personal.AI order the ending
