package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthController answers liveness and readiness probes
type HealthController struct {
	checks    map[string]Pinger
	startTime time.Time
	version   string
	timeout   time.Duration
}

// HealthResponse follows Kubernetes health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check is the outcome of one dependency check
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthController creates a HealthController. Nil checks are skipped.
func NewHealthController(checks map[string]Pinger) *HealthController {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthController{
		checks:    active,
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// Health confirms the process is running
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Live is an alias for Health
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health/live [get]
func (h *HealthController) Live(ctx *gin.Context) {
	h.Health(ctx)
}

// Ready checks every dependency the service needs to accept traffic
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *HealthController) Ready(ctx *gin.Context) {
	status := "UP"
	httpStatus := http.StatusOK
	checks := make(map[string]Check, len(h.checks))

	for name, p := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
		err := p.Ping(checkCtx)
		cancel()

		if err != nil {
			checks[name] = Check{Status: "DOWN", Message: "Cannot connect to " + name}
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = Check{Status: "UP"}
	}

	ctx.JSON(httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
	})
}
