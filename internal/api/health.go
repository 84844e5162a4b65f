package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/phishsim-monitor/internal/pkg/httputil"
)

// ComponentCheck reports the health of a single dependency.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "not_configured"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status string                    `json:"status"` // "healthy", "degraded"
	Uptime string                    `json:"uptime"`
	Checks map[string]ComponentCheck `json:"checks"`
}

// HealthChecker probes the storage and realtime dependencies.
// Any dependency can be nil; it then reports "not_configured".
type HealthChecker struct {
	db          *sql.DB
	redisClient *redis.Client
	startTime   time.Time
}

// NewHealthChecker creates a health checker over the given dependencies.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, redisClient: redisClient, startTime: time.Now()}
}

// HandleHealth reports dependency status.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]ComponentCheck{}
	degraded := false

	if hc.db == nil {
		checks["database"] = ComponentCheck{Status: "not_configured", Message: "dev mode, in-memory store"}
	} else {
		start := time.Now()
		if err := hc.db.PingContext(r.Context()); err != nil {
			checks["database"] = ComponentCheck{Status: "down", Message: err.Error()}
			degraded = true
		} else {
			checks["database"] = ComponentCheck{Status: "up", Latency: time.Since(start).String()}
		}
	}

	if hc.redisClient == nil {
		checks["redis"] = ComponentCheck{Status: "not_configured", Message: "single-instance fanout"}
	} else {
		start := time.Now()
		if err := hc.redisClient.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = ComponentCheck{Status: "down", Message: err.Error()}
			degraded = true
		} else {
			checks["redis"] = ComponentCheck{Status: "up", Latency: time.Since(start).String()}
		}
	}

	status := "healthy"
	code := http.StatusOK
	if degraded {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	httputil.JSON(w, code, HealthStatus{
		Status: status,
		Uptime: fmt.Sprintf("%.0fs", time.Since(hc.startTime).Seconds()),
		Checks: checks,
	})
}
