package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthProbeTimeout = 2 * time.Second

// Probe results reported per dependency.
const (
	probeOK          = "ok"
	probeUnreachable = "unreachable"
	probeDisabled    = "disabled"
)

// HealthChecker is anything with a Ping, such as the database pool, the
// Redis client, the event bus or the Temporal client.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks lists the dependencies /health probes. A nil checker is
// reported as disabled and does not degrade the status.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
	Temporal HealthChecker
}

func (h HealthChecks) named() map[string]HealthChecker {
	return map[string]HealthChecker{
		"database":  h.Database,
		"redis":     h.Redis,
		"event_bus": h.EventBus,
		"temporal":  h.Temporal,
	}
}

// HealthHandler pings every dependency in parallel. Any failure turns the
// response into a 503 with status "degraded".
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		var (
			mu   sync.Mutex
			resp = map[string]string{"status": "ok"}
			g    errgroup.Group
		)
		for name, checker := range checks.named() {
			g.Go(func() error {
				result := probe(ctx, checker)
				mu.Lock()
				defer mu.Unlock()
				resp[name] = result
				if result == probeUnreachable {
					resp["status"] = "degraded"
				}
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		if resp["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

func probe(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return probeDisabled
	}
	if err := c.Ping(ctx); err != nil {
		return probeUnreachable
	}
	return probeOK
}
