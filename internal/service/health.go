package service

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HealthProbe reports whether the service answers locally.
type HealthProbe func(ctx context.Context) error

// HTTPProbe builds a probe that requires any successful HTTP response from
// the service's local port. The gateway answering at all is the health
// signal; its response body is not interpreted.
func HTTPProbe(port int) HealthProbe {
	url := fmt.Sprintf("http://127.0.0.1:%d/", port)
	client := &http.Client{Timeout: 2 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("health endpoint returned %s", resp.Status)
		}
		return nil
	}
}

// AwaitHealthy polls until the backend reports running AND the local probe
// succeeds, or until timeout. It returns the terminal observed state; it
// never errors, because "didn't come up in time" is a state, not a fault of
// the caller.
func AwaitHealthy(ctx context.Context, ctrl Controller, probe HealthProbe, timeout, poll time.Duration) State {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		snap, err := ctrl.Status(ctx)
		if err == nil && snap.State == StateRunning {
			if probe == nil {
				return StateRunning
			}
			if probe(ctx) == nil {
				return StateRunning
			}
		}
		if err == nil && snap.State == StateFailed {
			return StateFailed
		}

		if time.Now().After(deadline) {
			return StateFailed
		}
		select {
		case <-ctx.Done():
			return StateFailed
		case <-ticker.C:
		}
	}
}
