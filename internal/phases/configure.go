package phases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/clawops/clawup/internal/envfile"
	"github.com/clawops/clawup/internal/models"
	"github.com/clawops/clawup/internal/secrets"
	"github.com/clawops/clawup/internal/service"
)

// Configure resolves every cataloged credential, persists the resolved values
// into the gateway's env file, and restarts the service so it picks them up.
// It is safe to re-run: already-persisted values short-circuit through the
// environment chain and unchanged files still get a restart only once.
func Configure(ctx context.Context, rc *RunContext) ([]secrets.Resolution, error) {
	rc.Printer.Banner("Configuring OpenClaw gateway integrations")

	store, err := envfile.Load(rc.Cfg.Paths.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("load secret store: %w", err)
	}

	resolver := rc.NewResolver()
	// Values already on disk count as environment-provided so the operator is
	// never re-prompted for a credential the gateway already has.
	resolver.Environ = func(key string) string {
		if v, ok := store.Get(key); ok && v != "" {
			return v
		}
		return os.Getenv(key)
	}

	resolutions, err := resolver.ResolveAll(ctx, Catalog(rc.Cfg))
	if err != nil {
		var missing *models.MissingSecretError
		if errors.As(err, &missing) {
			rc.Printer.Fail("Missing required credential: %s (%s)", missing.Key, missing.Description)
			rc.Printer.Info("💡 Provide it via --set %s=..., the environment, or your secret manager, then re-run 'clawup configure'.", missing.Key)
		}
		return resolutions, err
	}

	if err := persist(rc, store, resolutions); err != nil {
		return resolutions, err
	}

	restart(ctx, rc)
	joinMesh(ctx, rc, resolutions)

	PrintSummary(rc.Printer, resolutions)
	return resolutions, nil
}

func persist(rc *RunContext, store *envfile.File, resolutions []secrets.Resolution) error {
	var keys []string
	entries := map[string]string{}
	for _, res := range resolutions {
		if res.Skipped() {
			continue
		}
		keys = append(keys, res.Spec.Key)
		entries[res.Spec.Key] = res.Value
	}
	store.Merge(keys, entries)
	if err := store.Save(rc.Cfg.Paths.EnvFile); err != nil {
		return fmt.Errorf("persist secret store: %w", err)
	}
	rc.Printer.OK("Persisted %d credentials to %s", len(keys), rc.Cfg.Paths.EnvFile)
	return nil
}

// restart applies the new environment. A restart failure is reported, not
// fatal: the credentials are safely on disk and the service can be bounced
// by hand.
func restart(ctx context.Context, rc *RunContext) {
	rc.Printer.Info("🔄 Restarting %s to apply configuration...", rc.Cfg.Service.Name)
	if err := rc.Ctrl.Restart(ctx); err != nil {
		rc.Printer.Warn("Restart failed: %v. Consult 'clawup logs' and restart manually.", err)
		return
	}
	probe := service.HTTPProbe(rc.Cfg.Service.Port)
	if state := service.AwaitHealthy(ctx, rc.Ctrl, probe, 60*time.Second, 2*time.Second); state != service.StateRunning {
		rc.Printer.Warn("Service restarted but did not report healthy (state: %s). Consult 'clawup logs'.", state)
		return
	}
	rc.Printer.OK("Gateway restarted and healthy")
}

// joinMesh joins the VPN mesh when an auth key was resolved and the host is
// not already a member. Mesh membership is desirable, not essential, so any
// failure is a warning.
func joinMesh(ctx context.Context, rc *RunContext, resolutions []secrets.Resolution) {
	var key string
	for _, res := range resolutions {
		if res.Spec.Key == "TAILSCALE_AUTH_KEY" && !res.Skipped() {
			key = res.Value
		}
	}
	if key == "" {
		return
	}
	if rc.Runner.Run(ctx, "tailscale", "status") == nil {
		return
	}
	if err := rc.Runner.Run(ctx, "tailscale", "up", "--auth-key", key); err != nil {
		rc.Printer.Warn("VPN mesh join failed: %v", err)
		return
	}
	rc.Printer.OK("Joined VPN mesh")
}
