package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clawops/clawup/internal/backup"
	"github.com/clawops/clawup/internal/config"
	"github.com/clawops/clawup/internal/phases"
	"github.com/clawops/clawup/internal/service"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.Load(c.String("config"))
}

// newRunContext builds the per-invocation wiring from global flags.
func newRunContext(c *cli.Context) (*phases.RunContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	preload, err := parsePreload(c.StringSlice("set"))
	if err != nil {
		return nil, err
	}
	return phases.NewRunContext(cfg, preload, c.Bool("non-interactive")), nil
}

func parsePreload(pairs []string) (map[string]string, error) {
	preload := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q (want KEY=VALUE)", pair)
		}
		preload[key] = value
	}
	return preload, nil
}

func bootstrapCommand(c *cli.Context) error {
	rc, err := newRunContext(c)
	if err != nil {
		return err
	}
	_, err = phases.Bootstrap(c.Context, rc)
	return err
}

func configureCommand(c *cli.Context) error {
	rc, err := newRunContext(c)
	if err != nil {
		return err
	}
	_, err = phases.Configure(c.Context, rc)
	return err
}

func statusCommand(c *cli.Context) error {
	rc, err := newRunContext(c)
	if err != nil {
		return err
	}

	snap, err := rc.Ctrl.Status(c.Context)
	if err != nil {
		return fmt.Errorf("query service status: %w", err)
	}

	switch snap.State {
	case service.StateRunning:
		rc.Printer.OK("%s is %s (%s backend)", snap.Name, snap.State, rc.Ctrl.Backend())
	case service.StateFailed:
		rc.Printer.Fail("%s is %s: %s", snap.Name, snap.State, snap.Detail)
	default:
		rc.Printer.Warn("%s is %s", snap.Name, snap.State)
	}

	if snap.State == service.StateRunning {
		probe := service.HTTPProbe(rc.Cfg.Service.Port)
		if err := probe(c.Context); err != nil {
			rc.Printer.Warn("Local health endpoint not responding on port %d: %v", rc.Cfg.Service.Port, err)
		} else {
			rc.Printer.OK("Health endpoint responding on port %d", rc.Cfg.Service.Port)
		}
	}
	return nil
}

func restartCommand(c *cli.Context) error {
	rc, err := newRunContext(c)
	if err != nil {
		return err
	}

	rc.Printer.Info("🔄 Restarting %s...", rc.Cfg.Service.Name)
	if err := rc.Ctrl.Restart(c.Context); err != nil {
		return fmt.Errorf("restart: %w", err)
	}

	probe := service.HTTPProbe(rc.Cfg.Service.Port)
	state := service.AwaitHealthy(c.Context, rc.Ctrl, probe, 60*time.Second, 2*time.Second)
	if state != service.StateRunning {
		return fmt.Errorf("service restarted but reached state %q; consult 'clawup logs'", state)
	}
	rc.Printer.OK("%s restarted and healthy", rc.Cfg.Service.Name)
	return nil
}

func logsCommand(c *cli.Context) error {
	rc, err := newRunContext(c)
	if err != nil {
		return err
	}
	out, err := rc.Ctrl.Logs(c.Context, c.Int("lines"))
	if err != nil {
		return fmt.Errorf("fetch logs: %w", err)
	}
	fmt.Print(out)
	return nil
}

func backupCommand(c *cli.Context) error {
	rc, err := newRunContext(c)
	if err != nil {
		return err
	}

	path, err := backup.Create(rc.Cfg.Paths.StateDir, rc.Cfg.Paths.BackupDir)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	rc.Printer.OK("Backup written: %s", path)

	if bucket := rc.Cfg.Backup.S3.Bucket; bucket != "" {
		if err := uploadOffsite(c.Context, rc, path); err != nil {
			rc.Printer.Warn("Offsite upload failed: %v", err)
		} else {
			rc.Printer.OK("Backup uploaded to s3://%s", bucket)
		}
	}

	if c.Bool("prune") {
		maxAge := time.Duration(rc.Cfg.Backup.RetentionDays) * 24 * time.Hour
		removed, err := backup.Prune(rc.Cfg.Paths.BackupDir, maxAge)
		if err != nil {
			return fmt.Errorf("prune backups: %w", err)
		}
		rc.Printer.OK("Pruned %d archives older than %d days", removed, rc.Cfg.Backup.RetentionDays)
	}
	return nil
}

func uploadOffsite(ctx context.Context, rc *phases.RunContext, archivePath string) error {
	s3cfg := rc.Cfg.Backup.S3
	uploader, err := backup.NewUploader(ctx, s3cfg.Profile, s3cfg.Bucket, s3cfg.Prefix)
	if err != nil {
		return err
	}
	return uploader.Upload(ctx, archivePath)
}
