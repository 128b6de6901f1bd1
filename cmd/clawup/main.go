package main

import (
	"log"
	"os"

	"github.com/clawops/clawup/internal/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "clawup",
		Usage: "Provision and operate an OpenClaw gateway host",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to clawup.yaml",
				Value: config.DefaultPath(),
			},
			&cli.BoolFlag{
				Name:  "non-interactive",
				Usage: "Never prompt; required secrets must come from --set, the environment, or the secret manager",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "Preload a secret as KEY=VALUE (repeatable, outranks the environment)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "bootstrap",
				Usage:  "Provision this host: packages, runtime, gateway, service, firewall",
				Action: bootstrapCommand,
			},
			{
				Name:   "configure",
				Usage:  "Resolve integration credentials and apply them to the gateway",
				Action: configureCommand,
			},
			{
				Name:   "status",
				Usage:  "Show the gateway service state and health",
				Action: statusCommand,
			},
			{
				Name:   "restart",
				Usage:  "Restart the gateway and wait for it to report healthy",
				Action: restartCommand,
			},
			{
				Name:  "logs",
				Usage: "Show recent gateway logs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "lines",
						Usage: "Number of log lines to show",
						Value: 100,
					},
				},
				Action: logsCommand,
			},
			{
				Name:  "backup",
				Usage: "Archive the gateway state directory",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Remove archives older than the retention window",
					},
				},
				Action: backupCommand,
			},
		},
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
