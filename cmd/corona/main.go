package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flatline-bbs/corona/internal/config"
	"github.com/flatline-bbs/corona/internal/corlog"
	"github.com/flatline-bbs/corona/internal/toss"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "corona",
		Usage: "FTN echomail/netmail tosser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to corona.toml",
				EnvVars: []string{"CORONA_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "toss",
				Usage:  "scan the inbound directory and file every message into its message base",
				Action: runToss,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runToss(c *cli.Context) error {
	cfgPath := c.String("config")
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, err := corlog.New(c.Bool("debug") || cfg.Log.Debug, cfg.Log.JSON)
	if err != nil {
		return fmt.Errorf("corona: build logger: %w", err)
	}
	defer log.Sync()

	log.Info("corona starting",
		zap.String("config", cfgPath),
		zap.String("inbound", cfg.Inbound.Path),
		zap.String("msgbase", cfg.Msgbase.Path),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutdown signal received, finishing current file then exiting")
		cancel()
	}()

	if err := toss.Run(ctx, cfg.Inbound.Path, cfg.Msgbase.Path, log); err != nil {
		return fmt.Errorf("corona: toss failed: %w", err)
	}

	log.Info("corona done")
	return nil
}
