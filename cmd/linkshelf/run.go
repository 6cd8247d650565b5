package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/meanun/linkshelf/internal/bot"
	"github.com/meanun/linkshelf/internal/dashboard"
	"github.com/meanun/linkshelf/internal/db"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the Linkshelf bot",
		Long:  "Connects to Telegram and the catalog database, then long-polls for updates. Also starts the web dashboard and the dead-link sweep when configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "linkshelf.yaml", "path to Linkshelf config file")
	return cmd
}

func runBot(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	b, err := bot.New(bot.Opts{DB: gormDB, Config: cfg})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.LinkSweepCron != "" {
		sched := cron.New()
		if _, err := sched.AddFunc(cfg.LinkSweepCron, func() { b.SweepLinks(ctx) }); err != nil {
			return fmt.Errorf("schedule link sweep %q: %w", cfg.LinkSweepCron, err)
		}
		sched.Start()
		defer sched.Stop()
		fmt.Fprintf(out, "Link sweep scheduled: %s\n", cfg.LinkSweepCron)
	}

	if cfg.DashboardPort > 0 {
		go func() {
			if err := dashboard.Start(ctx, dashboard.StartOpts{
				DB:   gormDB,
				Port: cfg.DashboardPort,
				Out:  out,
			}); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "dashboard stopped: %v\n", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
		b.Stop()
	}()

	b.Start()
	return nil
}
