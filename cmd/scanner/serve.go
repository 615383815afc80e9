package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"StockScanner/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the cron scanner, telegram command loop and HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		sched := a.Scheduler
		if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.SummaryCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		runOnStart, _ := cmd.Flags().GetBool("run-on-start")
		if runOnStart {
			go func() {
				rows := sched.RunNow(ctx)
				log.Infof("startup scan finished: %d symbols", len(rows))
			}()
		}

		g, ctx := errgroup.WithContext(ctx)
		if a.Telegram != nil {
			g.Go(func() error {
				a.Telegram.StartPolling(ctx, sched.HandleCommand)
				return nil
			})
			log.Info("telegram polling started")
		}

		router := api.NewRouter(&api.Server{
			Collector: a.Collector,
			Scanner:   sched,
			Recorder:  a.Recorder,
			Metrics:   a.Metrics,
		})
		g.Go(func() error {
			return api.Serve(ctx, cfg.API.Listen, router)
		})

		log.Infof("scanner running with %d symbols, press Ctrl+C to stop", len(sched.Watchlist()))
		err = g.Wait()
		if err != nil && err != context.Canceled {
			return err
		}
		log.Info("scanner stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("run-on-start", false, "scan the watchlist once at startup")
}
