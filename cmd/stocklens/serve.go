package main

import (
	"context"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"StockLens/internal/collector"
	"StockLens/internal/dashboard"
	"StockLens/internal/notifier"
	"StockLens/internal/recorder"
	"StockLens/internal/scheduler"
	"StockLens/internal/universe"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg
	log := a.logger

	rec := a.newRecorder()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy, log)
	if !tn.Enabled() {
		log.Info("telegram not configured, notifications disabled")
	}

	if cfg.Scan.Enabled {
		period, err := collector.ParsePeriod(cfg.Scan.Period)
		if err != nil {
			return err
		}
		sched := scheduler.NewScheduler(ctx, a.analyzer, tn, rec, scheduler.ScanConfig{
			Cron:      cfg.Scan.Cron,
			Watchlist: cfg.Scan.Watchlist,
			Period:    period,
		}, log)
		if err := sched.RegisterAll(); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)

		if cfg.Scan.RunOnStart {
			log.Info("run_on_start enabled, scanning watchlist now")
			go sched.RunScanNow()
		}
	}

	srv := dashboard.NewServer(dashboard.Deps{
		Analyzer:   a.analyzer,
		Universe:   universe.NewProvider(&http.Client{Timeout: 15 * time.Second}, log),
		Recorder:   rec,
		Metrics:    a.metrics,
		Logger:     log,
		MaxTickers: cfg.Scan.MaxTickers,
	})

	log.Info("stocklens is running, press Ctrl+C to stop")
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		return err
	}
	log.Info("stocklens stopped")
	return nil
}

// newRecorder opens the SQLite history when a path is configured. A failure
// degrades to the no-op recorder.
func (a *app) newRecorder() recorder.Recorder {
	path := a.cfg.Database.SQLitePath
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, a.logger)
	if err != nil {
		a.logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	a.closers = append(a.closers, sr.Close)
	return sr
}
