package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockLens/internal/analyzer"
	"StockLens/internal/collector"
	"StockLens/internal/notifier"
	"StockLens/internal/recorder"
)

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// ScanConfig describes the watchlist scan.
type ScanConfig struct {
	Cron      string
	Watchlist []string
	Period    collector.Period
}

// ScanResult is the outcome of one watchlist scan.
type ScanResult struct {
	ID     string
	Time   time.Time
	Report *analyzer.Report
}

// Scheduler manages the cron scan and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analyzer.Analyzer
	Notifier Notifier
	Recorder recorder.Recorder
	Scan     ScanConfig
	Ctx      context.Context

	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an *analyzer.Analyzer, n Notifier, rec recorder.Recorder, scan ScanConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if scan.Period == "" {
		scan.Period = collector.DefaultPeriod
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: an,
		Notifier: n,
		Recorder: rec,
		Scan:     scan,
		Ctx:      ctx,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterAll registers the watchlist scan.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.Scan.Cron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.String("scan_cron", s.Scan.Cron))
}

// Stop stops the cron scheduler and waits for a running scan.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunScanNow executes the watchlist scan immediately.
func (s *Scheduler) RunScanNow() *ScanResult {
	return s.scan()
}

func (s *Scheduler) scanTask() {
	s.scan()
}

func (s *Scheduler) scan() *ScanResult {
	res := &ScanResult{ID: uuid.NewString(), Time: s.now()}
	log := s.logger.With(zap.String("scan_id", res.ID))
	log.Info("running watchlist scan", zap.Strings("watchlist", s.Scan.Watchlist))

	if len(s.Scan.Watchlist) == 0 {
		log.Warn("watchlist is empty, nothing to scan")
		res.Report = &analyzer.Report{Period: s.Scan.Period}
		return res
	}

	res.Report = s.Analyzer.AnalyzeAll(s.Ctx, s.Scan.Watchlist, s.Scan.Period)
	for _, f := range res.Report.Failures {
		log.Warn("scan ticker failed", zap.String("symbol", f.Symbol), zap.String("error", f.Error))
	}

	s.trySend(notifier.FormatScanReport(res.Time, res.Report.Analyses, res.Report.FailedSymbols()))

	for _, a := range res.Report.Analyses {
		if err := s.Recorder.RecordSnapshot(recorder.NewSnapshot(res.ID, a, res.Time)); err != nil {
			log.Error("record snapshot", zap.String("symbol", a.Symbol), zap.Error(err))
		}
	}
	return res
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/scan":
		s.scan()
		return ""
	case "/signal":
		if len(fields) < 2 {
			return "Usage: /signal SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		a, err := s.Analyzer.AnalyzeOne(s.Ctx, symbol, s.Scan.Period)
		if err != nil {
			s.logger.Warn("signal command failed", zap.String("symbol", symbol), zap.Error(err))
			return fmt.Sprintf("❌ %s: %v", symbol, err)
		}
		return notifier.FormatAnalysis(a)
	case "/watchlist":
		if len(s.Scan.Watchlist) == 0 {
			return "Watchlist is empty."
		}
		return fmt.Sprintf("Watchlist (%s): %s", s.Scan.Period, strings.Join(s.Scan.Watchlist, ", "))
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /scan - run the watchlist scan\n• /signal SYMBOL - analyze one ticker\n• /watchlist - show the watchlist"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}
