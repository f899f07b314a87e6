package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/analyzer"
	"StockLens/internal/collector"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
	"StockLens/internal/strategy"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeRecorder struct {
	recorder.NoopRecorder
	snaps []*recorder.Snapshot
	err   error
}

func (f *fakeRecorder) RecordSnapshot(s *recorder.Snapshot) error {
	f.snaps = append(f.snaps, s)
	return f.err
}

func newTestScheduler(watchlist []string) (*Scheduler, *fakeNotifier, *fakeRecorder) {
	mock := &collector.MockFetcher{
		Price: 100,
		Errs:  map[string]error{"BAD": fmt.Errorf("mock: %w", collector.ErrNoData)},
	}
	col := collector.NewCollector(mock, collector.Options{})
	an := analyzer.New(col, strategy.DefaultParams(), nil, nil)
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	s := NewScheduler(context.Background(), an, n, rec, ScanConfig{
		Cron:      "0 30 22 * * 1-5",
		Watchlist: watchlist,
		Period:    collector.Period3Mo,
	}, nil)
	s.now = func() time.Time { return time.Date(2025, 6, 30, 22, 30, 0, 0, time.UTC) }
	return s, n, rec
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(nil)
	require.NoError(t, s.RegisterAll())
	assert.Len(t, s.Cron.Entries(), 1)

	s.Scan.Cron = "not a cron"
	assert.Error(t, s.RegisterAll())
}

func TestRunScanNow(t *testing.T) {
	s, n, rec := newTestScheduler([]string{"AAPL", "BAD", "MSFT"})

	res := s.RunScanNow()
	_, err := uuid.Parse(res.ID)
	require.NoError(t, err)
	require.Len(t, res.Report.Analyses, 2)
	assert.Equal(t, []string{"BAD"}, res.Report.FailedSymbols())

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "2025-06-30 22:30")
	assert.Contains(t, n.sent[0], "Failed: BAD")

	require.Len(t, rec.snaps, 2)
	assert.Equal(t, res.ID, rec.snaps[0].ScanID)
	assert.Equal(t, "AAPL", rec.snaps[0].Symbol)
	assert.Equal(t, "3mo", rec.snaps[0].Period)
	assert.Equal(t, res.Time, rec.snaps[1].Timestamp)
}

func TestRunScanNow_RecorderErrorDoesNotStopScan(t *testing.T) {
	s, n, rec := newTestScheduler([]string{"AAPL", "MSFT"})
	rec.err = fmt.Errorf("disk full")

	res := s.RunScanNow()
	assert.Len(t, res.Report.Analyses, 2)
	assert.Len(t, rec.snaps, 2)
	assert.Len(t, n.sent, 1)
}

func TestRunScanNow_EmptyWatchlist(t *testing.T) {
	s, n, rec := newTestScheduler(nil)

	res := s.RunScanNow()
	assert.Empty(t, res.Report.Analyses)
	assert.Empty(t, n.sent)
	assert.Empty(t, rec.snaps)
}

func TestHandleCommand(t *testing.T) {
	s, n, _ := newTestScheduler([]string{"AAPL", "MSFT"})

	assert.Equal(t, "", s.HandleCommand("/scan"))
	assert.Len(t, n.sent, 1)

	reply := s.HandleCommand("/signal aapl")
	assert.Contains(t, reply, "<b>AAPL</b>")
	assert.Contains(t, reply, "(3mo)")

	assert.Contains(t, s.HandleCommand("/signal BAD"), "BAD")
	assert.Equal(t, "Usage: /signal SYMBOL", s.HandleCommand("/signal"))
	assert.Equal(t, "Watchlist (3mo): AAPL, MSFT", s.HandleCommand("/watchlist"))
	assert.Equal(t, helpText, s.HandleCommand("hello"))
	assert.Equal(t, helpText, s.HandleCommand("  "))
}

func TestHandleCommand_EmptyWatchlist(t *testing.T) {
	s, _, _ := newTestScheduler(nil)
	assert.Equal(t, "Watchlist is empty.", s.HandleCommand("/watchlist"))
}

func TestScanRecommendationsMatchEngine(t *testing.T) {
	s, _, rec := newTestScheduler([]string{"AAPL"})
	res := s.RunScanNow()
	require.Len(t, rec.snaps, 1)

	a := res.Report.Analyses[0]
	assert.Equal(t, strategy.DeriveSignal(a.LatestRSI), rec.snaps[0].Recommendation)
	assert.Contains(t, []model.Signal{model.SignalBuy, model.SignalSell, model.SignalHold}, a.Recommendation)
}
