package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"StockLens/internal/model"
)

// SQLiteRecorder persists scan snapshots to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id        TEXT NOT NULL,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			period         TEXT,
			close          REAL,
			sma            REAL,
			rsi            REAL,
			bb_upper       REAL,
			bb_lower       REAL,
			sma_signal     TEXT,
			rsi_signal     TEXT,
			recommendation TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON signal_snapshots(symbol, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_scan ON signal_snapshots(scan_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps an undefined value to NULL.
func nullable(v optional.Option[float64]) sql.NullFloat64 {
	if v.IsNone() {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v.Unwrap(), Valid: true}
}

func fromNullable(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}
	return optional.Some(v.Float64)
}

func (r *SQLiteRecorder) RecordSnapshot(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO signal_snapshots
		(scan_id, timestamp, symbol, period, close, sma, rsi, bb_upper, bb_lower,
		 sma_signal, rsi_signal, recommendation)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.ScanID, ts.Unix(), snap.Symbol, snap.Period, snap.Close,
		nullable(snap.SMA), nullable(snap.RSI), nullable(snap.BBUpper), nullable(snap.BBLower),
		string(snap.SMASignal), string(snap.RSISignal), string(snap.Recommendation),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.Symbol, err)
	}
	return nil
}

func (r *SQLiteRecorder) Recent(ctx context.Context, symbol string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		scan_id, timestamp, symbol, period, close, sma, rsi, bb_upper, bb_lower,
		sma_signal, rsi_signal, recommendation
		FROM signal_snapshots WHERE symbol = ?
		ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s                          Snapshot
			ts                         int64
			sma, rsi, bbUpper, bbLower sql.NullFloat64
			smaSig, rsiSig, rec        string
		)
		if err := rows.Scan(&s.ScanID, &ts, &s.Symbol, &s.Period, &s.Close,
			&sma, &rsi, &bbUpper, &bbLower, &smaSig, &rsiSig, &rec); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0).UTC()
		s.SMA, s.RSI = fromNullable(sma), fromNullable(rsi)
		s.BBUpper, s.BBLower = fromNullable(bbUpper), fromNullable(bbLower)
		s.SMASignal = model.Trend(smaSig)
		s.RSISignal = model.Zone(rsiSig)
		s.Recommendation = model.Signal(rec)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
