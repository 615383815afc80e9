package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			bar_interval   TEXT NOT NULL,
			price          REAL,
			sma_fast       REAL,
			sma_slow       REAL,
			ema            REAL,
			rsi            REAL,
			macd           REAL,
			macd_signal    REAL,
			macd_histogram REAL,
			position_52w   REAL,
			total_score    REAL,
			tier_label     TEXT,
			warning        TEXT,
			factors_json   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_symbol_ts ON scans(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			scan_id    TEXT,
			symbol     TEXT NOT NULL,
			tier_label TEXT,
			delivered  INTEGER NOT NULL,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			head := strings.Fields(s)
			return fmt.Errorf("exec %q: %w", strings.Join(head[:min(len(head), 6)], " "), err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(ctx context.Context, snap *ScanSnapshot) error {
	if snap == nil || snap.Report == nil || snap.Signal == nil {
		return errors.New("record scan: report and signal are required")
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	factors, err := json.Marshal(snap.Signal.Factors)
	if err != nil {
		return fmt.Errorf("encode factors: %w", err)
	}

	rep := snap.Report
	l := rep.Latest

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx, `INSERT INTO scans
		(id, timestamp, symbol, bar_interval, price,
		 sma_fast, sma_slow, ema, rsi, macd, macd_signal, macd_histogram, position_52w,
		 total_score, tier_label, warning, factors_json)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.ID, ts.Unix(), rep.Symbol, rep.Interval, rep.CurrentPrice,
		l.SMAFast, l.SMASlow, l.EMA, l.RSI, l.MACD, l.MACDSignal, l.MACDHistogram, l.Position52w,
		snap.Signal.TotalScore, snap.Signal.Tier.Label, snap.Signal.WarningMsg, string(factors),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordAlert(ctx context.Context, evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO alerts
		(timestamp, scan_id, symbol, tier_label, delivered, error)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.ScanID, evt.Symbol, evt.Tier, evt.Delivered, evt.Error,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecentScans(ctx context.Context, symbol string, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, timestamp, symbol, bar_interval, price,
		sma_fast, sma_slow, ema, rsi, macd, macd_signal, macd_histogram, position_52w,
		total_score, tier_label, warning, factors_json
		FROM scans WHERE symbol = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	out := []ScanRecord{}
	for rows.Next() {
		var (
			rec     ScanRecord
			ts      int64
			warning sql.NullString
			factors sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &ts, &rec.Symbol, &rec.Interval, &rec.Price,
			&rec.SMAFast, &rec.SMASlow, &rec.EMA, &rec.RSI,
			&rec.MACD, &rec.MACDSignal, &rec.MACDHistogram, &rec.Position52w,
			&rec.TotalScore, &rec.Tier, &warning, &factors,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		rec.Warning = warning.String
		if factors.Valid && factors.String != "" {
			if err := json.Unmarshal([]byte(factors.String), &rec.Factors); err != nil {
				log.WithError(err).Warnf("scan %s: undecodable factors", rec.ID)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
