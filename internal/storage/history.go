package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"tadapt/internal/domain"
)

// historyTimeLayout has a fixed width so that timestamps sort as strings.
const historyTimeLayout = "2006-01-02T15:04:05.000000000Z"

// RunSummary is one row of the run history.
type RunSummary struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Total    int
	Passed   int
	Failed   int
	Partial  bool
}

// History records every run in a SQL database so past results survive the
// single report file being overwritten.
type History struct {
	db     *sql.DB
	driver string
}

var historySchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR(64) PRIMARY KEY,
		started VARCHAR(40) NOT NULL,
		duration_ms BIGINT NOT NULL,
		total INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		partial INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS outcomes (
		run_id VARCHAR(64) NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		detail TEXT NOT NULL,
		duration_ms BIGINT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

// ParseHistoryDSN splits a history location into a database/sql driver name
// and data source. Accepted forms are "sqlite://<path>", "mysql://<dsn>" and
// a bare file path, which is treated as sqlite.
func ParseHistoryDSN(dsn string) (driver, source string, err error) {
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("empty history location")
	case strings.HasPrefix(dsn, "mysql://"):
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return "", "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		return "mysql", cfg.FormatDSN(), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("unsupported history location %q", dsn)
	}
	return "sqlite3", dsn, nil
}

// OpenHistory connects to the history database and creates its tables.
func OpenHistory(ctx context.Context, dsn string) (*History, error) {
	driver, source, err := ParseHistoryDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	h := &History{db: db, driver: driver}
	if err := h.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) migrate(ctx context.Context) error {
	for _, stmt := range historySchema {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create history tables: %w", err)
		}
	}
	return nil
}

// Record stores a finished report and its outcomes in one transaction.
func (h *History) Record(ctx context.Context, report *domain.RunReport) error {
	if report.ID == "" {
		return fmt.Errorf("report has no run id")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started, duration_ms, total, passed, failed, partial) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Started.UTC().Format(historyTimeLayout),
		report.Duration.Milliseconds(),
		report.Total,
		report.Passed,
		report.Failed,
		boolToInt(report.Partial),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.ID, err)
	}

	for i, o := range report.Outcomes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO outcomes (run_id, seq, name, status, detail, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
			report.ID, i, o.Name, string(o.Status), o.Detail, o.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert outcome %s: %w", o.Name, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, started, duration_ms, total, passed, failed, partial FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r          RunSummary
			started    string
			durationMS int64
			partial    int
		)
		if err := rows.Scan(&r.ID, &started, &durationMS, &r.Total, &r.Passed, &r.Failed, &partial); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Started, _ = time.Parse(historyTimeLayout, started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Partial = partial != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the outcomes recorded for a run in run order.
func (h *History) Outcomes(ctx context.Context, runID string) ([]domain.Outcome, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT name, status, detail, duration_ms FROM outcomes WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []domain.Outcome
	for rows.Next() {
		var (
			o          domain.Outcome
			status     string
			durationMS int64
		)
		if err := rows.Scan(&o.Name, &status, &o.Detail, &durationMS); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Status = domain.Status(status)
		o.Suite, o.Test = splitName(o.Name)
		o.Duration = time.Duration(durationMS) * time.Millisecond
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}

func splitName(name string) (suite, test string) {
	i := strings.LastIndex(name, domain.Separator)
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+len(domain.Separator):]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
