package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quantscope/macdscan/internal/market"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteStore persists daily bars in per-month sharded kline tables
// (kline_{period}_{yyyy_mm}), with a table_info registry naming the shards.
// Sharding keeps single-table size bounded when years of per-symbol history
// accumulate; readers merge shards in month order.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
	mu  sync.Mutex
}

func NewSQLiteStore(log *slog.Logger, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis reads do not block collector writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite store opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS table_info (
			table_name TEXT PRIMARY KEY,
			period     TEXT NOT NULL,
			year_month TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS symbols (
			code TEXT PRIMARY KEY,
			name TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS macd_intervals (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			code             TEXT NOT NULL,
			name             TEXT,
			interval_type    TEXT NOT NULL,
			from_date        TEXT NOT NULL,
			to_date          TEXT NOT NULL,
			days             INTEGER NOT NULL,
			price_change_pct REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_intervals_code ON macd_intervals(code)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func tableName(period, yearMonth string) string {
	return fmt.Sprintf("kline_%s_%s", period, strings.ReplaceAll(yearMonth, "-", "_"))
}

func (s *SQLiteStore) ensureKlineTable(period, yearMonth string) (string, error) {
	name := tableName(period, yearMonth)

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		code     TEXT NOT NULL,
		datetime TEXT NOT NULL,
		open     REAL,
		high     REAL,
		low      REAL,
		close    REAL,
		volume   REAL,
		PRIMARY KEY (code, datetime)
	)`, name)
	if _, err := s.db.Exec(stmt); err != nil {
		return "", fmt.Errorf("create kline table %s: %w", name, err)
	}
	if _, err := s.db.Exec(fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_%s_datetime ON %s(datetime)`, name, name)); err != nil {
		return "", fmt.Errorf("index kline table %s: %w", name, err)
	}

	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO table_info (table_name, period, year_month) VALUES (?, ?, ?)`,
		name, period, yearMonth); err != nil {
		return "", fmt.Errorf("register kline table %s: %w", name, err)
	}

	return name, nil
}

// PutBars upserts bars into their month shards.
func (s *SQLiteStore) PutBars(ctx context.Context, code, period string, bars []market.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byMonth := map[string][]market.Bar{}
	for _, b := range bars {
		ym := b.Date.Format("2006-01")
		byMonth[ym] = append(byMonth[ym], b)
	}

	for ym, group := range byMonth {
		table, err := s.ensureKlineTable(period, ym)
		if err != nil {
			return err
		}

		stmt := fmt.Sprintf(`INSERT OR REPLACE INTO %s
			(code, datetime, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, table)
		for _, b := range group {
			_, err := s.db.ExecContext(ctx, stmt,
				code, b.Date.Format(dateLayout),
				b.Open.InexactFloat64(), b.High.InexactFloat64(),
				b.Low.InexactFloat64(), b.Close.InexactFloat64(),
				b.Volume.InexactFloat64(),
			)
			if err != nil {
				return fmt.Errorf("insert bar %s %s: %w", code, b.Date.Format(dateLayout), err)
			}
		}
	}

	return nil
}

// GetBars merges all month shards for the period and returns the symbol's
// bars ordered ascending by date.
func (s *SQLiteStore) GetBars(ctx context.Context, code, period string) ([]market.Bar, error) {
	tables, err := s.shardsForPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	var bars []market.Bar
	for _, table := range tables {
		stmt := fmt.Sprintf(`SELECT datetime, open, high, low, close, volume
			FROM %s WHERE code = ? ORDER BY datetime`, table)

		rows, err := s.db.QueryContext(ctx, stmt, code)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}

		for rows.Next() {
			var date string
			var open, high, low, close, volume float64
			if err := rows.Scan(&date, &open, &high, &low, &close, &volume); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan bar: %w", err)
			}

			d, err := time.ParseInLocation(dateLayout, date, time.UTC)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("parse bar date %q: %w", date, err)
			}

			bars = append(bars, market.Bar{
				Date:   d,
				Open:   decimal.NewFromFloat(open),
				High:   decimal.NewFromFloat(high),
				Low:    decimal.NewFromFloat(low),
				Close:  decimal.NewFromFloat(close),
				Volume: decimal.NewFromFloat(volume),
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate %s: %w", table, err)
		}
		rows.Close()
	}

	return bars, nil
}

func (s *SQLiteStore) shardsForPeriod(ctx context.Context, period string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name FROM table_info WHERE period = ? ORDER BY year_month`, period)
	if err != nil {
		return nil, fmt.Errorf("query table_info: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table_info: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func (s *SQLiteStore) PutSymbols(ctx context.Context, symbols []market.Symbol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sym := range symbols {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO symbols (code, name) VALUES (?, ?)`,
			sym.Code, sym.Name)
		if err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.Code, err)
		}
	}

	return nil
}

func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]market.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM symbols ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []market.Symbol
	for rows.Next() {
		var sym market.Symbol
		if err := rows.Scan(&sym.Code, &sym.Name); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}

	return symbols, rows.Err()
}

// IntervalRow is the tabular shape the analysis output is persisted in.
type IntervalRow struct {
	Code           string
	Name           string
	Type           string
	FromDate       time.Time
	ToDate         time.Time
	Days           int
	PriceChangePct float64
}

// SaveIntervals replaces the persisted interval rows with the given set.
// Rows are written in input order so identical input stays byte identical.
func (s *SQLiteStore) SaveIntervals(ctx context.Context, rows []IntervalRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM macd_intervals`); err != nil {
		return fmt.Errorf("clear intervals: %w", err)
	}

	sorted := make([]IntervalRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Code != sorted[j].Code {
			return sorted[i].Code < sorted[j].Code
		}
		return sorted[i].FromDate.Before(sorted[j].FromDate)
	})

	for _, r := range sorted {
		_, err := s.db.ExecContext(ctx, `INSERT INTO macd_intervals
			(code, name, interval_type, from_date, to_date, days, price_change_pct)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Code, r.Name, r.Type,
			r.FromDate.Format(dateLayout), r.ToDate.Format(dateLayout),
			r.Days, r.PriceChangePct)
		if err != nil {
			return fmt.Errorf("insert interval %s: %w", r.Code, err)
		}
	}

	return nil
}

// ListIntervals returns the persisted interval rows in stored order.
func (s *SQLiteStore) ListIntervals(ctx context.Context) ([]IntervalRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name, interval_type,
		from_date, to_date, days, price_change_pct FROM macd_intervals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query intervals: %w", err)
	}
	defer rows.Close()

	var out []IntervalRow
	for rows.Next() {
		var r IntervalRow
		var from, to string
		if err := rows.Scan(&r.Code, &r.Name, &r.Type, &from, &to, &r.Days, &r.PriceChangePct); err != nil {
			return nil, fmt.Errorf("scan interval: %w", err)
		}

		if r.FromDate, err = time.ParseInLocation(dateLayout, from, time.UTC); err != nil {
			return nil, fmt.Errorf("parse interval date %q: %w", from, err)
		}
		if r.ToDate, err = time.ParseInLocation(dateLayout, to, time.UTC); err != nil {
			return nil, fmt.Errorf("parse interval date %q: %w", to, err)
		}

		out = append(out, r)
	}

	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite store")
	return s.db.Close()
}
