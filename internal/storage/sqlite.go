package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/logger"
	"github.com/kelsos/blend-actions/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS clateral (
	timestamp INTEGER NOT NULL,
	ledger    INTEGER NOT NULL,
	pool      TEXT NOT NULL,
	asset     TEXT NOT NULL,
	clateral  TEXT NOT NULL,
	delta     TEXT NOT NULL,
	source    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_clateral_source ON clateral(source);

CREATE TABLE IF NOT EXISTS borrowed (
	timestamp INTEGER NOT NULL,
	ledger    INTEGER NOT NULL,
	pool      TEXT NOT NULL,
	asset     TEXT NOT NULL,
	borrowed  TEXT NOT NULL,
	delta     TEXT NOT NULL,
	source    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_borrowed_source ON borrowed(source);
`

// amount column of each table; also the whitelist for readFilter
var amountColumns = map[string]string{
	TableCollateral: "clateral",
	TableBorrowed:   "borrowed",
}

var filterColumns = map[string]bool{
	"source": true,
	"pool":   true,
	"asset":  true,
}

// row is the column layout shared by both indexer tables
type row struct {
	Timestamp uint64
	Ledger    uint32
	Pool      string
	Asset     string
	Amount    amount.Int128
	Delta     amount.Int128
	Source    string
}

// SQLiteStore is a Store backed by a SQLite index database
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// Open opens (and creates if needed) the index database at path. ":memory:" is accepted.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if path == ":memory:" {
		// every connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(8)
		conn.SetMaxIdleConns(2)
	}

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Debug("Opened index database at %s", path)
	return s, nil
}

// Migrate creates the indexer tables
func (s *SQLiteStore) Migrate() error {
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Path returns the database path the store was opened with
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Collaterals returns all collateral records with the given source
func (s *SQLiteStore) Collaterals(ctx context.Context, source string) ([]models.CollateralRecord, error) {
	rows, err := s.readFilter(ctx, TableCollateral, "source", source)
	if err != nil {
		return nil, err
	}

	records := make([]models.CollateralRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.CollateralRecord{
			Timestamp:  r.Timestamp,
			Ledger:     r.Ledger,
			Pool:       r.Pool,
			Asset:      r.Asset,
			Collateral: r.Amount,
			Delta:      r.Delta,
			Source:     r.Source,
		})
	}
	return records, nil
}

// Borrows returns all borrow records with the given source
func (s *SQLiteStore) Borrows(ctx context.Context, source string) ([]models.BorrowRecord, error) {
	rows, err := s.readFilter(ctx, TableBorrowed, "source", source)
	if err != nil {
		return nil, err
	}

	records := make([]models.BorrowRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.BorrowRecord{
			Timestamp: r.Timestamp,
			Ledger:    r.Ledger,
			Pool:      r.Pool,
			Asset:     r.Asset,
			Borrowed:  r.Amount,
			Delta:     r.Delta,
			Source:    r.Source,
		})
	}
	return records, nil
}

// readFilter returns every row of table whose column equals value, in insertion order
func (s *SQLiteStore) readFilter(ctx context.Context, table, column, value string) ([]row, error) {
	amountColumn, ok := amountColumns[table]
	if !ok || !filterColumns[column] {
		return nil, fmt.Errorf("%s.%s: %w", table, column, ErrUnknownTable)
	}

	query := fmt.Sprintf(
		"SELECT timestamp, ledger, pool, asset, %s, delta, source FROM %s WHERE %s = ? ORDER BY rowid",
		amountColumn, table, column)

	rows, err := s.conn.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var result []row
	for rows.Next() {
		var (
			r         row
			timestamp int64
			ledger    int64
		)
		if err := rows.Scan(&timestamp, &ledger, &r.Pool, &r.Asset, &r.Amount, &r.Delta, &r.Source); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		r.Timestamp = uint64(timestamp)
		r.Ledger = uint32(ledger)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", table, err)
	}

	return result, nil
}

// InsertCollateral appends collateral records in one transaction
func (s *SQLiteStore) InsertCollateral(ctx context.Context, records []models.CollateralRecord) error {
	rows := make([]row, 0, len(records))
	for _, r := range records {
		rows = append(rows, row{r.Timestamp, r.Ledger, r.Pool, r.Asset, r.Collateral, r.Delta, r.Source})
	}
	return s.insert(ctx, TableCollateral, rows)
}

// InsertBorrow appends borrow records in one transaction
func (s *SQLiteStore) InsertBorrow(ctx context.Context, records []models.BorrowRecord) error {
	rows := make([]row, 0, len(records))
	for _, r := range records {
		rows = append(rows, row{r.Timestamp, r.Ledger, r.Pool, r.Asset, r.Borrowed, r.Delta, r.Source})
	}
	return s.insert(ctx, TableBorrowed, rows)
}

func (s *SQLiteStore) insert(ctx context.Context, table string, rows []row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (timestamp, ledger, pool, asset, %s, delta, source) VALUES (?, ?, ?, ?, ?, ?, ?)",
		table, amountColumns[table]))
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		// timestamps are stored as INTEGER, which SQLite keeps signed
		if _, err := stmt.ExecContext(ctx, int64(r.Timestamp), int64(r.Ledger), r.Pool, r.Asset, r.Amount, r.Delta, r.Source); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s insert: %w", table, err)
	}

	logger.Debug("Inserted %d rows into %s", len(rows), table)
	return nil
}

// Snapshot writes a consistent copy of the database to path, which must not exist
func (s *SQLiteStore) Snapshot(ctx context.Context, path string) error {
	if _, err := s.conn.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}
