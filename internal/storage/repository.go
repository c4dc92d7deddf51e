package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"duka/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores the income dataset and the KV entries the state
// stores persist into.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.seedDataset(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// seedDataset inserts the fixture when the table is empty.
func (r *SQLiteRepository) seedDataset(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM monthly_records`).Scan(&n); err != nil {
		return fmt.Errorf("count monthly records: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := r.ReplaceDataset(ctx, core.IncomeFixture()); err != nil {
		return fmt.Errorf("seed monthly records: %w", err)
	}
	slog.InfoContext(ctx, "Seeded income dataset", "records", core.MonthsPerYear)
	return nil
}

// ReplaceDataset swaps the whole dataset in one transaction.
func (r *SQLiteRepository) ReplaceDataset(ctx context.Context, dataset []core.MonthlyRecord) error {
	if err := core.ValidateDataset(dataset); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_records`); err != nil {
		return fmt.Errorf("clear monthly records: %w", err)
	}
	const insert = `INSERT INTO monthly_records
		(position, period, income, expenses, profit, orders, new_customers, refunds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, m := range dataset {
		if _, err := tx.ExecContext(ctx, insert,
			i, m.Period, m.Income, m.Expenses, m.Profit, m.Orders, m.NewCustomers, m.Refunds); err != nil {
			return fmt.Errorf("insert %s: %w", m.Period, err)
		}
	}
	return tx.Commit()
}

// ReadDataset implements ports.DatasetReader.
func (r *SQLiteRepository) ReadDataset(ctx context.Context) ([]core.MonthlyRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT position, period, income, expenses, profit, orders, new_customers, refunds
		FROM monthly_records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query monthly records: %w", err)
	}
	defer rows.Close()

	out := make([]core.MonthlyRecord, 0, core.MonthsPerYear)
	for rows.Next() {
		var m core.MonthlyRecord
		if err := rows.Scan(&m.Position, &m.Period, &m.Income, &m.Expenses, &m.Profit,
			&m.Orders, &m.NewCustomers, &m.Refunds); err != nil {
			return nil, fmt.Errorf("scan monthly record: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly records: %w", err)
	}
	return out, nil
}

// Get implements ports.KVStore.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements ports.KVStore.
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	slog.DebugContext(ctx, "KV entry saved", "key", key, "bytes", len(value))
	return nil
}

// Delete implements ports.KVStore.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
