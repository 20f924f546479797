package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
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

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindTransactions implements TransactionStore
func (r *SQLiteRepository) FindTransactions(ctx context.Context, userID string, t core.TransactionType, from *time.Time) ([]core.Transaction, error) {
	query := `SELECT id, user_id, type, amount_cents, date_unix, category, label, icon, created_unix
		FROM transactions WHERE user_id = ? AND type = ?`
	args := []any{userID, string(t)}
	if from != nil {
		query += ` AND date_unix >= ?`
		args = append(args, from.UnixMicro())
	}
	query += ` ORDER BY date_unix DESC, created_unix DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			tx               core.Transaction
			typ              string
			dateUs, createdUs int64
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &dateUs, &tx.Category, &tx.Label, &tx.Icon, &createdUs); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		tx.Date = time.UnixMicro(dateUs).UTC()
		tx.CreatedAt = time.UnixMicro(createdUs).UTC()
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CreateTransaction implements TransactionStore
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = core.NewID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	// stored as Unix microseconds
	tx.Date = tx.Date.UTC().Truncate(time.Microsecond)
	tx.CreatedAt = tx.CreatedAt.UTC().Truncate(time.Microsecond)

	_, err := r.db.ExecContext(ctx, `INSERT INTO transactions
		(id, user_id, type, amount_cents, date_unix, category, label, icon, created_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Amount.Cents, tx.Date.UnixMicro(),
		tx.Category, tx.Label, tx.Icon, tx.CreatedAt.UnixMicro())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)
	return tx, nil
}

// DeleteTransaction implements TransactionStore
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID string, t core.TransactionType, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ? AND type = ?`,
		id, userID, string(t))
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return affectedOne(res)
}

// FindBudgets implements BudgetStore
func (r *SQLiteRepository) FindBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, category, amount_cents, created_unix
		FROM budgets WHERE user_id = ? ORDER BY created_unix DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		var (
			b         core.Budget
			createdUs int64
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount.Cents, &createdUs); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.CreatedAt = time.UnixMicro(createdUs).UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

// CreateBudget implements BudgetStore
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" {
		b.ID = core.NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.CreatedAt = b.CreatedAt.UTC().Truncate(time.Microsecond)

	_, err := r.db.ExecContext(ctx, `INSERT INTO budgets (id, user_id, category, amount_cents, created_unix)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Category, b.Amount.Cents, b.CreatedAt.UnixMicro())
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return core.Budget{}, core.ErrDuplicateCategory
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", b.ID,
		"category", b.Category,
		"amount_cents", b.Amount.Cents)
	return b, nil
}

// DeleteBudget implements BudgetStore
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
