package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/dedup"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parsererror"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id                  TEXT PRIMARY KEY,
	tenant_id           TEXT NOT NULL,
	user_id             TEXT NOT NULL DEFAULT '',
	category_id         TEXT,
	ai_categorized      INTEGER NOT NULL DEFAULT 0,
	status              TEXT NOT NULL,
	bank_connection_id  TEXT NOT NULL DEFAULT '',
	description         TEXT NOT NULL,
	amount              TEXT NOT NULL,
	type                TEXT NOT NULL,
	date                TEXT NOT NULL,
	bank_transaction_id TEXT NOT NULL DEFAULT '',
	created_at          TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_file_bank_id
	ON transactions(tenant_id, bank_transaction_id)
	WHERE bank_connection_id = '' AND bank_transaction_id <> '';
CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_feed_bank_id
	ON transactions(tenant_id, bank_connection_id, bank_transaction_id)
	WHERE bank_connection_id <> '' AND bank_transaction_id <> '';
CREATE INDEX IF NOT EXISTS idx_transactions_composite
	ON transactions(tenant_id, date, description);
`

const columns = `id, tenant_id, user_id, category_id, ai_categorized, status,
	bank_connection_id, description, amount, type, date, bank_transaction_id, created_at`

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenSQLite opens (creating if needed) the ledger database at path.
func OpenSQLite(ctx context.Context, path string, logger logging.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	// one writer; also keeps PRAGMAs on a single connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logging.OrDefault(logger)}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	s.logger.Debug("Ledger opened", logging.F(logging.FieldFile, path))
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		return err
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) FindExisting(ctx context.Context, key dedup.Key) (*models.LedgerTransaction, error) {
	switch key.Kind {
	case dedup.KindFile:
		return s.queryOne(ctx, `SELECT `+columns+` FROM transactions
			WHERE tenant_id = ? AND bank_connection_id = '' AND bank_transaction_id = ?
			LIMIT 1`, key.TenantID, key.BankTransactionID)
	case dedup.KindFeed:
		return s.queryOne(ctx, `SELECT `+columns+` FROM transactions
			WHERE tenant_id = ? AND bank_connection_id = ? AND bank_transaction_id = ?
			LIMIT 1`, key.TenantID, key.ConnectionID, key.BankTransactionID)
	case dedup.KindComposite:
		rows, err := s.query(ctx, `SELECT `+columns+` FROM transactions
			WHERE tenant_id = ? AND date = ? AND description = ?
			ORDER BY rowid`, key.TenantID, dateutils.ToISODate(key.Date), key.Description)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if key.Matches(rows[i]) {
				return &rows[i], nil
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown dedup key kind %s", key.Kind)
	}
}

func (s *SQLiteStore) Create(ctx context.Context, tx *models.LedgerTransaction) (*models.LedgerTransaction, error) {
	if tx == nil || tx.ID == "" || tx.TenantID == "" {
		return nil, fmt.Errorf("create transaction: id and tenant are required")
	}
	var categoryID sql.NullString
	if tx.CategoryID != nil {
		categoryID = sql.NullString{String: *tx.CategoryID, Valid: true}
	}
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO transactions (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.TenantID, tx.UserID, categoryID, tx.AICategorized, tx.Status,
		tx.BankConnectionID, tx.Description, tx.Amount.String(), string(tx.Type),
		dateutils.ToISODate(tx.Date), tx.BankTransactionID, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create transaction %s: %w", tx.BankTransactionID, parsererror.ErrDuplicateTransaction)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	stored := *tx
	stored.CreatedAt = createdAt
	stored.Date = dateutils.TruncateToDate(tx.Date)
	return &stored, nil
}

func (s *SQLiteStore) ListUncategorized(ctx context.Context, tenantID string) ([]models.LedgerTransaction, error) {
	return s.query(ctx, `SELECT `+columns+` FROM transactions
		WHERE tenant_id = ? AND (category_id IS NULL OR category_id = '')
		ORDER BY rowid`, tenantID)
}

func (s *SQLiteStore) SetCategory(ctx context.Context, tenantID, id, categoryID string, aiCategorized bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE transactions SET category_id = ?, ai_categorized = ?
		WHERE tenant_id = ? AND id = ?`, categoryID, aiCategorized, tenantID, id)
	if err != nil {
		return fmt.Errorf("set category on %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set category on %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set category on %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns every row of tenant in insertion order.
func (s *SQLiteStore) List(ctx context.Context, tenantID string) ([]models.LedgerTransaction, error) {
	return s.query(ctx, `SELECT `+columns+` FROM transactions WHERE tenant_id = ? ORDER BY rowid`, tenantID)
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, args ...interface{}) (*models.LedgerTransaction, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]models.LedgerTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger query failed: %w", err)
	}
	defer rows.Close()

	var out []models.LedgerTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger query failed: %w", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (models.LedgerTransaction, error) {
	var (
		tx         models.LedgerTransaction
		categoryID sql.NullString
		amount     string
		txType     string
		date       string
		createdAt  string
	)
	err := rows.Scan(&tx.ID, &tx.TenantID, &tx.UserID, &categoryID, &tx.AICategorized, &tx.Status,
		&tx.BankConnectionID, &tx.Description, &amount, &txType, &date, &tx.BankTransactionID, &createdAt)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if categoryID.Valid && categoryID.String != "" {
		cid := categoryID.String
		tx.CategoryID = &cid
	}
	tx.Type = models.TransactionType(txType)
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return tx, fmt.Errorf("transaction %s has bad amount %q: %w", tx.ID, amount, err)
	}
	if tx.Date, err = time.Parse(dateutils.DateLayoutISO, date); err != nil {
		return tx, fmt.Errorf("transaction %s has bad date %q: %w", tx.ID, date, err)
	}
	if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return tx, fmt.Errorf("transaction %s has bad created_at %q: %w", tx.ID, createdAt, err)
	}
	return tx, nil
}

// isUniqueViolation reports a clash on one of the bank identifier indexes.
func isUniqueViolation(err error) bool {
	if !strings.Contains(err.Error(), "bank_transaction_id") {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
