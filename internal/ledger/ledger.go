// Package ledger persists imported transactions.
//
// Two implementations share the Store contract: MemoryStore for tests and
// dry runs, and SQLiteStore for the command line. Both refuse a second row
// with the same bank transaction identifier in the same scope and report it
// as parsererror.ErrDuplicateTransaction.
package ledger

import (
	"context"
	"errors"

	"fjacquet/statement-import/internal/dedup"
	"fjacquet/statement-import/internal/models"
)

// ErrNotFound is returned when a transaction id does not exist for a tenant.
var ErrNotFound = errors.New("transaction not found")

// Store is the transaction ledger.
type Store interface {
	// FindExisting returns the row key identifies, or nil, nil.
	FindExisting(ctx context.Context, key dedup.Key) (*models.LedgerTransaction, error)
	// Create inserts tx and returns the stored row.
	Create(ctx context.Context, tx *models.LedgerTransaction) (*models.LedgerTransaction, error)
	// ListUncategorized returns tenant rows without a category in insertion order.
	ListUncategorized(ctx context.Context, tenantID string) ([]models.LedgerTransaction, error)
	// SetCategory assigns a category to an existing row.
	SetCategory(ctx context.Context, tenantID, id, categoryID string, aiCategorized bool) error
}

// identityKey is the uniqueness key a row occupies, if any.
func identityKey(tx *models.LedgerTransaction) (dedup.Key, bool) {
	if tx.BankTransactionID == "" {
		return dedup.Key{}, false
	}
	if tx.BankConnectionID != "" {
		return dedup.FeedKey(tx.TenantID, tx.BankConnectionID, tx.BankTransactionID), true
	}
	return dedup.FileKey(tx.TenantID, tx.BankTransactionID), true
}

func compositeKey(tx *models.LedgerTransaction) dedup.Key {
	return dedup.CompositeKey(tx.TenantID, tx.Description, tx.Amount, tx.Date)
}
