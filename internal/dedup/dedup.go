// Package dedup decides whether a candidate transaction is already in a
// tenant's ledger.
//
// Candidates that carry a bank transaction identifier are matched on it;
// the identifier is scoped to the tenant for uploaded files and to the
// tenant plus bank connection for feeds. Candidates without an identifier
// fall back to a composite key of description, amount and calendar date.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
)

// KeyKind tells which fields of a Key are significant.
type KeyKind int

const (
	// KindFile matches on tenant and bank identifier.
	KindFile KeyKind = iota
	// KindFeed matches on tenant, connection and bank identifier.
	KindFeed
	// KindComposite matches on tenant, description, amount and date.
	KindComposite
)

func (k KeyKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFeed:
		return "feed"
	case KindComposite:
		return "composite"
	default:
		return fmt.Sprintf("KeyKind(%d)", int(k))
	}
}

// Key identifies a ledger row for duplicate lookups.
type Key struct {
	Kind              KeyKind
	TenantID          string
	ConnectionID      string
	BankTransactionID string
	Description       string
	Amount            decimal.Decimal
	Date              time.Time
}

// FileKey scopes a bank identifier to the tenant.
func FileKey(tenantID, bankTransactionID string) Key {
	return Key{Kind: KindFile, TenantID: tenantID, BankTransactionID: bankTransactionID}
}

// FeedKey scopes a bank identifier to the tenant and the bank connection.
func FeedKey(tenantID, connectionID, bankTransactionID string) Key {
	return Key{
		Kind:              KindFeed,
		TenantID:          tenantID,
		ConnectionID:      connectionID,
		BankTransactionID: bankTransactionID,
	}
}

// CompositeKey is used when the bank supplied no identifier. Date is reduced
// to its calendar day.
func CompositeKey(tenantID, description string, amount decimal.Decimal, date time.Time) Key {
	return Key{
		Kind:        KindComposite,
		TenantID:    tenantID,
		Description: description,
		Amount:      amount,
		Date:        dateutils.TruncateToDate(date),
	}
}

// Matches reports whether tx is the row k identifies. Description equality
// is exact, amounts compare numerically and dates by calendar day.
func (k Key) Matches(tx models.LedgerTransaction) bool {
	if tx.TenantID != k.TenantID {
		return false
	}
	switch k.Kind {
	case KindFile:
		return tx.BankConnectionID == "" && tx.BankTransactionID == k.BankTransactionID
	case KindFeed:
		return tx.BankConnectionID == k.ConnectionID && tx.BankTransactionID == k.BankTransactionID
	case KindComposite:
		return tx.Description == k.Description &&
			tx.Amount.Equal(k.Amount) &&
			dateutils.SameDate(tx.Date, k.Date)
	default:
		return false
	}
}

// Fingerprint is a stable hash of the significant fields, usable as a map
// key. Equal keys share a fingerprint.
func (k Key) Fingerprint() string {
	var input string
	switch k.Kind {
	case KindFile:
		input = strings.Join([]string{"file", k.TenantID, k.BankTransactionID}, "|")
	case KindFeed:
		input = strings.Join([]string{"feed", k.TenantID, k.ConnectionID, k.BankTransactionID}, "|")
	default:
		input = strings.Join([]string{
			"composite", k.TenantID, dateutils.ToISODate(k.Date), k.Amount.String(), k.Description,
		}, "|")
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func (k Key) String() string {
	switch k.Kind {
	case KindFile:
		return fmt.Sprintf("file(%s, %s)", k.TenantID, k.BankTransactionID)
	case KindFeed:
		return fmt.Sprintf("feed(%s, %s, %s)", k.TenantID, k.ConnectionID, k.BankTransactionID)
	default:
		return fmt.Sprintf("composite(%s, %q, %s, %s)",
			k.TenantID, k.Description, k.Amount.String(), dateutils.ToISODate(k.Date))
	}
}

// Scope is the entry point a candidate arrived through.
type Scope struct {
	connectionID string
}

// FileScope is the scope of uploaded statements.
func FileScope() Scope {
	return Scope{}
}

// FeedScope is the scope of a bank-feed connection.
func FeedScope(connectionID string) Scope {
	return Scope{connectionID: connectionID}
}

// IsFeed reports whether the scope belongs to a bank connection.
func (s Scope) IsFeed() bool {
	return s.connectionID != ""
}

// ConnectionID returns the bank connection, empty for file scope.
func (s Scope) ConnectionID() string {
	return s.connectionID
}

// KeyFor selects the key a candidate is looked up by.
func KeyFor(tenantID string, c models.Candidate, scope Scope) Key {
	if !c.HasBankID() {
		return CompositeKey(tenantID, c.Description, c.Amount, c.Date)
	}
	if scope.IsFeed() {
		return FeedKey(tenantID, scope.connectionID, c.BankTransactionID)
	}
	return FileKey(tenantID, c.BankTransactionID)
}

// Finder looks a key up in the ledger. It returns nil, nil when nothing
// matches.
type Finder interface {
	FindExisting(ctx context.Context, key Key) (*models.LedgerTransaction, error)
}

// Engine answers duplicate queries against a ledger.
type Engine struct {
	finder Finder
	logger logging.Logger
}

// NewEngine returns an Engine backed by finder.
func NewEngine(finder Finder, logger logging.Logger) *Engine {
	return &Engine{finder: finder, logger: logging.OrDefault(logger)}
}

// IsDuplicate reports whether candidate already exists for tenant.
func (e *Engine) IsDuplicate(ctx context.Context, tenantID string, candidate models.Candidate, scope Scope) (bool, error) {
	existing, err := e.Find(ctx, tenantID, candidate, scope)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// Find returns the ledger row candidate duplicates, or nil.
func (e *Engine) Find(ctx context.Context, tenantID string, candidate models.Candidate, scope Scope) (*models.LedgerTransaction, error) {
	key := KeyFor(tenantID, candidate, scope)
	existing, err := e.finder.FindExisting(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup %s: %w", key.Kind, err)
	}
	if existing != nil {
		e.logger.Debug("Duplicate transaction",
			logging.F(logging.FieldTenant, tenantID),
			logging.F(logging.FieldDescription, candidate.Description),
			logging.F(logging.FieldTransaction, existing.ID),
			logging.F("key", key.Kind.String()))
	}
	return existing, nil
}
