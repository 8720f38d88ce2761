package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusPaid is the default status of imported transactions.
const StatusPaid = "paid"

// LedgerTransaction is a row in a tenant's transaction ledger.
type LedgerTransaction struct {
	ID         string  `json:"id"`
	TenantID   string  `json:"tenantId"`
	UserID     string  `json:"userId"`
	CategoryID *string `json:"categoryId,omitempty"`
	// AICategorized is set when the category was assigned automatically.
	AICategorized     bool            `json:"aiCategorized"`
	Status            string          `json:"status"`
	BankConnectionID  string          `json:"bankConnectionId,omitempty"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	Type              TransactionType `json:"type"`
	Date              time.Time       `json:"date"`
	BankTransactionID string          `json:"bankTransactionId,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Categorized reports whether the row carries a category.
func (t LedgerTransaction) Categorized() bool {
	return t.CategoryID != nil && *t.CategoryID != ""
}

// LedgerTransactionBuilder assembles a LedgerTransaction from a candidate.
type LedgerTransactionBuilder struct {
	tx  LedgerTransaction
	err error
}

// NewLedgerTransactionBuilder starts a builder with a fresh id and the
// default status.
func NewLedgerTransactionBuilder() *LedgerTransactionBuilder {
	return &LedgerTransactionBuilder{
		tx: LedgerTransaction{
			ID:     uuid.NewString(),
			Status: StatusPaid,
			Amount: decimal.Zero,
		},
	}
}

// FromCandidate copies the statement fields of c.
func (b *LedgerTransactionBuilder) FromCandidate(c Candidate) *LedgerTransactionBuilder {
	if b.err != nil {
		return b
	}
	if !c.Valid() {
		b.err = errors.New("candidate needs a description and a type")
		return b
	}
	b.tx.Description = c.Description
	b.tx.Amount = c.Amount
	b.tx.Type = c.Type
	b.tx.Date = c.Date
	b.tx.BankTransactionID = c.BankTransactionID
	return b
}

// WithOwner sets the tenant and the importing user.
func (b *LedgerTransactionBuilder) WithOwner(tenantID, userID string) *LedgerTransactionBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(tenantID) == "" {
		b.err = errors.New("tenant id cannot be empty")
		return b
	}
	b.tx.TenantID = tenantID
	b.tx.UserID = userID
	return b
}

// WithConnection marks the row as coming from a bank feed.
func (b *LedgerTransactionBuilder) WithConnection(connectionID string) *LedgerTransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.BankConnectionID = connectionID
	return b
}

// WithStatus overrides the default status. Blank values are ignored.
func (b *LedgerTransactionBuilder) WithStatus(status string) *LedgerTransactionBuilder {
	if b.err != nil || strings.TrimSpace(status) == "" {
		return b
	}
	b.tx.Status = status
	return b
}

// WithCategory assigns an automatically determined category. A nil
// category leaves the row uncategorized.
func (b *LedgerTransactionBuilder) WithCategory(category *Category) *LedgerTransactionBuilder {
	if b.err != nil || category == nil {
		return b
	}
	id := category.ID
	b.tx.CategoryID = &id
	b.tx.AICategorized = true
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *LedgerTransactionBuilder) WithCreatedAt(t time.Time) *LedgerTransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.CreatedAt = t
	return b
}

// Build returns the transaction or the first error recorded.
func (b *LedgerTransactionBuilder) Build() (LedgerTransaction, error) {
	if b.err != nil {
		return LedgerTransaction{}, b.err
	}
	if b.tx.TenantID == "" {
		return LedgerTransaction{}, errors.New("tenant id is required")
	}
	if b.tx.Description == "" {
		return LedgerTransaction{}, errors.New("description is required")
	}
	if b.tx.CreatedAt.IsZero() {
		b.tx.CreatedAt = time.Now().UTC()
	}
	return b.tx, nil
}
