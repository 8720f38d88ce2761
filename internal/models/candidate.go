// Package models provides the data structures shared by the parsers, the
// categorization engine, the ledger and the ingestion orchestrator.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction relative to the account.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// TypeForSigned maps a signed statement amount to a transaction type.
// Negative amounts are expenses; zero and positive amounts are income.
func TypeForSigned(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TypeExpense
	}
	return TypeIncome
}

// Candidate is a transaction extracted from a statement, before
// deduplication and categorization.
type Candidate struct {
	Description string
	// Amount is the magnitude; the sign lives in Type.
	Amount            decimal.Decimal
	Type              TransactionType
	Date              time.Time
	BankTransactionID string
	// Line is the 1-based source line for delimited rows, 0 when unknown.
	Line int
}

// NewCandidate builds a Candidate from a signed amount.
func NewCandidate(description string, signed decimal.Decimal, date time.Time, bankTransactionID string) Candidate {
	return Candidate{
		Description:       strings.TrimSpace(description),
		Amount:            signed.Abs(),
		Type:              TypeForSigned(signed),
		Date:              time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		BankTransactionID: strings.TrimSpace(bankTransactionID),
	}
}

// Valid reports whether the candidate can be imported: it needs a
// description and a known type. Zero amounts are valid; sources that treat
// them as padding drop them before building candidates.
func (c Candidate) Valid() bool {
	return c.Description != "" && c.Type.Valid()
}

// HasBankID reports whether the bank supplied a stable identifier.
func (c Candidate) HasBankID() bool {
	return c.BankTransactionID != ""
}

// Signed returns the amount with its sign restored.
func (c Candidate) Signed() decimal.Decimal {
	if c.Type == TypeExpense {
		return c.Amount.Neg()
	}
	return c.Amount
}
