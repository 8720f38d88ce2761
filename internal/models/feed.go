package models

import "github.com/shopspring/decimal"

// FeedTransaction is one entry delivered by a bank-feed connection.
type FeedTransaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

// FeedBatch is a set of feed entries for one bank connection.
type FeedBatch struct {
	ConnectionID string            `json:"connectionId"`
	Transactions []FeedTransaction `json:"transactions"`
}
