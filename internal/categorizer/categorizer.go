// Package categorizer assigns a tenant category to a transaction description.
//
// Three tiers run in order and the first hit wins:
//  1. exact containment between description and category name,
//  2. domain keyword tables (category name fragment + description keyword),
//  3. a common-merchant fallback independent of the tenant's categories.
//
// Matching folds case and diacritics. A description nothing matches is left
// uncategorized; categorization never returns an error.
package categorizer

import (
	"context"

	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
)

// Match names the tier that produced a category.
type Match string

const (
	MatchNone          Match = ""
	MatchExact         Match = "exact"
	MatchDomainKeyword Match = "domain_keyword"
	MatchMerchant      Match = "merchant"
)

// Engine runs the strategies in order.
type Engine struct {
	strategies []CategorizationStrategy
	logger     logging.Logger
}

// NewEngine builds the three-tier engine over tables.
func NewEngine(tables Tables, logger logging.Logger) *Engine {
	return NewEngineWithStrategies(logger,
		ExactStrategy{},
		NewDomainKeywordStrategy(tables.DomainKeywords),
		NewMerchantStrategy(tables.MerchantFallback),
	)
}

// NewEngineWithStrategies builds an engine over an explicit strategy list.
func NewEngineWithStrategies(logger logging.Logger, strategies ...CategorizationStrategy) *Engine {
	return &Engine{
		strategies: strategies,
		logger:     logging.OrDefault(logger),
	}
}

// Strategies returns the strategy names in evaluation order.
func (e *Engine) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Categorize returns the matching category and the tier that matched, or
// nil and MatchNone. Inactive categories are never returned.
func (e *Engine) Categorize(ctx context.Context, description string, categories []models.Category) (*models.Category, Match) {
	active := models.ActiveOnly(categories)
	if len(active) == 0 {
		return nil, MatchNone
	}

	for _, s := range e.strategies {
		if ctx.Err() != nil {
			return nil, MatchNone
		}
		category, ok := s.Categorize(ctx, description, active)
		if !ok || category == nil {
			continue
		}
		found := *category
		e.logger.Debug("Transaction categorized",
			logging.F(logging.FieldDescription, description),
			logging.F(logging.FieldCategory, found.Name),
			logging.F(logging.FieldTier, s.Name()))
		return &found, Match(s.Name())
	}

	e.logger.Debug("No category matched", logging.F(logging.FieldDescription, description))
	return nil, MatchNone
}
