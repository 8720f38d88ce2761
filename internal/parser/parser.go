// Package parser defines the contract shared by the statement parsers.
package parser

import (
	"context"
	"io"

	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parsererror"
)

// ParseResult is the output of a successful document parse.
type ParseResult struct {
	Candidates []models.Candidate
	// RowErrors holds rows that were not emitted because a field failed
	// coercion. Markup parsers never populate it.
	RowErrors []*parsererror.RowError
	// Layout names the column layout or strategy that produced the result.
	Layout string
}

// Total is the number of statement lines the result accounts for.
func (r *ParseResult) Total() int {
	return len(r.Candidates) + len(r.RowErrors)
}

// Parser turns raw statement content into candidates. A returned error is
// always document-level: no candidate from that document may be written.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (*ParseResult, error)
	Name() string
}
