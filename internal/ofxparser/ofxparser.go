// Package ofxparser reads OFX/QFX bank and credit-card statements.
//
// Two extraction strategies are available. The xpath strategy normalizes
// SGML into XML and walks it with XPath; it tolerates the loose documents
// many Brazilian banks emit. The ofxgo strategy hands the document to
// github.com/aclindsa/ofxgo and rejects anything that library rejects.
package ofxparser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/statement-import/internal/currencyutils"
	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parser"
	"fjacquet/statement-import/internal/parsererror"
)

// PlaceholderDescription is used when a transaction has neither memo nor name.
const PlaceholderDescription = "Transação bancária"

const (
	StrategyXPath = "xpath"
	StrategyOFXGo = "ofxgo"
)

// errNoStatements signals a well-formed document without statement blocks.
var errNoStatements = errors.New("no bank or credit card statement found")

// node is one STMTTRN as raw field text.
type node struct {
	Amount     string
	DatePosted string
	DateUser   string
	Memo       string
	Name       string
	FITID      string
}

// extractor pulls transaction nodes out of a whole document.
type extractor interface {
	Name() string
	Extract(content []byte) ([]node, error)
}

// Parser implements parser.Parser for the markup format.
type Parser struct {
	parser.BaseParser
	strategy extractor
}

// NewParser returns a parser using the named strategy. An empty name selects
// the xpath strategy.
func NewParser(strategy string, logger logging.Logger) (*Parser, error) {
	var s extractor
	switch strategy {
	case "", StrategyXPath:
		s = newXPathStrategy()
	case StrategyOFXGo:
		s = ofxgoStrategy{}
	default:
		return nil, fmt.Errorf("unknown ofx strategy %q", strategy)
	}
	return &Parser{
		BaseParser: parser.NewBaseParser("ofx", logger),
		strategy:   s,
	}, nil
}

// Strategy returns the name of the active extraction strategy.
func (p *Parser) Strategy() string {
	return p.strategy.Name()
}

// Parse implements parser.Parser.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*parser.ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX content: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := p.GetLogger().WithField(logging.FieldStrategy, p.strategy.Name())

	nodes, err := p.strategy.Extract(content)
	if err != nil {
		if errors.Is(err, errNoStatements) {
			return nil, &parsererror.DataExtractionError{
				FieldName:      "STMTRS",
				RawDataSnippet: parsererror.Snippet(string(content), 80),
				Reason:         err.Error(),
				Msg:            "statement has no transaction list",
			}
		}
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat:       "OFX",
			ActualContentSnippet: parsererror.Snippet(string(content), 80),
			Msg:                  err.Error(),
		}
	}

	result := &parser.ParseResult{
		Candidates: make([]models.Candidate, 0, len(nodes)),
		Layout:     p.strategy.Name(),
	}
	for i, n := range nodes {
		c, ok := p.toCandidate(log.WithField(logging.FieldRow, i+1), n)
		if ok {
			result.Candidates = append(result.Candidates, c)
		}
	}

	log.Info("Parsed OFX statement",
		logging.F(logging.FieldCount, len(result.Candidates)),
		logging.F("skipped", len(nodes)-len(result.Candidates)))
	return result, nil
}

func (p *Parser) toCandidate(log logging.Logger, n node) (models.Candidate, bool) {
	amount, err := currencyutils.ParseAmount(n.Amount)
	if err != nil {
		log.WithError(err).Warn("Skipping transaction with unreadable amount",
			logging.F(logging.FieldBankTxID, n.FITID))
		return models.Candidate{}, false
	}
	if n.FITID == "" {
		log.Warn("Transaction has no FITID, falling back to composite dedup")
	}

	return models.NewCandidate(description(n), amount, p.date(log, n), n.FITID), true
}

func description(n node) string {
	switch {
	case n.Memo != "":
		return n.Memo
	case n.Name != "":
		return n.Name
	default:
		return PlaceholderDescription
	}
}

func (p *Parser) date(log logging.Logger, n node) time.Time {
	if d, ok := dateutils.ParseOFXDate(n.DatePosted); ok {
		return d
	}
	if d, ok := dateutils.ParseOFXDate(n.DateUser); ok {
		return d
	}
	log.Warn("Transaction date unreadable, using today",
		logging.F(logging.FieldBankTxID, n.FITID),
		logging.F(logging.FieldReason, n.DatePosted))
	return p.Today()
}
