// Package csvparser reads comma-separated bank statement exports.
//
// The header row selects a Layout; every following record becomes a
// candidate, is dropped (blank description, zero amount) or is reported as a
// RowError when its amount cannot be read.
package csvparser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-import/internal/currencyutils"
	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parser"
	"fjacquet/statement-import/internal/parsererror"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser implements parser.Parser for delimited text.
type Parser struct {
	parser.BaseParser
	lazyQuotes bool
	layouts    []Layout
	generic    Layout
}

// NewParser returns a parser trying DefaultLayouts then GenericLayout.
func NewParser(lazyQuotes bool, logger logging.Logger) *Parser {
	return &Parser{
		BaseParser: parser.NewBaseParser("csv", logger),
		lazyQuotes: lazyQuotes,
		layouts:    DefaultLayouts,
		generic:    GenericLayout,
	}
}

// WithLayouts replaces the named layouts tried before the generic one.
func (p *Parser) WithLayouts(layouts ...Layout) *Parser {
	p.layouts = layouts
	return p
}

// Parse implements parser.Parser.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*parser.ParseResult, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = p.lazyQuotes
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &parsererror.InvalidFormatError{
				ExpectedFormat: "CSV with a header row",
				Msg:            "file is empty",
			}
		}
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "CSV with a header row",
			Msg:            fmt.Sprintf("header row unreadable: %v", err),
		}
	}

	layout, cols, ok := matchLayout(p.layouts, p.generic, header)
	if !ok {
		return nil, &parsererror.DataExtractionError{
			FieldName:      "header",
			RawDataSnippet: parsererror.Snippet(strings.Join(header, ","), 80),
			Reason:         "no description, amount and date columns found",
			Msg:            "unrecognised column layout",
		}
	}

	log := p.GetLogger().WithField(logging.FieldLayout, layout.Name)
	log.Debug("Matched CSV layout", logging.F("columns", len(header)))

	result := &parser.ParseResult{Layout: layout.Name}
	dropped := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syntaxErr *csv.ParseError
			if !errors.As(err, &syntaxErr) {
				return nil, fmt.Errorf("failed to read CSV: %w", err)
			}
			log.WithError(err).Warn("Skipping malformed CSV record",
				logging.F(logging.FieldRow, syntaxErr.StartLine))
			result.RowErrors = append(result.RowErrors, &parsererror.RowError{
				Line: syntaxErr.StartLine,
				Err:  syntaxErr.Err,
			})
			continue
		}

		line, _ := reader.FieldPos(0)
		c, rowErr, keep := p.convertRow(log.WithField(logging.FieldRow, line), header, cols, record, line)
		switch {
		case rowErr != nil:
			result.RowErrors = append(result.RowErrors, rowErr)
		case keep:
			result.Candidates = append(result.Candidates, c)
		default:
			dropped++
		}
	}

	log.Info("Parsed CSV statement",
		logging.F(logging.FieldCount, len(result.Candidates)),
		logging.F("row_errors", len(result.RowErrors)),
		logging.F("skipped", dropped))
	return result, nil
}

// convertRow returns a candidate, a row error, or neither when the row is
// dropped silently.
func (p *Parser) convertRow(log logging.Logger, header []string, cols columns, record []string, line int) (models.Candidate, *parsererror.RowError, bool) {
	desc := strings.TrimSpace(cell(record, cols.description))
	if desc == "" {
		log.Debug("Dropping row without description")
		return models.Candidate{}, nil, false
	}

	raw := cell(record, cols.amount)
	amount, err := currencyutils.ParseAmount(raw)
	if err != nil {
		log.WithError(err).Warn("Row amount unreadable",
			logging.F(logging.FieldDescription, desc))
		return models.Candidate{}, &parsererror.RowError{
			Line:        line,
			Description: desc,
			Err: &parsererror.ParseError{
				Parser: p.Name(),
				Field:  strings.TrimSpace(header[cols.amount]),
				Value:  raw,
				Err:    err,
			},
		}, false
	}
	if amount.IsZero() {
		log.Debug("Dropping zero-amount row", logging.F(logging.FieldDescription, desc))
		return models.Candidate{}, nil, false
	}

	date, ok := dateutils.ParseStatementDate(cell(record, cols.date))
	if !ok {
		log.Warn("Row date unreadable, using today",
			logging.F(logging.FieldDescription, desc),
			logging.F(logging.FieldReason, cell(record, cols.date)))
		date = p.Today()
	}

	var bankID string
	if cols.id >= 0 {
		bankID = strings.TrimSpace(cell(record, cols.id))
	}

	c := models.NewCandidate(desc, amount, date, bankID)
	c.Line = line
	return c, nil, true
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
