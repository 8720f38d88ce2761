// Package ingest turns uploaded statements and bank-feed batches into ledger
// rows and reports a per-item outcome for each line.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"fjacquet/statement-import/internal/categorizer"
	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/dedup"
	"fjacquet/statement-import/internal/detector"
	"fjacquet/statement-import/internal/ledger"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parser"
	"fjacquet/statement-import/internal/parsererror"
)

// CategoryLister supplies a tenant's active categories.
type CategoryLister interface {
	ListActive(ctx context.Context, tenantID string) ([]models.Category, error)
}

// Request identifies an uploaded statement.
type Request struct {
	TenantID string
	UserID   string
	FileName string
}

// FeedRequest identifies a bank-feed batch.
type FeedRequest struct {
	TenantID     string
	UserID       string
	ConnectionID string
}

// Dependencies are the collaborators of a Service.
type Dependencies struct {
	MarkupParser    parser.Parser
	DelimitedParser parser.Parser
	Categories      CategoryLister
	Ledger          ledger.Store
	Categorizer     *categorizer.Engine
	Logger          logging.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithDefaultStatus sets the status of imported rows.
func WithDefaultStatus(status string) Option {
	return func(s *Service) {
		if strings.TrimSpace(status) != "" {
			s.status = status
		}
	}
}

// WithClock replaces the clock used for timestamps and date fallbacks.
func WithClock(clock dateutils.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// Service is the ingestion orchestrator. It holds no per-request state and
// may be shared between goroutines when its collaborators allow it.
type Service struct {
	markup      parser.Parser
	delimited   parser.Parser
	categories  CategoryLister
	ledger      ledger.Store
	dedup       *dedup.Engine
	categorizer *categorizer.Engine
	logger      logging.Logger
	status      string
	clock       dateutils.Clock
}

// NewService validates deps and builds a Service.
func NewService(deps Dependencies, opts ...Option) (*Service, error) {
	switch {
	case deps.MarkupParser == nil:
		return nil, errors.New("ingest: markup parser is required")
	case deps.DelimitedParser == nil:
		return nil, errors.New("ingest: delimited parser is required")
	case deps.Categories == nil:
		return nil, errors.New("ingest: category lister is required")
	case deps.Ledger == nil:
		return nil, errors.New("ingest: ledger is required")
	}

	logger := logging.OrDefault(deps.Logger)
	engine := deps.Categorizer
	if engine == nil {
		engine = categorizer.NewEngine(categorizer.DefaultTables(), logger)
	}

	s := &Service{
		markup:      deps.MarkupParser,
		delimited:   deps.DelimitedParser,
		categories:  deps.Categories,
		ledger:      deps.Ledger,
		dedup:       dedup.NewEngine(deps.Ledger, logger),
		categorizer: engine,
		logger:      logger,
		status:      models.StatusPaid,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IngestFile detects, parses and imports an uploaded statement. Document
// level failures are returned before any ledger write. Once items are being
// processed the returned summary is always non-nil; on cancellation it holds
// the items handled so far and the error is ctx.Err().
func (s *Service) IngestFile(ctx context.Context, req Request, content []byte) (*models.Summary, error) {
	if strings.TrimSpace(req.TenantID) == "" {
		return nil, errors.New("ingest: tenant id is required")
	}
	start := time.Now()
	log := s.logger.WithFields(
		logging.F(logging.FieldTenant, req.TenantID),
		logging.F(logging.FieldFile, req.FileName))

	format := detector.Detect(req.FileName, content)
	p, err := s.parserFor(format)
	if err != nil {
		log.Warn("Rejected upload", logging.F(logging.FieldFormat, format.String()))
		return nil, &parsererror.UnsupportedFormatError{FileName: req.FileName}
	}
	log = log.WithField(logging.FieldFormat, format.String())

	result, err := p.Parse(ctx, bytes.NewReader(content))
	if err != nil {
		log.WithError(err).Error("Statement could not be parsed")
		return nil, withFilePath(err, req.FileName)
	}

	categories := s.listCategories(ctx, log, req.TenantID)
	summary := models.NewSummary()
	for _, it := range orderedItems(result) {
		if err := ctx.Err(); err != nil {
			log.Warn("Import cancelled", logging.F(logging.FieldCount, summary.Total))
			return summary, err
		}
		if it.rowErr != nil {
			summary.AddError(rowDescription(it.rowErr), it.rowErr)
			continue
		}
		s.importCandidate(ctx, log, req.TenantID, req.UserID, dedup.FileScope(), categories, *it.candidate, summary)
	}

	s.logSummary(log, summary, start)
	return summary, nil
}

// IngestFeed imports entries delivered by a bank-feed connection.
// Identifiers are deduplicated per connection.
func (s *Service) IngestFeed(ctx context.Context, req FeedRequest, items []models.FeedTransaction) (*models.Summary, error) {
	if strings.TrimSpace(req.TenantID) == "" {
		return nil, errors.New("ingest: tenant id is required")
	}
	if strings.TrimSpace(req.ConnectionID) == "" {
		return nil, errors.New("ingest: bank connection id is required")
	}
	start := time.Now()
	log := s.logger.WithFields(
		logging.F(logging.FieldTenant, req.TenantID),
		logging.F(logging.FieldConnection, req.ConnectionID))

	categories := s.listCategories(ctx, log, req.TenantID)
	scope := dedup.FeedScope(req.ConnectionID)
	summary := models.NewSummary()
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			log.Warn("Feed import cancelled", logging.F(logging.FieldCount, summary.Total))
			return summary, err
		}
		c, err := s.feedCandidate(log.WithField(logging.FieldRow, i+1), item)
		if err != nil {
			summary.AddError(strings.TrimSpace(item.Description), err)
			continue
		}
		s.importCandidate(ctx, log, req.TenantID, req.UserID, scope, categories, c, summary)
	}

	s.logSummary(log, summary, start)
	return summary, nil
}

// Recategorize runs the categorization engine over the tenant's
// uncategorized rows and stores every hit.
func (s *Service) Recategorize(ctx context.Context, tenantID string) (*models.RecategorizeSummary, error) {
	log := s.logger.WithField(logging.FieldTenant, tenantID)

	categories, err := s.categories.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	rows, err := s.ledger.ListUncategorized(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uncategorized transactions: %w", err)
	}

	out := &models.RecategorizeSummary{Scanned: len(rows)}
	for _, tx := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		category, match := s.categorizer.Categorize(ctx, tx.Description, categories)
		if category == nil {
			continue
		}
		if err := s.ledger.SetCategory(ctx, tenantID, tx.ID, category.ID, true); err != nil {
			out.Failed++
			log.WithError(err).Warn("Failed to store category",
				logging.F(logging.FieldTransaction, tx.ID))
			continue
		}
		out.Categorized++
		log.Debug("Transaction recategorized",
			logging.F(logging.FieldTransaction, tx.ID),
			logging.F(logging.FieldCategory, category.Name),
			logging.F(logging.FieldTier, string(match)))
	}

	log.Info("Recategorization finished",
		logging.F("scanned", out.Scanned),
		logging.F("categorized", out.Categorized),
		logging.F("failed", out.Failed))
	return out, nil
}

func (s *Service) parserFor(format detector.Format) (parser.Parser, error) {
	switch format {
	case detector.Markup:
		return s.markup, nil
	case detector.Delimited:
		return s.delimited, nil
	default:
		return nil, fmt.Errorf("no parser for %s", format)
	}
}

// listCategories never fails the batch: without categories every row is
// imported uncategorized and can be recategorized later.
func (s *Service) listCategories(ctx context.Context, log logging.Logger, tenantID string) []models.Category {
	categories, err := s.categories.ListActive(ctx, tenantID)
	if err != nil {
		log.WithError(err).Warn("Categories unavailable, importing uncategorized")
		return nil
	}
	return categories
}

func (s *Service) importCandidate(ctx context.Context, log logging.Logger, tenantID, userID string,
	scope dedup.Scope, categories []models.Category, c models.Candidate, summary *models.Summary) {

	existing, err := s.dedup.Find(ctx, tenantID, c, scope)
	if err != nil {
		log.WithError(err).Warn("Duplicate check failed", logging.F(logging.FieldDescription, c.Description))
		summary.AddError(c.Description, err)
		return
	}
	if existing != nil {
		summary.AddDuplicate(c.Description, duplicateMessage(existing))
		return
	}

	category, _ := s.categorizer.Categorize(ctx, c.Description, categories)

	tx, err := models.NewLedgerTransactionBuilder().
		FromCandidate(c).
		WithOwner(tenantID, userID).
		WithConnection(scope.ConnectionID()).
		WithStatus(s.status).
		WithCategory(category).
		WithCreatedAt(s.now()).
		Build()
	if err != nil {
		summary.AddError(c.Description, err)
		return
	}

	stored, err := s.ledger.Create(ctx, &tx)
	switch {
	case errors.Is(err, parsererror.ErrDuplicateTransaction):
		summary.AddDuplicate(c.Description, "transaction already imported")
	case err != nil:
		log.WithError(err).Error("Failed to write transaction", logging.F(logging.FieldDescription, c.Description))
		summary.AddError(c.Description, err)
	default:
		summary.AddImported(c.Description, stored.ID, stored.CategoryID)
	}
}

func (s *Service) feedCandidate(log logging.Logger, item models.FeedTransaction) (models.Candidate, error) {
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		return models.Candidate{}, errors.New("description is required")
	}
	if item.Amount.IsZero() {
		return models.Candidate{}, errors.New("amount must be non-zero")
	}
	date, ok := dateutils.ParseStatementDate(item.Date)
	if !ok {
		log.Warn("Feed date unreadable, using today",
			logging.F(logging.FieldDescription, desc),
			logging.F(logging.FieldReason, item.Date))
		date = s.clock.Today()
	}
	return models.NewCandidate(desc, item.Amount, date, item.ID), nil
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Service) logSummary(log logging.Logger, summary *models.Summary, start time.Time) {
	log.Info("Import finished",
		logging.F("imported", summary.Imported),
		logging.F("duplicates", summary.Duplicates),
		logging.F("errors", summary.Errors),
		logging.F("categorized", summary.Categorized),
		logging.F(logging.FieldCount, summary.Total),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
}

type item struct {
	line      int
	candidate *models.Candidate
	rowErr    *parsererror.RowError
}

// orderedItems merges candidates and row errors back into source order.
func orderedItems(result *parser.ParseResult) []item {
	items := make([]item, 0, result.Total())
	for i := range result.Candidates {
		items = append(items, item{line: result.Candidates[i].Line, candidate: &result.Candidates[i]})
	}
	for _, rowErr := range result.RowErrors {
		items = append(items, item{line: rowErr.Line, rowErr: rowErr})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].line < items[j].line })
	return items
}

func rowDescription(rowErr *parsererror.RowError) string {
	if rowErr.Description != "" {
		return rowErr.Description
	}
	return fmt.Sprintf("row %d", rowErr.Line)
}

func duplicateMessage(existing *models.LedgerTransaction) string {
	return fmt.Sprintf("already imported as %s", existing.ID)
}

// withFilePath fills in the file name on document-level parser errors.
func withFilePath(err error, fileName string) error {
	var invalid *parsererror.InvalidFormatError
	if errors.As(err, &invalid) && invalid.FilePath == "" {
		invalid.FilePath = fileName
	}
	var extraction *parsererror.DataExtractionError
	if errors.As(err, &extraction) && extraction.FilePath == "" {
		extraction.FilePath = fileName
	}
	return err
}
