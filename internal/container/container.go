// Package container wires the application dependencies from configuration.
package container

import (
	"context"
	"fmt"
	"io"

	"fjacquet/statement-import/internal/categorizer"
	"fjacquet/statement-import/internal/config"
	"fjacquet/statement-import/internal/csvparser"
	"fjacquet/statement-import/internal/detector"
	"fjacquet/statement-import/internal/ingest"
	"fjacquet/statement-import/internal/ledger"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/ofxparser"
	"fjacquet/statement-import/internal/parser"
	"fjacquet/statement-import/internal/store"
)

// MemoryLedger as data.ledger_path selects a throwaway in-memory ledger.
const MemoryLedger = ":memory:"

// Container holds the wired dependencies. It is immutable after creation.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.CategoryStore
	categorizer *categorizer.Engine
	parsers     map[detector.Format]parser.Parser
	ledger      ledger.Store
	closer      io.Closer
	ingest      *ingest.Service
}

// NewContainer creates and wires all dependencies. A nil logger builds one
// from the log section of cfg.
func NewContainer(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = cfg.NewLogger()
	}

	categoryStore := store.NewCategoryStore(cfg.Data.CategoriesFile, logger)

	tables := categorizer.DefaultTables()
	if cfg.Categorization.TablesFile != "" {
		loaded, err := categorizer.LoadTables(cfg.Categorization.TablesFile)
		if err != nil {
			return nil, err
		}
		tables = loaded
	}
	engine := categorizer.NewEngine(tables, logger)

	ofx, err := ofxparser.NewParser(cfg.Parsers.OFX.Strategy, logger)
	if err != nil {
		return nil, err
	}
	csv := csvparser.NewParser(cfg.Parsers.CSV.LazyQuotes, logger)
	parsers := map[detector.Format]parser.Parser{
		detector.Markup:    ofx,
		detector.Delimited: csv,
	}

	var (
		ledgerStore ledger.Store
		closer      io.Closer
	)
	if cfg.Data.LedgerPath == MemoryLedger {
		ledgerStore = ledger.NewMemoryStore()
	} else {
		sqliteStore, err := ledger.OpenSQLite(ctx, cfg.Data.LedgerPath, logger)
		if err != nil {
			return nil, err
		}
		ledgerStore, closer = sqliteStore, sqliteStore
	}

	svc, err := ingest.NewService(ingest.Dependencies{
		MarkupParser:    ofx,
		DelimitedParser: csv,
		Categories:      categoryStore,
		Ledger:          ledgerStore,
		Categorizer:     engine,
		Logger:          logger,
	}, ingest.WithDefaultStatus(cfg.Ingest.DefaultStatus))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	logger.Debug("Container initialized",
		logging.F(logging.FieldStrategy, ofx.Strategy()),
		logging.F("ledger", cfg.Data.LedgerPath))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       categoryStore,
		categorizer: engine,
		parsers:     parsers,
		ledger:      ledgerStore,
		closer:      closer,
		ingest:      svc,
	}, nil
}

// GetParser returns the parser for a detected format.
func (c *Container) GetParser(f detector.Format) (parser.Parser, error) {
	p, ok := c.parsers[f]
	if !ok {
		return nil, fmt.Errorf("no parser for format: %s", f)
	}
	return p, nil
}

func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

func (c *Container) GetConfig() *config.Config {
	return c.config
}

func (c *Container) GetCategorizer() *categorizer.Engine {
	return c.categorizer
}

func (c *Container) GetStore() *store.CategoryStore {
	return c.store
}

func (c *Container) GetLedger() ledger.Store {
	return c.ledger
}

func (c *Container) GetIngestService() *ingest.Service {
	return c.ingest
}

// Close releases the ledger.
func (c *Container) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
