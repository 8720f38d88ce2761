package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/internal/config"
	"fjacquet/statement-import/internal/detector"
	"fjacquet/statement-import/internal/ingest"
	"fjacquet/statement-import/internal/ledger"
	"fjacquet/statement-import/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.LedgerPath = filepath.Join(t.TempDir(), "ledger.db")
	cfg.Data.CategoriesFile = filepath.Join(t.TempDir(), "categories.yaml")
	return cfg
}

func TestNewContainer(t *testing.T) {
	_, err := NewContainer(context.Background(), nil, nil)
	assert.EqualError(t, err, "configuration cannot be nil")

	c, err := NewContainer(context.Background(), testConfig(t), logging.NewMockLogger())
	require.NoError(t, err)
	defer c.Close()

	for _, f := range []detector.Format{detector.Markup, detector.Delimited} {
		p, err := c.GetParser(f)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err = c.GetParser(detector.Unsupported)
	assert.Error(t, err)

	assert.IsType(t, &ledger.SQLiteStore{}, c.GetLedger())
	assert.NotNil(t, c.GetIngestService())
	assert.NotNil(t, c.GetCategorizer())
	assert.NotNil(t, c.GetStore())
	assert.NotNil(t, c.GetLogger())
	assert.Equal(t, "info", c.GetConfig().Log.Level)
}

func TestNewContainer_MemoryLedgerEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.LedgerPath = MemoryLedger
	require.NoError(t, os.WriteFile(cfg.Data.CategoriesFile, []byte(`tenants:
  acme:
    - id: cat-food
      name: Alimentação
      type: expense
      active: true
`), 0o600))

	c, err := NewContainer(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &ledger.MemoryStore{}, c.GetLedger())

	summary, err := c.GetIngestService().IngestFile(context.Background(),
		ingest.Request{TenantID: "acme", FileName: "a.csv"},
		[]byte("Data,Valor,Descrição\n01/03/2024,-10.00,Padaria Central\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Categorized)
}

func TestNewContainer_TablesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.TablesFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewContainer(context.Background(), cfg, logging.NewMockLogger())
	assert.Error(t, err)
}

func TestNewContainer_OFXGoStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Parsers.OFX.Strategy = config.OFXStrategyOFXGo

	c, err := NewContainer(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)
	defer c.Close()

	p, err := c.GetParser(detector.Markup)
	require.NoError(t, err)
	assert.Equal(t, "ofx", p.Name())
}
