package categorize_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/cmd/categorize"
	"fjacquet/statement-import/internal/config"
	"fjacquet/statement-import/internal/container"
	"fjacquet/statement-import/internal/logging"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Default()
	cfg.Data.LedgerPath = container.MemoryLedger
	cfg.Data.CategoriesFile = filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(cfg.Data.CategoriesFile, []byte(`tenants:
  acme:
    - id: cat-food
      name: Alimentação
      type: expense
      active: true
    - id: cat-transport
      name: Transporte
      type: expense
      active: true
`), 0o600))
	c, err := container.NewContainer(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCategorizeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "categorize", categorize.Cmd.Use)
	assert.Contains(t, categorize.Cmd.Short, "Categorize a transaction")
	flag := categorize.Cmd.Flags().Lookup("description")
	require.NotNil(t, flag)
	assert.Equal(t, "d", flag.Shorthand)
}

func TestRun(t *testing.T) {
	c := newContainer(t)

	tests := []struct {
		description string
		categoryID  string
		tier        string
	}{
		{"Transporte", "cat-transport", "exact"},
		{"Padaria Central", "cat-food", "domain_keyword"},
		{"PIX Fulano de Tal", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			result, err := categorize.Run(context.Background(), c, "acme", tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.categoryID, result.CategoryID)
			assert.Equal(t, tt.tier, result.Tier)
		})
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, categorize.Print(&buf, &categorize.Result{
		Description: "Uber Trip", CategoryID: "cat-transport", Category: "Transporte", Tier: "merchant",
	}, false))
	require.NoError(t, categorize.Print(&buf, &categorize.Result{Description: "PIX"}, false))

	assert.Equal(t, "Uber Trip: Transporte (cat-transport) via merchant\nPIX: uncategorized\n", buf.String())
}
