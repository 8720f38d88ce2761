package categorizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
)

func cats(names ...string) []models.Category {
	out := make([]models.Category, len(names))
	for i, n := range names {
		out[i] = models.Category{ID: "cat-" + n, Name: n, Type: models.TypeExpense, IsActive: true}
	}
	return out
}

func newEngine() *Engine {
	return NewEngine(DefaultTables(), logging.NewMockLogger())
}

func TestEngine_TierOrder(t *testing.T) {
	e := newEngine()
	got, match := e.Categorize(context.Background(), "Supermercado Extra", cats("Alimentação", "Transporte"))
	require.NotNil(t, got)
	assert.Equal(t, "Alimentação", got.Name)
	assert.Equal(t, MatchDomainKeyword, match)
}

func TestEngine_Uncategorized(t *testing.T) {
	e := newEngine()
	got, match := e.Categorize(context.Background(), "Transferência PIX recebida", cats("Alimentação", "Transporte"))
	assert.Nil(t, got)
	assert.Equal(t, MatchNone, match)
}

func TestEngine_Categorize(t *testing.T) {
	tests := []struct {
		name        string
		description string
		categories  []models.Category
		want        string
		match       Match
	}{
		{"description contains name", "Pagamento Academia Smart", cats("Academia", "Lazer"), "Academia", MatchExact},
		{"name contains description", "uber", cats("Uber e táxi"), "Uber e táxi", MatchExact},
		{"exact beats domain", "Farmácia Saúde Total", cats("Alimentação", "Saúde"), "Saúde", MatchExact},
		{"case and accents folded", "DROGARIA SAO PAULO", cats("Saude"), "Saude", MatchDomainKeyword},
		{"category order wins in domain tier", "Padaria do posto", cats("Transporte", "Alimentação"), "Transporte", MatchDomainKeyword},
		{"domain fragment inside longer name", "NETFLIX.COM", cats("Assinaturas e lazer"), "Assinaturas e lazer", MatchDomainKeyword},
		{"merchant table only", "AMAZON MARKETPLACE", cats("Compras online"), "Compras online", MatchMerchant},
		{"merchant keyword without category", "Shell Select", cats("Alimentação"), "", MatchNone},
		{"empty description", "   ", cats("Alimentação"), "", MatchNone},
	}
	e := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, match := e.Categorize(context.Background(), tt.description, tt.categories)
			assert.Equal(t, tt.match, match)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestEngine_IgnoresInactiveCategories(t *testing.T) {
	categories := cats("Alimentação", "Mercado")
	categories[0].IsActive = false

	got, _ := newEngine().Categorize(context.Background(), "Supermercado Extra", categories)
	require.NotNil(t, got)
	assert.Equal(t, "Mercado", got.Name)
}

func TestEngine_ReturnsCopy(t *testing.T) {
	categories := cats("Alimentação")
	got, _ := newEngine().Categorize(context.Background(), "Padaria", categories)
	require.NotNil(t, got)
	got.Name = "changed"
	assert.Equal(t, "Alimentação", categories[0].Name)
}

func TestEngine_CustomTables(t *testing.T) {
	tables := Tables{
		DomainKeywords: []DomainKeywords{{Domain: "pets", Keywords: []string{"petz", "cobasi"}}},
	}
	e := NewEngine(tables, nil)

	got, match := e.Categorize(context.Background(), "COBASI LOJA 12", cats("Pets", "Alimentação"))
	require.NotNil(t, got)
	assert.Equal(t, "Pets", got.Name)
	assert.Equal(t, MatchDomainKeyword, match)

	got, _ = e.Categorize(context.Background(), "Supermercado Extra", cats("Alimentação"))
	assert.Nil(t, got)
}

func TestEngine_Strategies(t *testing.T) {
	assert.Equal(t, []string{"exact", "domain_keyword", "merchant"}, newEngine().Strategies())
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := `domain_keywords:
  - domain: pets
    keywords: [petz, cobasi]
merchant_fallback:
  - keyword: petlove
    category: pet
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	require.Len(t, tables.DomainKeywords, 1)
	assert.Equal(t, []string{"petz", "cobasi"}, tables.DomainKeywords[0].Keywords)
	require.Len(t, tables.MerchantFallback, 1)
	assert.Equal(t, "pet", tables.MerchantFallback[0].Category)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("domain_keywords:\n  - domain: pets\n"), 0o600))
	_, err = LoadTables(bad)
	assert.Error(t, err)

	_, err = LoadTables(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultTables_Valid(t *testing.T) {
	assert.NoError(t, DefaultTables().Validate())
}

func TestFold(t *testing.T) {
	assert.Equal(t, "saude", fold("  Saúde "))
	assert.Equal(t, "alimentacao", fold("ALIMENTAÇÃO"))
}
