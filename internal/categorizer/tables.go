package categorizer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DomainKeywords ties a category-name fragment to description keywords.
type DomainKeywords struct {
	Domain   string   `yaml:"domain"`
	Keywords []string `yaml:"keywords"`
}

// MerchantKeyword maps a well-known merchant to a category-name fragment.
type MerchantKeyword struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// Tables is the keyword data the strategies consult. Order is significant:
// entries are tried in declaration order.
type Tables struct {
	DomainKeywords   []DomainKeywords  `yaml:"domain_keywords"`
	MerchantFallback []MerchantKeyword `yaml:"merchant_fallback"`
}

// DefaultTables returns the built-in Portuguese tables. Each call returns a
// fresh copy.
func DefaultTables() Tables {
	return Tables{
		DomainKeywords: []DomainKeywords{
			{Domain: "alimentação", Keywords: []string{
				"supermercado", "padaria", "ifood", "rappi", "restaurante",
				"lanchonete", "açougue", "hortifruti", "pizzaria", "carrefour",
				"pão de açúcar", "assaí", "atacadão",
			}},
			{Domain: "transporte", Keywords: []string{
				"uber", "99app", "99 pop", "cabify", "posto", "combustível", "gasolina",
				"estacionamento", "pedágio", "sem parar", "metrô", "ônibus", "bilhete único",
			}},
			{Domain: "saúde", Keywords: []string{
				"farmácia", "drogaria", "drogasil", "droga raia", "pague menos",
				"hospital", "clínica", "laboratório", "unimed", "dentista", "médico",
			}},
			{Domain: "moradia", Keywords: []string{
				"aluguel", "condomínio", "conta de luz", "conta de água", "enel",
				"sabesp", "cemig", "comgás", "iptu",
			}},
			{Domain: "lazer", Keywords: []string{
				"netflix", "spotify", "cinema", "ingresso", "steam", "disney",
			}},
			{Domain: "educação", Keywords: []string{
				"escola", "faculdade", "universidade", "mensalidade escolar",
				"livraria", "udemy", "alura",
			}},
			{Domain: "salário", Keywords: []string{
				"salário", "folha de pagamento", "pró-labore", "proventos",
			}},
		},
		MerchantFallback: []MerchantKeyword{
			{Keyword: "ifood", Category: "aliment"},
			{Keyword: "rappi", Category: "aliment"},
			{Keyword: "uber", Category: "transport"},
			{Keyword: "99app", Category: "transport"},
			{Keyword: "shell", Category: "transport"},
			{Keyword: "ipiranga", Category: "transport"},
			{Keyword: "drogasil", Category: "saúde"},
			{Keyword: "droga raia", Category: "saúde"},
			{Keyword: "netflix", Category: "lazer"},
			{Keyword: "spotify", Category: "lazer"},
			{Keyword: "amazon", Category: "compras"},
			{Keyword: "mercado livre", Category: "compras"},
			{Keyword: "magalu", Category: "compras"},
			{Keyword: "shopee", Category: "compras"},
		},
	}
}

// LoadTables reads tables from a YAML file.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read keyword tables %s: %w", path, err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse keyword tables %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tables{}, fmt.Errorf("invalid keyword tables %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects entries that could never match.
func (t Tables) Validate() error {
	for i, d := range t.DomainKeywords {
		if strings.TrimSpace(d.Domain) == "" {
			return fmt.Errorf("domain_keywords[%d]: empty domain", i)
		}
		if len(foldAll(d.Keywords)) == 0 {
			return fmt.Errorf("domain_keywords[%d] (%s): no keywords", i, d.Domain)
		}
	}
	for i, m := range t.MerchantFallback {
		if strings.TrimSpace(m.Keyword) == "" || strings.TrimSpace(m.Category) == "" {
			return fmt.Errorf("merchant_fallback[%d]: keyword and category are required", i)
		}
	}
	return nil
}
