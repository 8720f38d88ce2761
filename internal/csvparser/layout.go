package csvparser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Layout maps a bank's CSV header to the candidate fields. Each role lists
// the accepted column names, lower-cased. Description, Amount and Date are
// required; ID is optional.
type Layout struct {
	Name        string
	Description []string
	Amount      []string
	Date        []string
	ID          []string
}

// columns holds resolved column indexes; -1 means absent.
type columns struct {
	description int
	amount      int
	date        int
	id          int
}

// DefaultLayouts are tried in order; the first layout whose required roles
// are all present in the header wins.
var DefaultLayouts = []Layout{
	{
		Name:        "nubank-conta",
		Description: []string{"descrição", "descricao"},
		Amount:      []string{"valor"},
		Date:        []string{"data"},
		ID:          []string{"identificador"},
	},
	{
		Name:        "nubank-cartao",
		Description: []string{"title"},
		Amount:      []string{"amount"},
		Date:        []string{"date"},
	},
	{
		Name:        "inter",
		Description: []string{"descrição", "descricao", "histórico", "historico"},
		Amount:      []string{"valor"},
		Date:        []string{"data lançamento", "data lancamento"},
	},
	{
		Name:        "itau",
		Description: []string{"lançamento", "lancamento"},
		Amount:      []string{"valor", "valor (r$)"},
		Date:        []string{"data"},
	},
	{
		Name:        "bradesco",
		Description: []string{"histórico", "historico"},
		Amount:      []string{"valor", "valor (r$)"},
		Date:        []string{"data"},
		ID:          []string{"docto.", "documento"},
	},
}

// GenericLayout is consulted when no named layout matches.
var GenericLayout = Layout{
	Name: "generic",
	Description: []string{
		"descrição", "descricao", "description", "histórico", "historico",
		"lançamento", "lancamento", "title", "título", "titulo", "memo",
		"estabelecimento", "detalhes", "detalhe", "payee", "name", "nome",
	},
	Amount: []string{
		"valor", "valor (r$)", "amount", "value", "montante", "quantia", "total",
	},
	Date: []string{
		"data", "date", "data lançamento", "data lancamento", "data de lançamento",
		"data da transação", "data da transacao", "data movimento", "dt", "posted date",
	},
	ID: []string{
		"identificador", "id", "fitid", "transaction id", "id da transação",
		"código", "codigo", "documento", "referência", "referencia",
	},
}

// Required returns the synonym lists of the mandatory roles.
func (l Layout) Required() [][]string {
	return [][]string{l.Description, l.Amount, l.Date}
}

// NormalizeHeader prepares a header cell for matching.
func NormalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\uFEFF")
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(cell)))
}

// headerIndex maps normalized header names to their first column index.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, cell := range header {
		name := NormalizeHeader(cell)
		if _, seen := idx[name]; !seen && name != "" {
			idx[name] = i
		}
	}
	return idx
}

func find(idx map[string]int, synonyms []string) int {
	for _, s := range synonyms {
		if i, ok := idx[s]; ok {
			return i
		}
	}
	return -1
}

// resolve returns the column indexes when every required role is present.
func (l Layout) resolve(idx map[string]int) (columns, bool) {
	cols := columns{
		description: find(idx, l.Description),
		amount:      find(idx, l.Amount),
		date:        find(idx, l.Date),
		id:          find(idx, l.ID),
	}
	for _, synonyms := range l.Required() {
		if find(idx, synonyms) < 0 {
			return columns{}, false
		}
	}
	// one column cannot serve two required roles
	if cols.description == cols.amount || cols.description == cols.date || cols.amount == cols.date {
		return columns{}, false
	}
	if cols.id == cols.description || cols.id == cols.amount || cols.id == cols.date {
		cols.id = -1
	}
	return cols, true
}

// matchLayout picks the first layout that fits header, then the generic one.
func matchLayout(layouts []Layout, generic Layout, header []string) (Layout, columns, bool) {
	idx := headerIndex(header)
	for _, l := range layouts {
		if cols, ok := l.resolve(idx); ok {
			return l, cols, true
		}
	}
	if cols, ok := generic.resolve(idx); ok {
		return generic, cols, true
	}
	return Layout{}, columns{}, false
}
