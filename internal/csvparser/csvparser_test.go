package csvparser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parser"
	"fjacquet/statement-import/internal/parsererror"
)

func newTestParser(t *testing.T) (*Parser, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	p := NewParser(true, logger)
	p.SetClock(dateutils.FixedClock(time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)))
	return p, logger
}

func parse(t *testing.T, p *Parser, content string) *parser.ParseResult {
	t.Helper()
	res, err := p.Parse(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	return res
}

func TestParse_TenRowsWithOneBadAmount(t *testing.T) {
	content := `Data,Valor,Identificador,Descrição
01/03/2024,-50.00,id-1,Padaria Pão Quente
02/03/2024,"123,45",id-2,Transferência recebida
03/03/2024,-12.90,id-3,Uber viagem
04/03/2024,abc,id-4,Farmácia São João
05/03/2024,-200.00,id-5,Supermercado Extra
06/03/2024,1500.00,id-6,Salário
07/03/2024,-35.50,id-7,iFood pedido
08/03/2024,-89.90,id-8,Posto Shell
09/03/2024,"-1.234,56",id-9,Aluguel
10/03/2024,-9.99,id-10,Spotify
`
	p, logger := newTestParser(t)
	res := parse(t, p, content)

	assert.Equal(t, "nubank-conta", res.Layout)
	require.Len(t, res.Candidates, 9)
	require.Len(t, res.RowErrors, 1)

	rowErr := res.RowErrors[0]
	assert.Equal(t, 5, rowErr.Line)
	assert.Equal(t, "Farmácia São João", rowErr.Description)
	var pe *parsererror.ParseError
	require.True(t, errors.As(rowErr, &pe))
	assert.Equal(t, "abc", pe.Value)
	assert.Equal(t, "Valor", pe.Field)

	received := res.Candidates[1]
	assert.Equal(t, "Transferência recebida", received.Description)
	assert.True(t, decimal.RequireFromString("123.45").Equal(received.Amount))
	assert.Equal(t, models.TypeIncome, received.Type)
	assert.Equal(t, "id-2", received.BankTransactionID)

	rent := res.Candidates[7]
	assert.True(t, decimal.RequireFromString("1234.56").Equal(rent.Amount))
	assert.Equal(t, models.TypeExpense, rent.Type)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), rent.Date)

	assert.NotEmpty(t, logger.EntriesByLevel("WARN"))
}

func TestParse_LayoutSelection(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		row      string
		layout   string
		wantDesc string
		wantID   string
	}{
		{
			name:     "nubank account",
			header:   "Data,Valor,Identificador,Descrição",
			row:      "01/02/2024,-10.00,abc-1,Padaria",
			layout:   "nubank-conta",
			wantDesc: "Padaria",
			wantID:   "abc-1",
		},
		{
			name:     "nubank card",
			header:   "date,category,title,amount",
			row:      "2024-02-01,restaurante,iFood,32.90",
			layout:   "nubank-cartao",
			wantDesc: "iFood",
		},
		{
			name:     "inter",
			header:   "Data Lançamento,Descrição,Valor,Saldo",
			row:      `01/02/2024,Pix enviado,"-10,00","90,00"`,
			layout:   "inter",
			wantDesc: "Pix enviado",
		},
		{
			name:     "itau",
			header:   "Data,Lançamento,Ag./Origem,Valor (R$),Saldo (R$)",
			row:      `01/02/2024,PAG BOLETO,0001,"-10,00",`,
			layout:   "itau",
			wantDesc: "PAG BOLETO",
		},
		{
			name:     "bradesco",
			header:   "Data,Histórico,Docto.,Valor,Saldo",
			row:      `01/02/2024,Tarifa,778899,"-10,00",`,
			layout:   "bradesco",
			wantDesc: "Tarifa",
			wantID:   "778899",
		},
		{
			name:     "generic english",
			header:   "Date,Description,Amount,Transaction ID",
			row:      "2024-02-01,Coffee,-4.50,T-1",
			layout:   "generic",
			wantDesc: "Coffee",
			wantID:   "T-1",
		},
		{
			name:     "header case and padding",
			header:   "  DATA , VALOR , DESCRIÇÃO ",
			row:      "01/02/2024,-10.00,Padaria",
			layout:   "nubank-conta",
			wantDesc: "Padaria",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestParser(t)
			res := parse(t, p, tt.header+"\n"+tt.row+"\n")
			assert.Equal(t, tt.layout, res.Layout)
			require.Len(t, res.Candidates, 1)
			assert.Equal(t, tt.wantDesc, res.Candidates[0].Description)
			assert.Equal(t, tt.wantID, res.Candidates[0].BankTransactionID)
			assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), res.Candidates[0].Date)
		})
	}
}

func TestParse_DropsBlankDescriptionAndZeroAmount(t *testing.T) {
	content := `data,valor,descricao
01/02/2024,-10.00,
01/02/2024,0.00,Estorno zerado
01/02/2024,"0,00",Outro zerado
,,

01/02/2024,-5.00,Café
`
	p, _ := newTestParser(t)
	res := parse(t, p, content)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Café", res.Candidates[0].Description)
	assert.Empty(t, res.RowErrors)
}

func TestParse_UnreadableDateFallsBackToToday(t *testing.T) {
	p, logger := newTestParser(t)
	res := parse(t, p, "data,valor,descricao\nontem,-10.00,Padaria\n")

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), res.Candidates[0].Date)
	assert.True(t, logger.HasEntry("WARN", "Row date unreadable, using today"))
}

func TestParse_ByteOrderMark(t *testing.T) {
	p, _ := newTestParser(t)
	res := parse(t, p, "\xEF\xBB\xBF\"Data\",Valor,Descrição\n01/02/2024,-10.00,Padaria\n")

	assert.Equal(t, "nubank-conta", res.Layout)
	require.Len(t, res.Candidates, 1)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "data", NormalizeHeader("\uFEFFData"))
	assert.Equal(t, "descrição", NormalizeHeader("  Descric\u0327a\u0303o "))
	assert.Equal(t, "valor (r$)", NormalizeHeader("Valor (R$)"))
}

func TestParse_CommaThousandsSeparator(t *testing.T) {
	p, _ := newTestParser(t)
	res := parse(t, p, "date,title,amount\n2024-01-05,\"Notebook\",\"1,299.90\"\n2024-01-06,Mercado,\"-1.234,56\"\n")

	assert.Equal(t, "nubank-cartao", res.Layout)
	require.Len(t, res.Candidates, 2)
	assert.True(t, decimal.RequireFromString("1299.90").Equal(res.Candidates[0].Amount), res.Candidates[0].Amount.String())
	assert.True(t, decimal.RequireFromString("1234.56").Equal(res.Candidates[1].Amount), res.Candidates[1].Amount.String())
	assert.Equal(t, models.TypeExpense, res.Candidates[1].Type)
}

func TestParse_MalformedRecordBecomesRowError(t *testing.T) {
	content := "data,valor,descricao\n" +
		"01/02/2024,-10.00,Pag \"loja,x\n" +
		"02/02/2024,-20.00,Padaria\n"
	p := NewParser(false, logging.NewMockLogger())
	res := parse(t, p, content)

	require.Len(t, res.RowErrors, 1)
	assert.Equal(t, 2, res.RowErrors[0].Line)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Padaria", res.Candidates[0].Description)
}

func TestParse_DocumentErrors(t *testing.T) {
	p, _ := newTestParser(t)

	_, err := p.Parse(context.Background(), strings.NewReader(""))
	var invalid *parsererror.InvalidFormatError
	require.ErrorAs(t, err, &invalid)
	assert.True(t, parsererror.IsFatal(err))

	_, err = p.Parse(context.Background(), strings.NewReader("foo,bar,baz\n1,2,3\n"))
	var extraction *parsererror.DataExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "header", extraction.FieldName)
}

func TestParse_HeaderOnly(t *testing.T) {
	p, _ := newTestParser(t)
	res := parse(t, p, "Data,Valor,Descrição\n")
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.RowErrors)
}

func TestParse_CancelledContext(t *testing.T) {
	p, _ := newTestParser(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Parse(ctx, strings.NewReader("data,valor,descricao\n01/02/2024,-1.00,x\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithLayouts(t *testing.T) {
	custom := Layout{
		Name:        "custom",
		Description: []string{"what"},
		Amount:      []string{"how much"},
		Date:        []string{"when"},
	}
	p, _ := newTestParser(t)
	p.WithLayouts(custom)

	res := parse(t, p, "when,what,how much\n2024-02-01,Book,-12.00\n")
	assert.Equal(t, "custom", res.Layout)
	require.Len(t, res.Candidates, 1)
}

func TestLayoutResolve_RequiresDistinctColumns(t *testing.T) {
	l := Layout{
		Name:        "x",
		Description: []string{"a"},
		Amount:      []string{"a"},
		Date:        []string{"d"},
	}
	_, ok := l.resolve(headerIndex([]string{"a", "d"}))
	assert.False(t, ok)
	assert.Len(t, l.Required(), 3)
}
