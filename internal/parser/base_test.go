package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parsererror"
)

func TestBaseParser_LoggerCarriesParserName(t *testing.T) {
	mock := logging.NewMockLogger()
	b := NewBaseParser("csv", mock)
	assert.Equal(t, "csv", b.Name())

	b.GetLogger().Info("hello")
	entries := mock.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Fields, logging.F(logging.FieldParser, "csv"))
}

func TestBaseParser_SetLoggerIgnoresNil(t *testing.T) {
	b := NewBaseParser("ofx", logging.NewMockLogger())
	before := b.GetLogger()
	b.SetLogger(nil)
	assert.Same(t, before, b.GetLogger())
}

func TestBaseParser_Today(t *testing.T) {
	b := NewBaseParser("ofx", logging.NewMockLogger())
	b.SetClock(dateutils.FixedClock(time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), b.Today())
}

func TestParseResult_Total(t *testing.T) {
	r := &ParseResult{
		Candidates: make([]models.Candidate, 3),
		RowErrors:  []*parsererror.RowError{{Line: 2}},
	}
	assert.Equal(t, 4, r.Total())
}
