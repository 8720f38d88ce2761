package feed_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/cmd/feed"
	"fjacquet/statement-import/internal/config"
	"fjacquet/statement-import/internal/container"
	"fjacquet/statement-import/internal/ingest"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
)

func TestFeedCommand_Metadata(t *testing.T) {
	assert.Equal(t, "feed [file]", feed.Cmd.Use)
	assert.Contains(t, feed.Cmd.Short, "bank-feed batch")
	flag := feed.Cmd.Flags().Lookup("connection")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
}

func TestDecodeBatch(t *testing.T) {
	batch, err := feed.DecodeBatch([]byte(`{"connectionId":"conn-1","transactions":[
		{"id":"b-1","description":"Uber Trip","amount":"-23.10","date":"2024-03-01"}]}`), "")
	require.NoError(t, err)
	assert.Equal(t, "conn-1", batch.ConnectionID)
	require.Len(t, batch.Transactions, 1)
	assert.Equal(t, "-23.1", batch.Transactions[0].Amount.String())

	batch, err = feed.DecodeBatch([]byte(`[{"id":"b-2","description":"Netflix","amount":-39.9,"date":"2024-03-02"}]`), "conn-2")
	require.NoError(t, err)
	assert.Equal(t, "conn-2", batch.ConnectionID)
	assert.Len(t, batch.Transactions, 1)

	batch, err = feed.DecodeBatch([]byte(`{"connectionId":"conn-1","transactions":[]}`), "conn-9")
	require.NoError(t, err)
	assert.Equal(t, "conn-9", batch.ConnectionID)

	for _, bad := range []string{"", "   ", `[1,2]`, `{"transactions":[]}`, `[]`, `{`} {
		_, err := feed.DecodeBatch([]byte(bad), "")
		assert.Error(t, err, bad)
	}
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.Data.LedgerPath = container.MemoryLedger
	c, err := container.NewContainer(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)
	defer c.Close()

	items := []models.FeedTransaction{
		{ID: "b-1", Description: "Uber Trip", Amount: mustDecimal(t, "-23.10"), Date: "2024-03-01"},
		{ID: "b-2", Description: "", Amount: mustDecimal(t, "-5"), Date: "2024-03-01"},
	}
	req := ingest.FeedRequest{TenantID: "acme", ConnectionID: "conn-1"}

	var out bytes.Buffer
	require.NoError(t, feed.Run(context.Background(), c, &out, req, items, true))

	var summary models.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "description is required", summary.Results[1].Error)

	err = feed.Run(context.Background(), c, &out, ingest.FeedRequest{TenantID: "acme"}, items, true)
	assert.Error(t, err)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
