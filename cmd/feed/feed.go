// Package feed implements the feed command
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fjacquet/statement-import/cmd/common"
	"fjacquet/statement-import/cmd/root"
	"fjacquet/statement-import/internal/container"
	"fjacquet/statement-import/internal/ingest"
	"fjacquet/statement-import/internal/models"
)

// ConnectionID is the --connection flag value.
var ConnectionID string

// Cmd represents the feed command
var Cmd = &cobra.Command{
	Use:   "feed [file]",
	Short: "Import a bank-feed batch (JSON) into the ledger",
	Long: `Import transactions delivered by a bank-feed connection.

The input is either a batch object {"connectionId": "...", "transactions": [...]}
or a bare array of transactions together with --connection. Use "-" or no
argument to read from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: feedFunc,
}

func init() {
	Cmd.Flags().StringVarP(&ConnectionID, "connection", "c", "", "Bank connection id (overrides the batch)")
}

func feedFunc(cmd *cobra.Command, args []string) error {
	tenantID, err := root.RequireTenant()
	if err != nil {
		return err
	}
	content, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	batch, err := DecodeBatch(content, ConnectionID)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := root.NewContainer(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return Run(ctx, c, cmd.OutOrStdout(), ingest.FeedRequest{
		TenantID:     tenantID,
		UserID:       root.SharedFlags.UserID,
		ConnectionID: batch.ConnectionID,
	}, batch.Transactions, root.SharedFlags.JSON)
}

// Run imports one feed batch and prints its summary.
func Run(ctx context.Context, c *container.Container, w io.Writer, req ingest.FeedRequest,
	items []models.FeedTransaction, asJSON bool) error {
	summary, err := c.GetIngestService().IngestFeed(ctx, req, items)
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(w, summary)
	}
	common.PrintSummary(w, "feed "+req.ConnectionID, summary)
	return nil
}

// DecodeBatch accepts a FeedBatch object or a bare transaction array. A
// non-empty connectionID replaces the one carried by the batch.
func DecodeBatch(content []byte, connectionID string) (*models.FeedBatch, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty feed input")
	}

	batch := &models.FeedBatch{}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &batch.Transactions); err != nil {
			return nil, fmt.Errorf("invalid feed transactions: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, batch); err != nil {
		return nil, fmt.Errorf("invalid feed batch: %w", err)
	}

	if connectionID != "" {
		batch.ConnectionID = connectionID
	}
	if batch.ConnectionID == "" {
		return nil, fmt.Errorf("a bank connection id is required (--connection or connectionId)")
	}
	return batch, nil
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return content, nil
}
