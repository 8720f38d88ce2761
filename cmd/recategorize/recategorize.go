// Package recategorize implements the recategorize command
package recategorize

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/statement-import/cmd/common"
	"fjacquet/statement-import/cmd/root"
	"fjacquet/statement-import/internal/container"
)

// Cmd represents the recategorize command
var Cmd = &cobra.Command{
	Use:   "recategorize",
	Short: "Categorize a tenant's uncategorized ledger transactions",
	Long: `Run the categorization tiers over every uncategorized transaction of a
tenant and store the categories found. Rows that still match nothing are
left uncategorized.`,
	Args: cobra.NoArgs,
	RunE: recategorizeFunc,
}

func recategorizeFunc(cmd *cobra.Command, args []string) error {
	tenantID, err := root.RequireTenant()
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

	return Run(ctx, c, cmd.OutOrStdout(), tenantID, root.SharedFlags.JSON)
}

// Run recategorizes the tenant and prints the counters.
func Run(ctx context.Context, c *container.Container, w io.Writer, tenantID string, asJSON bool) error {
	summary, err := c.GetIngestService().Recategorize(ctx, tenantID)
	if err != nil {
		return err
	}
	if asJSON {
		return common.PrintJSON(w, summary)
	}
	common.PrintRecategorize(w, tenantID, summary)
	return nil
}
