// Package categorize handles the categorize command
package categorize

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/statement-import/cmd/common"
	"fjacquet/statement-import/cmd/root"
	"fjacquet/statement-import/internal/categorizer"
	"fjacquet/statement-import/internal/container"
)

// Description is the --description flag value.
var Description string

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a transaction description against a tenant's categories",
	Long: `Categorize a transaction description using the tenant's active categories.

Tiers are tried in order: exact category name, domain keywords, merchant
fallback. Nothing is written to the ledger.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Description, "description", "d", "", "Transaction description to categorize")
	_ = Cmd.MarkFlagRequired("description")
}

// Result is what the categorize command prints.
type Result struct {
	Description string `json:"description"`
	CategoryID  string `json:"categoryId,omitempty"`
	Category    string `json:"category,omitempty"`
	Tier        string `json:"tier,omitempty"`
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
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

	result, err := Run(ctx, c, tenantID, Description)
	if err != nil {
		return err
	}
	return Print(cmd.OutOrStdout(), result, root.SharedFlags.JSON)
}

// Run categorizes one description for a tenant.
func Run(ctx context.Context, c *container.Container, tenantID, description string) (*Result, error) {
	categories, err := c.GetStore().ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result := &Result{Description: description}
	category, match := c.GetCategorizer().Categorize(ctx, description, categories)
	if category != nil {
		result.CategoryID = category.ID
		result.Category = category.Name
		result.Tier = string(match)
	}
	return result, nil
}

// Print writes r as text or JSON.
func Print(w io.Writer, r *Result, asJSON bool) error {
	if asJSON {
		return common.PrintJSON(w, r)
	}
	if r.Tier == string(categorizer.MatchNone) {
		_, err := fmt.Fprintf(w, "%s: uncategorized\n", r.Description)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s (%s) via %s\n", r.Description, r.Category, r.CategoryID, r.Tier)
	return err
}
