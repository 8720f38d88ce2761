// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"fjacquet/statement-import/internal/models"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	bold   = color.New(color.Bold)
)

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintSummary writes an ingestion summary, one line per statement line,
// followed by the totals.
func PrintSummary(w io.Writer, title string, summary *models.Summary) {
	_, _ = bold.Fprintf(w, "%s\n", title)
	for _, r := range summary.Results {
		switch r.Status {
		case models.StatusImported:
			category := "-"
			if r.CategoryID != nil {
				category = *r.CategoryID
			}
			_, _ = green.Fprintf(w, "  + %s", r.Description)
			_, _ = fmt.Fprintf(w, " [%s] %s\n", category, r.TransactionID)
		case models.StatusDuplicate:
			_, _ = yellow.Fprintf(w, "  = %s", r.Description)
			_, _ = fmt.Fprintf(w, " (%s)\n", r.Message)
		default:
			_, _ = red.Fprintf(w, "  ! %s", r.Description)
			_, _ = fmt.Fprintf(w, ": %s\n", r.Error)
		}
	}
	_, _ = fmt.Fprintf(w, "imported %d, duplicates %d, errors %d, categorized %d, total %d\n",
		summary.Imported, summary.Duplicates, summary.Errors, summary.Categorized, summary.Total)
}

// PrintRecategorize writes the counters of a recategorization pass.
func PrintRecategorize(w io.Writer, tenantID string, summary *models.RecategorizeSummary) {
	_, _ = bold.Fprintf(w, "Recategorized %s\n", tenantID)
	_, _ = fmt.Fprintf(w, "scanned %d, categorized %d, failed %d\n",
		summary.Scanned, summary.Categorized, summary.Failed)
}
