package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fjacquet/statement-import/internal/fileutils"
	"fjacquet/statement-import/internal/models"
)

// reportRow is one line of the outcome report.
type reportRow struct {
	Description   string `csv:"description"`
	Status        string `csv:"status"`
	TransactionID string `csv:"transaction_id"`
	CategoryID    string `csv:"category_id"`
	Message       string `csv:"message"`
	Error         string `csv:"error"`
}

func reportRows(summary *models.Summary) []*reportRow {
	rows := make([]*reportRow, 0, len(summary.Results))
	for _, r := range summary.Results {
		row := &reportRow{
			Description:   r.Description,
			Status:        string(r.Status),
			TransactionID: r.TransactionID,
			Message:       r.Message,
			Error:         r.Error,
		}
		if r.CategoryID != nil {
			row.CategoryID = *r.CategoryID
		}
		rows = append(rows, row)
	}
	return rows
}

// MarshalReport writes the per-item outcomes of summary as CSV to w.
func MarshalReport(w io.Writer, summary *models.Summary) error {
	if summary == nil {
		return fmt.Errorf("cannot write report for nil summary")
	}
	csvWriter := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(reportRows(summary), gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteReport writes the per-item outcomes of summary to path.
func WriteReport(path string, summary *models.Summary) (err error) {
	file, err := fileutils.CreateFile(path)
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing report file: %w", cerr)
		}
	}()
	return MarshalReport(file, summary)
}
