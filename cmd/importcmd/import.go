// Package importcmd implements the import command
package importcmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/statement-import/cmd/common"
	"fjacquet/statement-import/cmd/root"
	"fjacquet/statement-import/internal/container"
	"fjacquet/statement-import/internal/fileutils"
	"fjacquet/statement-import/internal/ingest"
	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/scanner"
)

// ReportFlag enables the per-file CSV outcome report.
var ReportFlag bool

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import [paths...]",
	Short: "Import statement files into the ledger",
	Long: `Import one or more OFX/QFX or CSV statement files for a tenant. A directory
argument imports every statement file below it.

Every statement line is reported as imported, duplicate or error. A file
that cannot be read as a statement writes nothing.

Example:
  statement-import import -t acme extrato.csv fatura.ofx`,
	Args: cobra.MinimumNArgs(1),
	RunE: importFunc,
}

func init() {
	Cmd.Flags().BoolVar(&ReportFlag, "report", false, "Write a CSV outcome report next to each file (or into ingest.report_dir)")
}

func importFunc(cmd *cobra.Command, args []string) error {
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

	opts := Options{
		TenantID: tenantID,
		UserID:   root.SharedFlags.UserID,
		JSON:     root.SharedFlags.JSON,
		Report:   ReportFlag,
	}
	return Run(ctx, c, cmd.OutOrStdout(), opts, args)
}

// Options controls one import run.
type Options struct {
	TenantID string
	UserID   string
	JSON     bool
	Report   bool
}

// Run imports each file in order; directories contribute their statement
// files. A document-level failure on one file is reported and the remaining
// files are still imported; the returned error names how many files failed.
func Run(ctx context.Context, c *container.Container, w io.Writer, opts Options, paths []string) error {
	log := c.GetLogger()
	svc := c.GetIngestService()

	files, failed := expand(scanner.NewStatementScanner(log), w, opts, paths)
	total := len(files) + failed
	summaries := make(map[string]*models.Summary, len(files))
	for _, file := range files {
		summary, err := importFile(ctx, svc, opts, file)
		if err != nil {
			failed++
			if summary != nil {
				// Cancelled mid-file: the rows already written stay in the ledger.
				summaries[file] = summary
				if !opts.JSON {
					common.PrintSummary(w, file, summary)
				}
			}
			log.WithError(err).Error("Import failed", logging.F(logging.FieldFile, file))
			if !opts.JSON {
				_, _ = fmt.Fprintf(w, "%s: %v\n", file, err)
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		summaries[file] = summary
		if opts.Report {
			reportPath := ReportPath(c.GetConfig().Ingest.ReportDir, file)
			if err := ingest.WriteReport(reportPath, summary); err != nil {
				log.WithError(err).Warn("Failed to write report", logging.F(logging.FieldFile, reportPath))
			}
		}
		if !opts.JSON {
			common.PrintSummary(w, file, summary)
		}
	}

	if opts.JSON {
		if err := common.PrintJSON(w, summaries); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, total)
	}
	return nil
}

// expand resolves paths one at a time so a bad path fails alone.
func expand(s *scanner.StatementScanner, w io.Writer, opts Options, paths []string) ([]string, int) {
	var files []string
	failed := 0
	for _, p := range paths {
		found, err := s.ScanPaths([]string{p})
		if err != nil {
			failed++
			if !opts.JSON {
				_, _ = fmt.Fprintf(w, "%s: %v\n", p, err)
			}
			continue
		}
		files = append(files, found...)
	}
	return files, failed
}

func importFile(ctx context.Context, svc *ingest.Service, opts Options, file string) (*models.Summary, error) {
	content, err := fileutils.ReadStatement(file)
	if err != nil {
		return nil, err
	}
	return svc.IngestFile(ctx, ingest.Request{
		TenantID: opts.TenantID,
		UserID:   opts.UserID,
		FileName: filepath.Base(file),
	}, content)
}

// ReportPath is <dir>/<name>.report.csv, with dir defaulting to the
// directory of the statement.
func ReportPath(reportDir, file string) string {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + scanner.ReportSuffix
	if reportDir == "" {
		reportDir = filepath.Dir(file)
	}
	return filepath.Join(reportDir, name)
}
