// Package detect implements the detect command
package detect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/statement-import/cmd/common"
	"fjacquet/statement-import/cmd/root"
	"fjacquet/statement-import/internal/container"
	"fjacquet/statement-import/internal/detector"
	"fjacquet/statement-import/internal/parsererror"
)

// Cmd represents the detect command
var Cmd = &cobra.Command{
	Use:   "detect [files...]",
	Short: "Detect the statement format and parse without writing",
	Long: `Detect the format of each file and run its parser as a dry run.

Nothing is written to the ledger. Useful to check which CSV layout a bank
export is matched to and which rows would be rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: detectFunc,
}

// Report is the dry-run outcome for one file.
type Report struct {
	File       string   `json:"file"`
	Format     string   `json:"format"`
	Parser     string   `json:"parser,omitempty"`
	Layout     string   `json:"layout,omitempty"`
	Candidates int      `json:"candidates"`
	RowErrors  []string `json:"rowErrors"`
	Error      string   `json:"error,omitempty"`
}

func detectFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := root.NewContainer(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	reports := make([]*Report, 0, len(args))
	for _, file := range args {
		reports = append(reports, Inspect(ctx, c, file))
	}
	return Print(cmd.OutOrStdout(), reports, root.SharedFlags.JSON)
}

// Inspect detects and parses one file.
func Inspect(ctx context.Context, c *container.Container, file string) *Report {
	report := &Report{File: file, Format: detector.Unsupported.String(), RowErrors: []string{}}

	content, err := os.ReadFile(file)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	format := detector.Detect(filepath.Base(file), content)
	report.Format = format.String()

	p, err := c.GetParser(format)
	if err != nil {
		report.Error = (&parsererror.UnsupportedFormatError{FileName: filepath.Base(file)}).Error()
		return report
	}
	report.Parser = p.Name()

	result, err := p.Parse(ctx, bytes.NewReader(content))
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Layout = result.Layout
	report.Candidates = len(result.Candidates)
	for _, rowErr := range result.RowErrors {
		report.RowErrors = append(report.RowErrors, rowErr.Error())
	}
	return report
}

// Print writes the reports as text or JSON.
func Print(w io.Writer, reports []*Report, asJSON bool) error {
	if asJSON {
		return common.PrintJSON(w, reports)
	}
	for _, r := range reports {
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "%s: %s: %s\n", r.File, r.Format, r.Error)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %s (%s, layout %s) %d candidates, %d row errors\n",
			r.File, r.Format, r.Parser, r.Layout, r.Candidates, len(r.RowErrors))
		for _, e := range r.RowErrors {
			_, _ = fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return nil
}
