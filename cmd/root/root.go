// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fjacquet/statement-import/internal/config"
	"fjacquet/statement-import/internal/container"
	"fjacquet/statement-import/internal/logging"
)

// CommonFlags are the persistent flags shared by every command.
type CommonFlags struct {
	ConfigFile     string
	TenantID       string
	UserID         string
	LedgerPath     string
	CategoriesFile string
	LogLevel       string
	JSON           bool
}

var (
	// Log is the shared logger for commands.
	Log = logging.GetLogger()

	// AppConfig is resolved before any subcommand runs.
	AppConfig *config.Config

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-import",
		Short: "Import bank statements (OFX, CSV) and bank-feed batches into a transaction ledger.",
		Long: `statement-import reads OFX/QFX and CSV bank statement exports, skips
transactions already in the ledger, assigns categories by keyword and
writes the rest, reporting an outcome for every line.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

// Init registers the persistent flags.
func Init() {
	f := Cmd.PersistentFlags()
	f.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: statement-import.yaml in the search path)")
	f.StringVarP(&SharedFlags.TenantID, "tenant", "t", "", "Tenant the transactions belong to")
	f.StringVarP(&SharedFlags.UserID, "user", "u", "", "User recorded as the importer")
	f.StringVar(&SharedFlags.LedgerPath, "ledger", "", "Ledger database path, or :memory: for a dry run")
	f.StringVar(&SharedFlags.CategoriesFile, "categories", "", "Categories YAML file")
	f.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	f.BoolVar(&SharedFlags.JSON, "json", false, "Print results as JSON")
}

func setup(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.Load(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if err := ApplyFlagOverrides(cfg, SharedFlags); err != nil {
		return err
	}

	AppConfig = cfg
	Log = cfg.NewLogger()
	logging.SetDefaultLogger(Log)
	return nil
}

// ApplyFlagOverrides copies non-empty flag values over the configuration.
func ApplyFlagOverrides(cfg *config.Config, flags CommonFlags) error {
	if flags.LedgerPath != "" {
		cfg.Data.LedgerPath = flags.LedgerPath
	}
	if flags.CategoriesFile != "" {
		cfg.Data.CategoriesFile = flags.CategoriesFile
	}
	if flags.LogLevel != "" {
		if _, err := logrus.ParseLevel(flags.LogLevel); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		cfg.Log.Level = flags.LogLevel
	}
	return nil
}

// RequireTenant returns the --tenant value or an error.
func RequireTenant() (string, error) {
	if SharedFlags.TenantID == "" {
		return "", fmt.Errorf("--tenant is required")
	}
	return SharedFlags.TenantID, nil
}

// NewContainer wires dependencies from the resolved configuration.
func NewContainer(ctx context.Context) (*container.Container, error) {
	cfg := AppConfig
	if cfg == nil {
		cfg = config.Default()
	}
	return container.NewContainer(ctx, cfg, Log)
}
