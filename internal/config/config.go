// Package config provides Viper-based hierarchical configuration.
//
// Values are resolved from defaults, then a statement-import.yaml file, then
// STMT_-prefixed environment variables (STMT_LOG_LEVEL, STMT_DATA_LEDGER_PATH).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "STMT"

// Markup parser strategies.
const (
	OFXStrategyXPath = "xpath"
	OFXStrategyOFXGo = "ofxgo"
)

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type DataConfig struct {
	LedgerPath     string `mapstructure:"ledger_path" yaml:"ledger_path"`
	CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`
}

type OFXConfig struct {
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}

type CSVConfig struct {
	LazyQuotes bool `mapstructure:"lazy_quotes" yaml:"lazy_quotes"`
}

type ParsersConfig struct {
	OFX OFXConfig `mapstructure:"ofx" yaml:"ofx"`
	CSV CSVConfig `mapstructure:"csv" yaml:"csv"`
}

type CategorizationConfig struct {
	// TablesFile overrides the built-in keyword tables when set.
	TablesFile string `mapstructure:"tables_file" yaml:"tables_file"`
}

type IngestConfig struct {
	DefaultStatus string `mapstructure:"default_status" yaml:"default_status"`
	ReportDir     string `mapstructure:"report_dir" yaml:"report_dir"`
}

// Config is the complete application configuration.
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	Data           DataConfig           `mapstructure:"data" yaml:"data"`
	Parsers        ParsersConfig        `mapstructure:"parsers" yaml:"parsers"`
	Categorization CategorizationConfig `mapstructure:"categorization" yaml:"categorization"`
	Ingest         IngestConfig         `mapstructure:"ingest" yaml:"ingest"`
}

// InitializeConfig loads configuration from the default search path.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load resolves configuration. When configFile is empty the file is looked up
// as statement-import.yaml in $HOME/.statement-import, .statement-import and
// the working directory; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("statement-import")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-import")
		v.AddConfigPath(".statement-import")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.ledger_path", "statement-import.db")
	v.SetDefault("data.categories_file", "categories.yaml")

	v.SetDefault("parsers.ofx.strategy", OFXStrategyXPath)
	v.SetDefault("parsers.csv.lazy_quotes", true)

	v.SetDefault("categorization.tables_file", "")

	v.SetDefault("ingest.default_status", "paid")
	v.SetDefault("ingest.report_dir", "")
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}
	switch cfg.Parsers.OFX.Strategy {
	case OFXStrategyXPath, OFXStrategyOFXGo:
	default:
		return fmt.Errorf("invalid parsers.ofx.strategy: %s (must be '%s' or '%s')",
			cfg.Parsers.OFX.Strategy, OFXStrategyXPath, OFXStrategyOFXGo)
	}
	if strings.TrimSpace(cfg.Data.LedgerPath) == "" {
		return fmt.Errorf("data.ledger_path must not be empty")
	}
	if strings.TrimSpace(cfg.Ingest.DefaultStatus) == "" {
		return fmt.Errorf("ingest.default_status must not be empty")
	}
	return nil
}
