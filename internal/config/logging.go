package config

import (
	"fjacquet/statement-import/internal/logging"
)

// NewLogger builds the application logger from the log section.
func (c *Config) NewLogger() logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}
