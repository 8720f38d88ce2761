package parser

import (
	"time"

	"fjacquet/statement-import/internal/dateutils"
	"fjacquet/statement-import/internal/logging"
)

// BaseParser carries the dependencies every parser needs. Parsers embed it.
type BaseParser struct {
	name   string
	logger logging.Logger
	clock  dateutils.Clock
}

// NewBaseParser returns a BaseParser. A nil logger selects the default one.
func NewBaseParser(name string, logger logging.Logger) BaseParser {
	return BaseParser{
		name:   name,
		logger: logging.OrDefault(logger).WithField(logging.FieldParser, name),
	}
}

// Name identifies the parser in logs and results.
func (b *BaseParser) Name() string {
	return b.name
}

// SetLogger replaces the logger. Nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger.WithField(logging.FieldParser, b.name)
	}
}

// GetLogger returns the parser's logger.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// SetClock replaces the clock used for the date fallback.
func (b *BaseParser) SetClock(clock dateutils.Clock) {
	b.clock = clock
}

// Today is the fallback date for rows whose date cannot be read.
func (b *BaseParser) Today() time.Time {
	return b.clock.Today()
}
