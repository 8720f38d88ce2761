// Package parsererror defines the error types shared by the statement parsers
// and the ingestion orchestrator.
//
// Errors fall into two classes. Document-level errors (UnsupportedFormatError,
// InvalidFormatError, DataExtractionError) abort a whole upload before any
// ledger write. Row-level errors (RowError, ParseError) affect a single line
// and are reported as an "error" outcome while the batch continues.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrDuplicateTransaction is returned by ledger stores when a write violates
// a uniqueness constraint on the bank transaction identifier.
var ErrDuplicateTransaction = errors.New("transaction already exists")

// UnsupportedFormatError means the upload is neither markup nor delimited text.
type UnsupportedFormatError struct {
	FileName string
}

func (e *UnsupportedFormatError) Error() string {
	if e.FileName == "" {
		return "unsupported format: use an OFX or CSV statement export"
	}
	return fmt.Sprintf("unsupported format for '%s': use an OFX or CSV statement export", e.FileName)
}

// ParseError is a single field that failed coercion.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowError is a delimited row that was not emitted because a field failed
// coercion. Line is 1-based and counts the header row.
type RowError struct {
	Line        int
	Description string
	Err         error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// InvalidFormatError means the input does not conform to the format its
// parser expects (malformed markup, missing header row).
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// DataExtractionError means the format is recognised but required structure
// (a statement block, a usable column layout) could not be located.
type DataExtractionError struct {
	FilePath       string
	FieldName      string
	RawDataSnippet string
	Reason         string
	Msg            string
}

func (e *DataExtractionError) Error() string {
	if e.RawDataSnippet != "" {
		return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s. Reason: %s. Raw data snippet: '%s'",
			e.FilePath, e.FieldName, e.Msg, e.Reason, e.RawDataSnippet)
	}
	return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s. Reason: %s",
		e.FilePath, e.FieldName, e.Msg, e.Reason)
}

// IsFatal reports whether err aborts a whole upload.
func IsFatal(err error) bool {
	var unsupported *UnsupportedFormatError
	var invalid *InvalidFormatError
	var extraction *DataExtractionError
	return errors.As(err, &unsupported) || errors.As(err, &invalid) || errors.As(err, &extraction)
}

// Snippet truncates s to at most n bytes for inclusion in error messages.
func Snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
