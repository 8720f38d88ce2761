// Package dateutils parses the date representations found in bank exports.
package dateutils

import (
	"regexp"
	"strings"
	"time"
)

const (
	DateLayoutBR  = "02/01/2006"
	DateLayoutISO = "2006-01-02"
	DateLayoutDMY = "02-01-2006"
	DateLayoutOFX = "20060102"
)

// StatementLayouts are tried first, in order, for delimited exports.
var StatementLayouts = []string{
	DateLayoutBR,
	DateLayoutISO,
	DateLayoutDMY,
}

// CommonFormats are tried after StatementLayouts.
var CommonFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02.01.2006",
	"2006/01/02",
	"2/1/2006",
	"02/01/06",
}

var spaces = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseStatementDate parses a statement date, trying the statement layouts
// before the generic ones. The result is a calendar date at UTC midnight.
func ParseStatementDate(dateStr string) (time.Time, bool) {
	s := CleanDateString(dateStr)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range StatementLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateToDate(t), true
		}
	}
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateToDate(t), true
		}
	}
	return time.Time{}, false
}

// ParseOFXDate reads the leading YYYYMMDD of an OFX date-time stamp such as
// "20240105120000[-3:BRT]".
func ParseOFXDate(stamp string) (time.Time, bool) {
	s := strings.TrimSpace(stamp)
	if len(s) < len(DateLayoutOFX) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayoutOFX, s[:len(DateLayoutOFX)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

// Today returns the current calendar date at UTC midnight.
func (c Clock) Today() time.Time {
	if c == nil {
		return TruncateToDate(time.Now())
	}
	return TruncateToDate(c())
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// TruncateToDate drops the time of day, keeping the calendar date in UTC.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ToISODate formats t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}
