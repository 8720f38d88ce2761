package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"05/01/2024", date(2024, time.January, 5)},
		{"2024-01-05", date(2024, time.January, 5)},
		{"05-01-2024", date(2024, time.January, 5)},
		{" 31/12/2023 ", date(2023, time.December, 31)},
		{"2024-03-10T14:30:00-03:00", date(2024, time.March, 10)},
		{"10.03.2024", date(2024, time.March, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStatementDate(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseStatementDate_DayFirst(t *testing.T) {
	got, ok := ParseStatementDate("03/04/2024")
	require.True(t, ok)
	assert.Equal(t, time.April, got.Month())
	assert.Equal(t, 3, got.Day())
}

func TestParseStatementDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "ontem", "32/13/2024", "2024"} {
		_, ok := ParseStatementDate(input)
		assert.False(t, ok, input)
	}
}

func TestParseOFXDate(t *testing.T) {
	got, ok := ParseOFXDate("20240105120000[-3:BRT]")
	require.True(t, ok)
	assert.Equal(t, date(2024, time.January, 5), got)

	got, ok = ParseOFXDate("20240229")
	require.True(t, ok)
	assert.Equal(t, date(2024, time.February, 29), got)

	_, ok = ParseOFXDate("2024")
	assert.False(t, ok)
	_, ok = ParseOFXDate("2024XX01")
	assert.False(t, ok)
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, date(2024, time.June, 1), FixedClock(fixed).Today())

	var c Clock
	today := c.Today()
	assert.False(t, today.IsZero())
	assert.Equal(t, time.UTC, today.Location())
}

func TestSameDateAndISO(t *testing.T) {
	a := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 5, 22, 0, 0, 0, time.UTC)
	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, b.AddDate(0, 0, 1)))
	assert.Equal(t, "2024-01-05", ToISODate(a))
}
