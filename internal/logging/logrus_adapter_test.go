package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{"debug text", "debug", "text", logrus.DebugLevel},
		{"info json", "info", "json", logrus.InfoLevel},
		{"warn text", "warn", "text", logrus.WarnLevel},
		{"invalid level defaults to info", "loud", "text", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &buf)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			if tt.format == "json" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok)
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok)
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	adapter, ok := NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestLogrusAdapter_LevelsAndFields(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.DebugLevel)

	logger.Debug("row skipped", F(FieldRow, 4))
	logger.Info("batch done", F(FieldCount, 10))
	logger.Warn("date fallback", F(FieldReason, "unparseable"))
	logger.Error("ledger failed", F(FieldTenant, "t1"))

	out := buf.String()
	for _, want := range []string{"row skipped", "row=4", "batch done", "count=10", "date fallback", "ledger failed", "tenant=t1"} {
		assert.Contains(t, out, want)
	}
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.
		WithField(FieldTenant, "acme").
		WithFields(F(FieldParser, "csv"), F(FieldLayout, "inter")).
		WithError(errors.New("boom")).
		Error("parse failed")

	out := buf.String()
	assert.Contains(t, out, "parse failed")
	assert.Contains(t, out, "tenant=acme")
	assert.Contains(t, out, "layout=inter")
	assert.Contains(t, out, "boom")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{F("a", "x"), F("b", 42)})
	assert.Len(t, fields, 2)
	assert.Equal(t, 42, fields["b"])
	assert.Len(t, convertFields(nil), 0)
}

func TestDefaultLogger(t *testing.T) {
	t.Cleanup(func() { SetDefaultLogger(nil) })

	SetDefaultLogger(nil)
	first := GetLogger()
	require.NotNil(t, first)
	assert.Same(t, first, GetLogger())

	mock := NewMockLogger()
	SetDefaultLogger(mock)
	assert.Same(t, Logger(mock), GetLogger())
	assert.Same(t, Logger(mock), OrDefault(nil))

	other := NewMockLogger()
	assert.Same(t, Logger(other), OrDefault(other))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
