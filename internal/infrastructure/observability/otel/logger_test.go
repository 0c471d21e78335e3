package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"swap-settlement/internal/infrastructure/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestNewLogger(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := NewLogger(tracer)

	assert.NotNil(t, logger)
	assert.Equal(t, tracer, logger.tracer)
	assert.Equal(t, LogLevelInfo, logger.level)
}

func TestLogger_Log(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name      string
		minLevel  LogLevel
		level     LogLevel
		message   string
		fields    map[string]interface{}
		wantWrite bool
	}{
		{
			name:      "Infoレベルのログ",
			minLevel:  LogLevelInfo,
			level:     LogLevelInfo,
			message:   "settlement completed",
			fields:    map[string]interface{}{"order_id": "order-1"},
			wantWrite: true,
		},
		{
			name:      "Debugレベルは閾値未満なので出力しない",
			minLevel:  LogLevelInfo,
			level:     LogLevelDebug,
			message:   "debug message",
			wantWrite: false,
		},
		{
			name:      "Debug閾値ならDebugも出力",
			minLevel:  LogLevelDebug,
			level:     LogLevelDebug,
			message:   "debug message",
			wantWrite: true,
		},
		{
			name:      "Error閾値ではWarnを出力しない",
			minLevel:  LogLevelError,
			level:     LogLevelWarn,
			message:   "warn message",
			wantWrite: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tracer, &buf, tt.minLevel)
			logger.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

			logger.Log(context.Background(), tt.level, tt.message, tt.fields)

			if !tt.wantWrite {
				assert.Zero(t, buf.Len())
				return
			}
			entries := decodeLines(t, &buf)
			require.Len(t, entries, 1)
			assert.Equal(t, string(tt.level), entries[0].Level)
			assert.Equal(t, tt.message, entries[0].Message)
			assert.Equal(t, "2026-01-01T00:00:00Z", entries[0].Timestamp)
		})
	}
}

func TestLogger_LogWithTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	tracer := tp.Tracer("test")

	var buf bytes.Buffer
	logger := NewLoggerWithWriter(tracer, &buf, LogLevelInfo)

	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	logger.Info(ctx, "with trace", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, span.SpanContext().TraceID().String(), entries[0].TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), entries[0].SpanID)
}

func TestLogger_Error(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name      string
		err       error
		fields    map[string]interface{}
		wantError bool
	}{
		{name: "エラーあり、フィールドなし", err: assert.AnError, fields: nil, wantError: true},
		{name: "エラーあり、フィールドあり", err: assert.AnError, fields: map[string]interface{}{"key": "value"}, wantError: true},
		{name: "エラーなし、フィールドあり", err: nil, fields: map[string]interface{}{"key": "value"}, wantError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tracer, &buf, LogLevelInfo)
			logger.Error(context.Background(), "error message", tt.err, tt.fields)

			entries := decodeLines(t, &buf)
			require.Len(t, entries, 1)
			assert.Equal(t, "ERROR", entries[0].Level)
			_, hasError := entries[0].Fields["error"]
			assert.Equal(t, tt.wantError, hasError)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel(" WARN "))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestNewLoggerFromConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settlement.log")
	logger := NewLoggerFromConfig(noop.NewTracerProvider().Tracer("test"), &config.LogConfig{
		Level:      "warn",
		File:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
	})
	defer func() { _ = logger.Close() }()

	assert.Equal(t, LogLevelWarn, logger.level)
	logger.Info(context.Background(), "dropped", nil)
	logger.Warn(context.Background(), "kept", nil)
	require.NoError(t, logger.Close())

	data, err := readFile(path)
	require.NoError(t, err)
	assert.Contains(t, data, "kept")
	assert.NotContains(t, data, "dropped")
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}
