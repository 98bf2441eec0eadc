// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "not JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Setup("lifefork", "1.0.0", FormatJSON, &buf).Info("layer finished", "layer", 3)

	entry := decode(t, &buf)
	assert.Equal(t, "layer finished", entry["msg"])
	assert.Equal(t, "lifefork", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, float64(3), entry["layer"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "level")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	Setup("lifefork", "1.0.0", FormatText, &buf).Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "service=lifefork")
}

func TestSetup_DefaultFormatIsJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup("lifefork", "1.0.0", "", &buf).Info("test message")
	decode(t, &buf)
}

func TestSetup_DebugFilteredByDefault(t *testing.T) {
	var buf bytes.Buffer
	Setup("lifefork", "1.0.0", FormatJSON, &buf).Debug("hidden")
	assert.Empty(t, buf.String())

	SetupLevel("lifefork", "1.0.0", FormatJSON, slog.LevelDebug, &buf).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("lifefork", "1.0.0", FormatJSON, &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced message")

	entry := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_RunContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("lifefork", "1.0.0", FormatJSON, &buf).With("component", "driver")

	ctx := WithScenario(WithRunID(context.Background(), "01J0RUN"), "loan_now")
	logger.InfoContext(ctx, "run started")

	entry := decode(t, &buf)
	assert.Equal(t, "01J0RUN", entry["run_id"])
	assert.Equal(t, "loan_now", entry["scenario"])
	assert.Equal(t, "driver", entry["component"])
	assert.NotContains(t, entry, "trace_id")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "CONFIG_INVALID", oopsErr.Code())
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	SetDefault("lifefork", "2.0.0", FormatJSON)
	assert.NotEqual(t, original, slog.Default())
}
