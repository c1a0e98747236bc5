package util

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNewLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "warn", false)
	logger.Info().Msg("dropped")
	logger.Warn().Str("slot", "cart").Msg("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "cart", line["slot"])
	require.Equal(t, "laptop_store", line["service"])
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	require.Equal(t, "unknown", GetRequestID(ctx))
	require.Equal(t, "abc", GetRequestID(WithRequestID(ctx, "abc")))
}

func TestApplyGlobalLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "trace", false)

	require.Equal(t, zerolog.WarnLevel, ApplyGlobalLevel("warn"))
	logger.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	ApplyGlobalLevel("debug")
	logger.Debug().Msg("kept")
	require.Contains(t, buf.String(), "kept")
}

func TestNewTeeLogger(t *testing.T) {
	var sink bytes.Buffer
	logger := NewTeeLogger("info", true, &sink)
	logger.Info().Str("slot", "orders").Msg("tee")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(sink.Bytes(), &line))
	require.Equal(t, "tee", line["message"])
	require.Equal(t, "orders", line["slot"])
}
