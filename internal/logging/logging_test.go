package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ogulcanaydogan/quartermaster/internal/config"
	"github.com/ogulcanaydogan/quartermaster/internal/logging"
)

func TestNew_RedactsSensitiveAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LoggingConfig{Level: "info", Format: "json", Redact: true}, &buf)

	logger.Info("sending", "webhook_url", "https://discord.com/api/webhooks/1/secret-token", "army", "First Army")

	out := buf.String()
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, `"webhook_url":"[REDACTED]"`)
	assert.Contains(t, out, `"army":"First Army"`)
}

func TestNew_RedactsURLsInsideErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LoggingConfig{Level: "info", Format: "json", Redact: true}, &buf)

	err := errors.New(`send request: Get "https://sheets.googleapis.com/v4/spreadsheets/sid/values:batchGet?key=SUPERSECRETKEY": timeout`)
	logger.Error("army update failed", "error", err, "detail", "posting to https://discord.com/api/webhooks/1/tok failed")

	out := buf.String()
	assert.NotContains(t, out, "SUPERSECRETKEY")
	assert.NotContains(t, out, "/spreadsheets/sid")
	assert.NotContains(t, out, "webhooks/1/tok")
	assert.Contains(t, out, "https://sheets.googleapis.com")
	assert.Contains(t, out, "https://discord.com failed")
}

func TestRedactURLs(t *testing.T) {
	assert.Equal(t, `Get "http://127.0.0.1:1": refused`, logging.RedactURLs(`Get "http://127.0.0.1:1/v4/x?key=k": refused`))
	assert.Equal(t, "no urls here", logging.RedactURLs("no urls here"))
	assert.Equal(t, "https://example.com", logging.RedactURLs("https://example.com"))
}

func TestNew_NoRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	logger.Info("reading", "sheet_id", "abc123")
	assert.Contains(t, buf.String(), "sheet_id=abc123")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("bogus"))
}

func TestContext(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := logging.NewContext(context.Background(), logger)

	assert.Same(t, logger, logging.FromContext(ctx))
	assert.Same(t, slog.Default(), logging.FromContext(context.Background()))
}
