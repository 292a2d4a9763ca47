package logging

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ogulcanaydogan/quartermaster/internal/config"
)

const redacted = "[REDACTED]"

// sensitiveKeys are attribute names whose values never reach the log.
var sensitiveKeys = map[string]bool{
	"webhook_url":  true,
	"url":          true,
	"sheet_id":     true,
	"access_token": true,
	"api_key":      true,
	"secret":       true,
	"token":        true,
}

// urlTail matches the path and query of an http(s) URL embedded in text.
var urlTail = regexp.MustCompile(`(https?://[^/\s"'?]+)[/?][^\s"']*`)

// New returns a logger configured from cfg, writing to w.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Redact {
		opts.ReplaceAttr = redact
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}
	switch v := a.Value.Any().(type) {
	case string:
		if strings.Contains(v, "://") {
			return slog.String(a.Key, RedactURLs(v))
		}
	case error:
		return slog.String(a.Key, RedactURLs(v.Error()))
	}
	return a
}

// RedactURLs cuts every http(s) URL in s down to scheme and host.
func RedactURLs(s string) string {
	return urlTail.ReplaceAllString(s, "$1")
}

type ctxKey struct{}

// NewContext returns a copy of ctx with the logger stored.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves a logger from ctx or returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
