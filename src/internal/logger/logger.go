package logger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

type Fields map[string]any

const masked = "******"

var sensitiveKeys = map[string]struct{}{
	"clientsecret":  {},
	"client_secret": {},
	"secret":        {},
	"accesstoken":   {},
	"access_token":  {},
	"token":         {},
	"authorization": {},
	"otp":           {},
	"password":      {},
	"p12password":   {},
	"apikey":        {},
	"api_key":       {},
}

// Setup installs the process-wide handler. format is "json" or "text".
func Setup(w io.Writer, format string, verbose bool) {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func Debug(message string, fields Fields) {
	log(slog.LevelDebug, message, fields)
}

func Info(message string, fields Fields) {
	log(slog.LevelInfo, message, fields)
}

func Warn(message string, fields Fields) {
	log(slog.LevelWarn, message, fields)
}

func Error(message string, err error, fields Fields) {
	base := Fields{}
	for k, v := range fields {
		base[k] = v
	}
	if err != nil {
		base["error"] = err.Error()
	}

	log(slog.LevelError, message, base)
}

func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func log(level slog.Level, message string, fields Fields) {
	l := slog.Default()
	if !l.Enabled(context.Background(), level) {
		return
	}
	l.LogAttrs(context.Background(), level, message, attrs(fields)...)
}

func attrs(fields Fields) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}

	sanitized, ok := SanitizePayload(fields).(map[string]any)
	if !ok {
		return []slog.Attr{slog.String("fields", "<unavailable>")}
	}

	keys := make([]string, 0, len(sanitized))
	for k := range sanitized {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, sanitized[k]))
	}
	return out
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = masked
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
