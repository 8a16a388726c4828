package logging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// RedactingHandler rewrites attributes before handing records to next.
type RedactingHandler struct {
	next slog.Handler
	salt string
}

func NewRedactingHandler(next slog.Handler, salt string) *RedactingHandler {
	return &RedactingHandler{next: next, salt: salt}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.sanitize(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.sanitize(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean), salt: h.salt}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), salt: h.salt}
}

func (h *RedactingHandler) sanitize(a slog.Attr) slog.Attr {
	key := strings.ToLower(strings.TrimSpace(a.Key))
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, ga := range group {
			clean[i] = h.sanitize(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	switch {
	case isRedactKey(key):
		return slog.String(a.Key, redacted)
	case isHashKey(key):
		return slog.String(a.Key, hashValue(h.salt, a.Value.String()))
	case strings.Contains(key, "email"):
		return slog.String(a.Key, maskEmail(a.Value.String()))
	}

	if a.Value.Kind() == slog.KindString && looksLikeJWT(a.Value.String()) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func isRedactKey(key string) bool {
	for _, marker := range []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "refresh"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}

func isHashKey(key string) bool {
	return strings.Contains(key, "user_id") || strings.Contains(key, "session_id")
}

func hashValue(salt, raw string) string {
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if salt != "" {
		_, _ = h.Write([]byte(salt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(s string) string {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return redacted
	}
	return s[:1] + "***" + s[at:]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
