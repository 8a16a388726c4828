// Package logging builds the application's *slog.Logger on top of zap.
//
// Callers only see log/slog. Records pass through a redacting handler before
// reaching zap, so secrets never leave the process in log output.
package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoder and redaction behaviour.
type Config struct {
	// Mode is "production" (JSON) or "development" (console).
	Mode string
	// Level is one of debug, info, warn, error.
	Level string
	// Redact hides secret-bearing attributes and hashes user/session ids.
	Redact bool
	// HashSalt is mixed into hashed identifiers.
	HashSalt string
}

// New returns a slog.Logger backed by zap and a flush function to call on exit.
func New(cfg Config) (*slog.Logger, func(), error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var zcfg zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "prod", "production":
		zcfg = zap.NewProductionConfig()
	default:
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}

	var handler slog.Handler = zapslog.NewHandler(zl.Core(), zapslog.WithCaller(true))
	if cfg.Redact {
		handler = NewRedactingHandler(handler, cfg.HashSalt)
	}

	sync := func() { _ = zl.Sync() }
	return slog.New(handler), sync, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}
