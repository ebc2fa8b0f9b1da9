package observability

import (
	"context"
	"testing"

	"geekgalaxy_pos/internal/infrastructure/config"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestNewLogger(t *testing.T) {
	l := NewLogger(&config.Config{AppEnv: "local", LogLevel: "debug"})
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level enabled")
	}
	l = NewLogger(&config.Config{AppEnv: "production", LogLevel: "error"})
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level disabled")
	}
}

func TestSetupTracingSDK_NoEndpoint(t *testing.T) {
	tp, shutdown, err := SetupTracingSDK(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if tp == nil || shutdown == nil {
		t.Fatalf("expected provider and shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil shutdown error, got %v", err)
	}
}
