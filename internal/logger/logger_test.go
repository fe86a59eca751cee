package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInit_DebugEnvControlsLevel(t *testing.T) {
	t.Setenv("DEBUG", "true")
	Init()
	if !Logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG=true should enable debug records")
	}

	t.Setenv("DEBUG", "")
	Init()
	if Logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug records should be off by default")
	}
	if !Logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info records should always be on")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	Init()
	if _, ok := Logger.Handler().(*slog.JSONHandler); !ok {
		t.Errorf("LOG_FORMAT=json should select the JSON handler, got %T", Logger.Handler())
	}

	t.Setenv("LOG_FORMAT", "")
	Init()
	if _, ok := Logger.Handler().(*slog.TextHandler); !ok {
		t.Errorf("default handler should be text, got %T", Logger.Handler())
	}
}
