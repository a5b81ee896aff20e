package logger

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/raaihank/data-laundry/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("bad level", func(t *testing.T) {
		if _, err := New(config.LoggingConfig{Level: "loud", Format: "json"}); err == nil {
			t.Error("Expected error for unknown level")
		}
	})

	t.Run("file output", func(t *testing.T) {
		cfg := config.LoggingConfig{Level: "info", Format: "console"}
		cfg.File.Enabled = true
		cfg.File.Path = filepath.Join(t.TempDir(), "nested", "laundry.log")
		l, err := New(cfg)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		l.WithJobID("job-1").WithComponent("test").Info("hello")
	})
}

func TestSetLevel(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	child := l.WithComponent("api")

	if child.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug to be disabled at info level")
	}
	if err := l.SetLevel("debug"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !child.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected derived logger to follow the new level")
	}
	if err := l.SetLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

type upperRedactor struct{}

func (upperRedactor) Mask(s string) string { return strings.ToUpper(s) }

func TestLogRequestDoesNotPanic(t *testing.T) {
	l := Nop()
	l.LogRequest("GET", "/api/v1/jobs", "q=abc", map[string][]string{"Authorization": {"x"}}, 200, 0, upperRedactor{})
	l.LogRequest("GET", "/health", "", nil, 200, 0, nil)
	l.LogJob("upload.csv", 10, 3, 0, nil)
}

func TestIsSensitiveHeader(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"Authorization", true},
		{"X-Api-Key", true},
		{"Cookie", true},
		{"Content-Type", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := isSensitiveHeader(tt.header); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
