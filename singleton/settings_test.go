package singleton

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/river-now/patterns/kit/colorlog"
	"github.com/river-now/patterns/kit/lazyshared"
)

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAppName, EnvLogLevel, EnvLogColor, EnvPaymentMethod, EnvCurrencySymbol} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		colorlog.SetLevel(slog.LevelInfo)
		colorlog.SetColor(nil)
	})
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearSettingsEnv(t)

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() returned error: %v", err)
	}
	want := &Settings{
		AppName:        "patterns",
		LogLevel:       slog.LevelInfo,
		PaymentMethod:  "credit_card",
		CurrencySymbol: "$",
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("LoadSettings() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	clearSettingsEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := EnvAppName + "=shop\n" + EnvLogLevel + "=debug\n" + EnvPaymentMethod + "=PayPal\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCurrencySymbol, "¥")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() returned error: %v", err)
	}
	want := &Settings{
		AppName:        "shop",
		LogLevel:       slog.LevelDebug,
		PaymentMethod:  "paypal",
		CurrencySymbol: "¥",
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("LoadSettings() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSettingsRetriesAfterFix(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv(EnvLogLevel, "loud")

	c := NewSettings()
	_, err := c.Get()
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("Expected ErrInvalidSettings, got %v", err)
	}
	if !errors.Is(err, lazyshared.ErrConstruct) {
		t.Errorf("Expected ErrConstruct, got %v", err)
	}

	t.Setenv(EnvLogLevel, "warn")
	s, err := c.Get()
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if s.LogLevel != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v", s.LogLevel)
	}

	again, _ := c.Get()
	if again != s {
		t.Error("Expected settings to be shared after a successful load")
	}
	if n := c.Attempts(); n != 2 {
		t.Errorf("Expected 2 attempts, got %d", n)
	}
}

func TestSettingsApplyToLoggers(t *testing.T) {
	ctx := context.Background()

	t.Run("Level", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(EnvLogLevel, "debug")

		s, err := NewSettings().Get()
		if err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if s.LogLevel != slog.LevelDebug {
			t.Fatalf("Expected debug level, got %v", s.LogLevel)
		}
		if !Log.Enabled(ctx, slog.LevelDebug) {
			t.Error("Expected package logger to log debug after loading settings")
		}
	})

	t.Run("Color", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(EnvLogColor, "true")

		s, err := LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings() returned error: %v", err)
		}
		if s.LogColor == nil || !*s.LogColor {
			t.Fatalf("Expected LogColor true, got %v", s.LogColor)
		}

		var buf bytes.Buffer
		colorlog.NewWithOptions("x", colorlog.Options{Writer: &buf}).Info("hello")
		if !strings.HasPrefix(buf.String(), "\033[") {
			t.Errorf("Expected colored output, got %q", buf.String())
		}
	})

	t.Run("BadColor", func(t *testing.T) {
		clearSettingsEnv(t)
		t.Setenv(EnvLogColor, "sometimes")

		if _, err := LoadSettings(); !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("Expected ErrInvalidSettings, got %v", err)
		}
	})
}
