package singleton

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/river-now/patterns/kit/colorlog"
	"github.com/river-now/patterns/kit/envutil"
	"github.com/river-now/patterns/kit/lazyshared"
)

const (
	EnvAppName        = "PATTERNS_APP_NAME"
	EnvLogLevel       = "PATTERNS_LOG_LEVEL"
	EnvLogColor       = "PATTERNS_LOG_COLOR"
	EnvPaymentMethod  = "PATTERNS_PAYMENT_METHOD"
	EnvCurrencySymbol = "PATTERNS_CURRENCY_SYMBOL"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the shared process configuration.
type Settings struct {
	AppName        string
	LogLevel       slog.Level
	LogColor       *bool // nil detects a terminal
	PaymentMethod  string
	CurrencySymbol string
}

// NewSettings returns a container that loads Settings on first use from the
// given dotenv files (missing files are skipped) and the environment. A
// failed load is retried on the next Get.
func NewSettings(envFiles ...string) *lazyshared.Fallible[*Settings] {
	files := append([]string(nil), envFiles...)
	return lazyshared.NewFallible(func() (*Settings, error) {
		return LoadSettings(files...)
	}, lazyshared.RetryOnError)
}

// LoadSettings reads Settings and applies the log level and color to every
// colorlog logger in the process.
func LoadSettings(envFiles ...string) (*Settings, error) {
	if err := envutil.LoadFiles(envFiles...); err != nil {
		return nil, err
	}

	s := &Settings{
		AppName:        envutil.GetStr(EnvAppName, "patterns"),
		PaymentMethod:  strings.ToLower(envutil.GetStr(EnvPaymentMethod, "credit_card")),
		CurrencySymbol: envutil.GetStr(EnvCurrencySymbol, "$"),
	}

	level := envutil.GetStr(EnvLogLevel, "info")
	if err := s.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: %s=%q: %w", ErrInvalidSettings, EnvLogLevel, level, err)
	}
	if envutil.GetStr(EnvLogColor, "") != "" {
		on, err := envutil.GetBool(EnvLogColor, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		s.LogColor = &on
	}

	colorlog.SetLevel(s.LogLevel)
	colorlog.SetColor(s.LogColor)

	Log.Info("settings loaded", "app", s.AppName, "level", s.LogLevel, "payment", s.PaymentMethod)
	return s, nil
}
