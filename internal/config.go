package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/guia/internal/barcode"
	"github.com/starford/guia/internal/session"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Session SessionConfig     `yaml:"session"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Session.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile receives the JSON log; empty means stderr.
	LogFile string `yaml:"log_file"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In(slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError)),
	)
}

// SessionConfig tunes the interactive editing session.
//
// UnknownKey decides what a key outside the command alphabet does:
//   - "exit" (default): leave without saving.
//   - "redraw": ignore the key and draw the screen again.
type SessionConfig struct {
	ClipboardPrompt     bool   `yaml:"clipboard_prompt"`
	UnknownKey          string `yaml:"unknown_key"`
	ExportFormat        string `yaml:"export_format"`
	RecomputeCheckDigit bool   `yaml:"recompute_check_digit"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	if c.UnknownKey == "" {
		c.UnknownKey = session.UnknownKeyExit
	}
	if c.ExportFormat == "" {
		c.ExportFormat = barcode.FormatDigits
	}
	formats := make([]any, len(barcode.Formats))
	for i, f := range barcode.Formats {
		formats[i] = f
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.UnknownKey, validation.In(session.UnknownKeyExit, session.UnknownKeyRedraw)),
		validation.Field(&c.ExportFormat, validation.In(formats...)),
	); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Settings converts the configuration into session settings.
func (c *SessionConfig) Settings() session.Settings {
	return session.Settings{
		ClipboardPrompt:     c.ClipboardPrompt,
		UnknownKey:          c.UnknownKey,
		ExportFormat:        c.ExportFormat,
		RecomputeCheckDigit: c.RecomputeCheckDigit,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Session: SessionConfig{
			ClipboardPrompt: true,
			UnknownKey:      session.UnknownKeyExit,
			ExportFormat:    barcode.FormatDigits,
		},
	}
}
