// Package internal wires configuration, logging and collaborators into the
// guia commands.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/guia/internal/apperr"
	"github.com/starford/guia/internal/barcode"
	"github.com/starford/guia/internal/console"
	"github.com/starford/guia/internal/mcpserver"
	"github.com/starford/guia/internal/session"
)

// FormatYAML prints the decoded summary as YAML in Describe.
const FormatYAML = "yaml"

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger builds the JSON logger. The returned func closes the log file.
func (a *application) logger() (*slog.Logger, func(), error) {
	cfg := a.config.App
	out, closeFn := a.logOutput, func() {}
	if out == nil {
		out = os.Stderr
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("open log file: %w", err)
			}
			out, closeFn = f, func() { _ = f.Close() }
		}
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	return logger, closeFn, nil
}

// Run starts an interactive editing session.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, closeLog, err := app.logger()
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.Bool("clipboard_prompt", cfg.Session.ClipboardPrompt),
		slog.String("unknown_key", cfg.Session.UnknownKey),
		slog.String("export_format", cfg.Session.ExportFormat),
		slog.String("log_level", cfg.App.LogLevel.String()))

	prompter := app.prompter
	if prompter == nil {
		con := console.New(os.Stdin, os.Stdout)
		defer con.Restore()
		stop := con.RestoreOnSignal()
		defer stop()
		prompter = con
	}
	clip := app.clipboard
	if clip == nil {
		clip = console.Clipboard{}
	}

	s := session.New(prompter, clip, cfg.Session.Settings(), logger)
	if app.raw != "" {
		s.Preload(app.raw)
	}
	if err := s.Run(ctx); err != nil {
		if errors.Is(err, apperr.ErrInterrupted) {
			logger.Info("Session interrupted", slog.String("state", s.State().String()))
		}
		return err
	}

	if out, saved := s.Exported(); saved {
		logger.Info("Session saved", slog.String("barcode", out))
	} else {
		logger.Info("Session closed without saving")
	}
	return nil
}

// Describe decodes input, either the typed line or the 44 digits, and writes
// it to w. format is "yaml" for the summary or one of the export formats.
func Describe(w io.Writer, input, format string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger, closeLog, err := app.logger()
	if err != nil {
		return err
	}
	defer closeLog()

	f, err := barcode.Parse(input)
	if err != nil {
		logger.Error("Decode failed", slog.String("error", err.Error()))
		return err
	}

	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(barcode.Summarize(f)); err != nil {
			return err
		}
		return enc.Close()
	}
	out, err := f.Format(format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// ServeMCP serves the barcode tools over stdio until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger, closeLog, err := app.logger()
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("MCP server starting", slog.String("transport", "stdio"))
	srv := mcpserver.New(logger)
	if err := srv.ServeStdio(ctx); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
