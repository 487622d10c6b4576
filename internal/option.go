package internal

import (
	"io"

	"github.com/starford/guia/internal/session"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	prompter  session.Prompter
	clipboard session.Clipboard
	raw       string
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPrompter replaces the terminal used by the session.
func WithPrompter(p session.Prompter) Option {
	return func(a *application) {
		a.prompter = p
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(c session.Clipboard) Option {
	return func(a *application) {
		a.clipboard = c
	}
}

// WithRawInput starts the session with the given barcode instead of asking for one.
func WithRawInput(raw string) Option {
	return func(a *application) {
		a.raw = raw
	}
}

// WithLogOutput sends the log to w instead of the configured destination.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
