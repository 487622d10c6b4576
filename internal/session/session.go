// Package session drives one barcode through input, decoding, editing and
// export. It owns the decoded fields for the whole session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/starford/guia/internal/apperr"
	"github.com/starford/guia/internal/barcode"
)

// Style selects how a message is rendered.
type Style int

const (
	StyleHeading Style = iota
	StyleWarning
	StyleSuccess
)

// Prompter is the terminal the session talks to.
type Prompter interface {
	// Clear wipes the screen and moves the cursor to the origin.
	Clear() error
	// Show renders the current barcode, its summary and the command menu.
	Show(s barcode.Summary) error
	Say(style Style, text string)
	// ReadKey blocks for one key press and returns it lowercased.
	ReadKey() (rune, error)
	// ReadLine reads a line of text pre-filled with initial.
	ReadLine(prefix, initial string) (string, error)
}

// Clipboard is the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// State is a step of the session.
type State int

const (
	AwaitingInput State = iota
	Decoding
	Editing
	Exporting
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Decoding:
		return "decoding"
	case Editing:
		return "editing"
	case Exporting:
		return "exporting"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Policies for keys outside the command alphabet.
const (
	UnknownKeyExit   = "exit"
	UnknownKeyRedraw = "redraw"
)

const keySave = 's'

// Settings tunes the session flow.
type Settings struct {
	ClipboardPrompt     bool
	UnknownKey          string
	ExportFormat        string
	RecomputeCheckDigit bool
}

// Session holds the state of one edit session.
type Session struct {
	ui       Prompter
	clip     Clipboard
	settings Settings
	logger   *slog.Logger

	state    State
	raw      string
	fields   barcode.Fields
	exported string
	saved    bool
}

// New creates a session waiting for input.
func New(ui Prompter, clip Clipboard, settings Settings, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ui:       ui,
		clip:     clip,
		settings: settings,
		logger:   logger,
		state:    AwaitingInput,
	}
}

// Preload supplies the raw input up front so no prompt is shown for it.
func (s *Session) Preload(raw string) {
	s.raw = barcode.Normalize(raw)
}

// State returns the current step.
func (s *Session) State() State {
	return s.state
}

// Fields returns a copy of the decoded fields.
func (s *Session) Fields() barcode.Fields {
	return s.fields
}

// Exported returns the text copied to the clipboard, if the session saved.
func (s *Session) Exported() (string, bool) {
	return s.exported, s.saved
}

// Run executes the session until it saves, exits or fails. A decode failure
// is returned as apperr.ErrInvalidBarcode; user interrupts as apperr.ErrInterrupted.
func (s *Session) Run(ctx context.Context) error {
	for s.state != Done {
		if err := ctx.Err(); err != nil {
			return err
		}
		prev := s.state

		var err error
		switch s.state {
		case AwaitingInput:
			err = s.awaitInput()
		case Decoding:
			err = s.decode()
		case Editing:
			err = s.edit()
		case Exporting:
			err = s.export()
		}
		if err != nil {
			return err
		}

		if s.state != prev {
			s.logger.Debug("session: state changed",
				slog.String("from", prev.String()),
				slog.String("to", s.state.String()))
		}
	}
	return nil
}

func (s *Session) awaitInput() error {
	if s.raw != "" {
		s.state = Decoding
		return nil
	}

	if s.settings.ClipboardPrompt {
		if candidate, ok := s.clipboardCandidate(); ok {
			accepted, err := s.confirmClipboard()
			if err != nil {
				return err
			}
			if accepted {
				s.raw = candidate
				s.state = Decoding
				return nil
			}
		}
	}

	for {
		s.ui.Say(StyleHeading, "Digite o código de barras:")
		line, err := s.ui.ReadLine(">", "")
		if err != nil {
			return err
		}
		line = barcode.Normalize(line)
		if utf8.RuneCountInString(line) == barcode.RawLength {
			s.raw = line
			s.state = Decoding
			return nil
		}
		s.ui.Say(StyleWarning, "Há um problema com seu código, favor verifique.")
	}
}

func (s *Session) clipboardCandidate() (string, bool) {
	text, err := s.clip.ReadAll()
	if err != nil {
		s.logger.Warn("session: clipboard unavailable", slog.String("error", err.Error()))
		return "", false
	}
	text = barcode.Normalize(text)
	return text, utf8.RuneCountInString(text) == barcode.RawLength
}

func (s *Session) confirmClipboard() (bool, error) {
	for {
		if err := s.ui.Clear(); err != nil {
			return false, err
		}
		s.ui.Say(StyleHeading, "Parece que você possui um código de barras copiado, deseja inserir esse?")
		s.ui.Say(StyleHeading, "(S)im/(N)ão")
		key, err := s.ui.ReadKey()
		if err != nil {
			return false, err
		}
		switch key {
		case 's', ' ':
			return true, nil
		case 'n':
			return false, nil
		}
	}
}

func (s *Session) decode() error {
	f, err := barcode.Decode(s.raw)
	s.raw = ""
	if err != nil {
		s.logger.Error("session: decode failed", slog.String("error", err.Error()))
		return err
	}
	s.fields = f
	s.state = Editing
	s.logger.Info("session: barcode decoded", slog.String("barcode", f.Encode()))
	return nil
}

func (s *Session) edit() error {
	if err := s.ui.Clear(); err != nil {
		return err
	}
	if err := s.ui.Show(barcode.Summarize(s.fields)); err != nil {
		return err
	}

	key, err := s.ui.ReadKey()
	if err != nil {
		return err
	}
	if key == keySave {
		s.state = Exporting
		return nil
	}

	e, ok := barcode.EditorForKey(key)
	if !ok {
		if s.settings.UnknownKey == UnknownKeyRedraw {
			return nil
		}
		s.logger.Info("session: exit without saving", slog.String("key", string(key)))
		s.state = Done
		return nil
	}
	return s.editField(e)
}

// editField retries until the text validates. The fields are only written
// by a successful Apply.
func (s *Session) editField(e barcode.Editor) error {
	s.ui.Say(StyleHeading, e.Label)
	for {
		text, err := s.ui.ReadLine(e.Prefix, e.Current(s.fields))
		if err != nil {
			return err
		}
		err = s.fields.Apply(e, text)
		if errors.Is(err, apperr.ErrInvalidFieldInput) {
			s.logger.Debug("session: field input rejected",
				slog.String("field", e.Name),
				slog.String("reason", barcode.Reason(err)))
			s.ui.Say(StyleWarning, barcode.Reason(err))
			continue
		}
		if err != nil {
			return err
		}
		s.logger.Info("session: field updated",
			slog.String("field", e.Name),
			slog.String("value", s.fields[e.Index]))
		return nil
	}
}

func (s *Session) export() error {
	if s.settings.RecomputeCheckDigit {
		s.fields[barcode.CheckDigit] = s.fields.ExpectedCheckDigit()
	}
	out, err := s.fields.Format(s.settings.ExportFormat)
	if err != nil {
		return err
	}
	s.ui.Say(StyleSuccess, "Código copiado: "+out)
	if err := s.clip.WriteAll(out); err != nil {
		return fmt.Errorf("session: copy to clipboard: %w", err)
	}
	s.exported, s.saved = out, true
	s.state = Done
	s.logger.Info("session: barcode exported", slog.String("format", s.settings.ExportFormat))
	return nil
}
