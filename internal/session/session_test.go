package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/guia/internal/apperr"
	"github.com/starford/guia/internal/barcode"
	"github.com/starford/guia/internal/testutil"
)

// fakePrompter replays scripted keys and lines and records what was said.
type fakePrompter struct {
	keys    []rune
	lines   []string
	prompts []string
	said    []string
	shown   []barcode.Summary
	clears  int
}

func (p *fakePrompter) Clear() error {
	p.clears++
	return nil
}

func (p *fakePrompter) Show(s barcode.Summary) error {
	p.shown = append(p.shown, s)
	return nil
}

func (p *fakePrompter) Say(_ Style, text string) {
	p.said = append(p.said, text)
}

func (p *fakePrompter) ReadKey() (rune, error) {
	if len(p.keys) == 0 {
		return 0, apperr.ErrInterrupted
	}
	k := p.keys[0]
	p.keys = p.keys[1:]
	return k, nil
}

func (p *fakePrompter) ReadLine(prefix, initial string) (string, error) {
	p.prompts = append(p.prompts, prefix+"|"+initial)
	if len(p.lines) == 0 {
		return "", apperr.ErrInterrupted
	}
	l := p.lines[0]
	p.lines = p.lines[1:]
	return l, nil
}

func (p *fakePrompter) saidCount(text string) int {
	n := 0
	for _, s := range p.said {
		if s == text {
			n++
		}
	}
	return n
}

type memClipboard struct {
	content string
	readErr error
	writes  int
}

func (c *memClipboard) ReadAll() (string, error) {
	return c.content, c.readErr
}

func (c *memClipboard) WriteAll(text string) error {
	c.content = text
	c.writes++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultSettings() Settings {
	return Settings{
		ClipboardPrompt: true,
		UnknownKey:      UnknownKeyExit,
		ExportFormat:    barcode.FormatDigits,
	}
}

func run(t *testing.T, p *fakePrompter, clip *memClipboard, settings Settings) (*Session, error) {
	t.Helper()
	s := New(p, clip, settings, discardLogger())
	return s, s.Run(context.Background())
}

func TestSession_EditTributeAndSave(t *testing.T) {
	p := &fakePrompter{
		lines: []string{testutil.Line, "4321"},
		keys:  []rune{'t', 's'},
	}
	clip := &memClipboard{}
	s, err := run(t, p, clip, defaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := testutil.Replace(testutil.Digits, 40, "4321")
	if clip.content != want {
		t.Errorf("clipboard = %q, want %q", clip.content, want)
	}
	if got, ok := s.Exported(); !ok || got != want {
		t.Errorf("exported = %q, %v", got, ok)
	}
	if s.State() != Done {
		t.Errorf("state = %v, want done", s.State())
	}
	if p.prompts[1] != "|1234" {
		t.Errorf("tribute prompt = %q, want pre-filled 1234", p.prompts[1])
	}
	if len(p.shown) != 2 || p.shown[1].Tribute != "4321" {
		t.Errorf("summary was not redrawn after the edit: %+v", p.shown)
	}
}

func TestSession_ClipboardCandidateAccepted(t *testing.T) {
	p := &fakePrompter{keys: []rune{'x', 's', 'q'}}
	clip := &memClipboard{content: testutil.Line + "\n"}
	s, err := run(t, p, clip, defaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.prompts) != 0 {
		t.Errorf("keyboard entry should be skipped, got prompts %v", p.prompts)
	}
	if s.Fields().Encode() != testutil.Digits {
		t.Errorf("fields = %q", s.Fields().Encode())
	}
	if _, saved := s.Exported(); saved || clip.writes != 0 {
		t.Error("unknown key should exit without saving")
	}
}

func TestSession_ClipboardCandidateDeclined(t *testing.T) {
	p := &fakePrompter{
		keys:  []rune{'n', 'q'},
		lines: []string{"123", testutil.Spaced(testutil.Digits)},
	}
	clip := &memClipboard{content: testutil.Line}
	s, err := run(t, p, clip, defaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := p.saidCount("Há um problema com seu código, favor verifique."); n != 1 {
		t.Errorf("short input warnings = %d, want 1", n)
	}
	if s.Fields().Encode() != testutil.Digits {
		t.Errorf("fields = %q", s.Fields().Encode())
	}
}

func TestSession_ClipboardPromptDisabled(t *testing.T) {
	p := &fakePrompter{
		keys:  []rune{'q'},
		lines: []string{testutil.Line},
	}
	clip := &memClipboard{content: testutil.Line}
	settings := defaultSettings()
	settings.ClipboardPrompt = false
	if _, err := run(t, p, clip, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.keys) != 0 || len(p.prompts) != 1 {
		t.Errorf("expected one line prompt and the exit key, got prompts %v keys left %v", p.prompts, p.keys)
	}
}

func TestSession_ClipboardUnavailable(t *testing.T) {
	p := &fakePrompter{
		keys:  []rune{'q'},
		lines: []string{testutil.Line},
	}
	clip := &memClipboard{readErr: errors.New("no clipboard utility")}
	if _, err := run(t, p, clip, defaultSettings()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSession_InvalidBarcodeIsFatal(t *testing.T) {
	p := &fakePrompter{
		lines: []string{"8163000000X 6 01500123202 2 40315000123 4 40001241234 4"},
		keys:  []rune{'s'},
	}
	clip := &memClipboard{}
	s, err := run(t, p, clip, defaultSettings())
	if !errors.Is(err, apperr.ErrInvalidBarcode) {
		t.Fatalf("err = %v, want ErrInvalidBarcode", err)
	}
	if len(p.shown) != 0 || clip.writes != 0 {
		t.Error("nothing should be shown or exported after a decode failure")
	}
	if s.State() != Decoding {
		t.Errorf("state = %v, want decoding", s.State())
	}
}

func TestSession_InstallmentRetries(t *testing.T) {
	p := &fakePrompter{
		keys:  []rune{'p', 's'},
		lines: []string{"0", "47", "46"},
	}
	clip := &memClipboard{}
	s := New(p, clip, defaultSettings(), discardLogger())
	s.Preload(testutil.Line)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := p.saidCount("invalid installment count"); n != 2 {
		t.Errorf("installment warnings = %d, want 2", n)
	}
	if got := s.Fields()[barcode.Installment]; got != "046" {
		t.Errorf("installment = %q, want %q", got, "046")
	}
	for i, prompt := range p.prompts {
		if prompt != "|0" {
			t.Errorf("prompt %d = %q, state should stay unchanged between retries", i, prompt)
		}
	}
}

func TestSession_FiscalYearCrossCheck(t *testing.T) {
	p := &fakePrompter{
		keys:  []rune{'e', 's'},
		lines: []string{"19", "20"},
	}
	clip := &memClipboard{}
	s := New(p, clip, defaultSettings(), discardLogger())
	s.Preload(testutil.Line)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := p.saidCount("year differs from due date's year"); n != 1 {
		t.Errorf("fiscal year warnings = %d, want 1", n)
	}
	if p.prompts[0] != "20|24" {
		t.Errorf("prompt = %q, want prefix 20 and pre-filled 24", p.prompts[0])
	}
	want := testutil.Replace(testutil.Digits, 38, "20")
	if clip.content != want {
		t.Errorf("clipboard = %q, want %q", clip.content, want)
	}
}

func TestSession_ValueAndDueDate(t *testing.T) {
	p := &fakePrompter{
		keys:  []rune{'v', 'd', 'g', 's'},
		lines: []string{"123,45", "31/02/2025", "01/04/2025", "7654321"},
	}
	clip := &memClipboard{}
	s := New(p, clip, defaultSettings(), discardLogger())
	s.Preload(testutil.Line)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := s.Fields()
	if f[barcode.Value] != "00000012345" {
		t.Errorf("value = %q", f[barcode.Value])
	}
	if f[barcode.DueDate] != "20250401" {
		t.Errorf("due date = %q", f[barcode.DueDate])
	}
	if f[barcode.GuideNumber] != "7654321" {
		t.Errorf("guide number = %q", f[barcode.GuideNumber])
	}
	if p.prompts[0] != "R$|1,50" {
		t.Errorf("value prompt = %q", p.prompts[0])
	}
	if p.prompts[1] != "|15/03/2024" {
		t.Errorf("date prompt = %q", p.prompts[1])
	}
	if last := p.shown[len(p.shown)-1]; last.Value != "123,45" || last.DueDate != "01/04/2025" {
		t.Errorf("summary = %+v", last)
	}
}

func TestSession_UnknownKeyPolicies(t *testing.T) {
	t.Run("exit", func(t *testing.T) {
		p := &fakePrompter{keys: []rune{'x', 's'}}
		clip := &memClipboard{}
		s := New(p, clip, defaultSettings(), discardLogger())
		s.Preload(testutil.Line)
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, saved := s.Exported(); saved {
			t.Error("should exit without saving")
		}
		if len(p.keys) != 1 {
			t.Errorf("remaining keys = %v, want the unread save key", p.keys)
		}
	})

	t.Run("redraw", func(t *testing.T) {
		p := &fakePrompter{keys: []rune{'x', '\x1b', 's'}}
		clip := &memClipboard{}
		settings := defaultSettings()
		settings.UnknownKey = UnknownKeyRedraw
		s := New(p, clip, settings, discardLogger())
		s.Preload(testutil.Line)
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, saved := s.Exported(); !saved || got != testutil.Digits {
			t.Errorf("exported = %q, %v", got, saved)
		}
		if len(p.shown) != 3 {
			t.Errorf("redraws = %d, want 3", len(p.shown))
		}
	})
}

func TestSession_InterruptDuringEdit(t *testing.T) {
	p := &fakePrompter{keys: []rune{'v'}}
	clip := &memClipboard{}
	s := New(p, clip, defaultSettings(), discardLogger())
	s.Preload(testutil.Line)
	err := s.Run(context.Background())
	if !errors.Is(err, apperr.ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	if s.Fields().Encode() != testutil.Digits {
		t.Error("interrupted edit must not change fields")
	}
	if clip.writes != 0 {
		t.Error("interrupted session must not export")
	}
}

func TestSession_ExportFormats(t *testing.T) {
	tests := []struct {
		format    string
		recompute bool
		edit      string
		want      string
	}{
		{barcode.FormatDebug, false, "", `["816", "3", "00000000150", "0123", "20240315", "0001234", "000", "1", "24", "1234"]`},
		{barcode.FormatLine, false, "", testutil.Line},
		{barcode.FormatDigits, false, "2,00", testutil.Replace(testutil.Digits, 4, "00000000200")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p := &fakePrompter{keys: []rune{'s'}}
			if tt.edit != "" {
				p.keys = []rune{'v', 's'}
				p.lines = []string{tt.edit}
			}
			clip := &memClipboard{}
			settings := defaultSettings()
			settings.ExportFormat = tt.format
			settings.RecomputeCheckDigit = tt.recompute
			s := New(p, clip, settings, discardLogger())
			s.Preload(testutil.Line)
			if err := s.Run(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if clip.content != tt.want {
				t.Errorf("clipboard = %q, want %q", clip.content, tt.want)
			}
		})
	}
}

func TestSession_RecomputeCheckDigit(t *testing.T) {
	p := &fakePrompter{keys: []rune{'v', 's'}, lines: []string{"9,99"}}
	clip := &memClipboard{}
	settings := defaultSettings()
	settings.RecomputeCheckDigit = true
	s := New(p, clip, settings, discardLogger())
	s.Preload(testutil.Line)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := barcode.Split(clip.content)
	if err != nil {
		t.Fatalf("exported barcode does not split: %v", err)
	}
	if !f.CheckDigitOK() {
		t.Errorf("check digit %s should have been refreshed to %s", f[barcode.CheckDigit], f.ExpectedCheckDigit())
	}
	if f[barcode.CheckDigit] != "8" {
		t.Errorf("check digit = %q, want %q", f[barcode.CheckDigit], "8")
	}
}

func TestSession_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(&fakePrompter{}, &memClipboard{}, defaultSettings(), discardLogger())
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestState_String(t *testing.T) {
	if Editing.String() != "editing" || State(42).String() != "state(42)" {
		t.Errorf("unexpected state names: %s %s", Editing, State(42))
	}
}
