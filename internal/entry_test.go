package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/guia/internal/apperr"
	"github.com/starford/guia/internal/barcode"
	"github.com/starford/guia/internal/session"
	"github.com/starford/guia/internal/testutil"
)

type scriptedPrompter struct {
	keys  []rune
	lines []string
}

func (p *scriptedPrompter) Clear() error               { return nil }
func (p *scriptedPrompter) Show(barcode.Summary) error { return nil }
func (p *scriptedPrompter) Say(session.Style, string)  {}

func (p *scriptedPrompter) ReadLine(string, string) (string, error) {
	if len(p.lines) == 0 {
		return "", apperr.ErrInterrupted
	}
	l := p.lines[0]
	p.lines = p.lines[1:]
	return l, nil
}

func (p *scriptedPrompter) ReadKey() (rune, error) {
	if len(p.keys) == 0 {
		return 0, apperr.ErrInterrupted
	}
	k := p.keys[0]
	p.keys = p.keys[1:]
	return k, nil
}

type stubClipboard struct{ text string }

func (c *stubClipboard) ReadAll() (string, error)   { return c.text, nil }
func (c *stubClipboard) WriteAll(text string) error { c.text = text; return nil }

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_EditsAndCopies(t *testing.T) {
	logs := &bytes.Buffer{}
	clip := &stubClipboard{}
	err := Run(context.Background(),
		WithConfig(NewDefaultConfig()),
		WithPrompter(&scriptedPrompter{keys: []rune{'t', 's'}, lines: []string{"9"}}),
		WithClipboard(clip),
		WithRawInput(testutil.Line),
		WithLogOutput(logs),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testutil.Replace(testutil.Digits, 40, "0009"); clip.text != want {
		t.Errorf("clipboard = %q, want %q", clip.text, want)
	}
}

func TestRun_InvalidBarcode(t *testing.T) {
	logs := &bytes.Buffer{}
	err := Run(context.Background(),
		WithConfig(NewDefaultConfig()),
		WithPrompter(&scriptedPrompter{}),
		WithClipboard(&stubClipboard{}),
		WithRawInput(strings.Repeat("x", 55)),
		WithLogOutput(logs),
	)
	if !errors.Is(err, apperr.ErrInvalidBarcode) {
		t.Fatalf("err = %v, want ErrInvalidBarcode", err)
	}
	if !strings.Contains(logs.String(), "decode failed") {
		t.Errorf("decode failure was not logged: %s", logs.String())
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{FormatYAML, "due_date: 15/03/2024"},
		{barcode.FormatDigits, testutil.Digits + "\n"},
		{barcode.FormatLine, testutil.Line + "\n"},
	}
	for _, tt := range tests {
		out := &bytes.Buffer{}
		if err := Describe(out, testutil.Digits, tt.format, WithConfig(NewDefaultConfig()), WithLogOutput(&bytes.Buffer{})); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.format, err)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("%s output = %q, want it to contain %q", tt.format, out.String(), tt.want)
		}
	}

	err := Describe(&bytes.Buffer{}, testutil.Digits, "pdf", WithConfig(NewDefaultConfig()), WithLogOutput(&bytes.Buffer{}))
	if err == nil {
		t.Error("unknown format should fail")
	}
}
