// Package console implements the session's terminal and clipboard on top of
// the process standard streams.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/starford/guia/internal/apperr"
	"github.com/starford/guia/internal/barcode"
	"github.com/starford/guia/internal/session"
)

const clearScreen = "\x1b[2J\x1b[H"

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

var (
	heading = color.New(color.FgGreen, color.Bold)
	warning = color.New(color.FgYellow, color.Bold)
	success = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.FgBlue, color.Bold).SprintFunc()
	exit    = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Console is a session.Prompter bound to a terminal.
type Console struct {
	in  *os.File
	out io.Writer
	fd  int

	saved *term.State
}

// New creates a console reading keys from in and drawing on out.
func New(in *os.File, out io.Writer) *Console {
	return &Console{in: in, out: out, fd: int(in.Fd())}
}

// Clear wipes the screen and moves the cursor to the origin.
func (c *Console) Clear() error {
	_, err := io.WriteString(c.out, clearScreen)
	return err
}

// Show draws the barcode, its summary and the command menu.
func (c *Console) Show(s barcode.Summary) error {
	w := c.out
	success.Fprint(w, "O código de barras atual é: ")
	fmt.Fprintf(w, "%s.\n\n", s.Barcode)

	fmt.Fprintf(w, "%s R$ %s\n", label("(V)alor da guia:"), s.Value)
	due := s.DueDate
	if !s.DueDateValid {
		due += warning.Sprint(" (data inválida)")
	}
	fmt.Fprintf(w, "%s %s\n", label("(D)ata de vencimento:"), due)
	fmt.Fprintf(w, "%s %s\n", label("Núm. da (G)uia:"), s.GuideNumber)
	installment := s.Installment
	if s.SingleInstallment() {
		installment += " (única)"
	}
	fmt.Fprintf(w, "%s %s\n", label("(P)arcela:"), installment)
	fmt.Fprintf(w, "%s %s\n", label("(E)xercício:"), s.FiscalYear)
	fmt.Fprintf(w, "%s %s\n", label("(T)ributo:"), s.Tribute)
	if !s.CheckDigitOK {
		warning.Fprintf(w, "Dígito verificador %s não confere.\n", s.CheckDigit)
	}
	_, err := fmt.Fprintf(w, "%s\n\n", exit("(S)alvar e sair"))
	return err
}

// Say prints one line in the given style.
func (c *Console) Say(style session.Style, text string) {
	switch style {
	case session.StyleWarning:
		warning.Fprintln(c.out, text)
	case session.StyleSuccess:
		success.Fprintln(c.out, text)
	default:
		heading.Fprintln(c.out, text)
	}
}

// ReadKey switches the terminal to raw mode for a single key press and
// returns the key lowercased. Ctrl-C and Ctrl-D report apperr.ErrInterrupted.
func (c *Console) ReadKey() (rune, error) {
	if term.IsTerminal(c.fd) {
		st, err := term.MakeRaw(c.fd)
		if err != nil {
			return 0, fmt.Errorf("console: enable raw mode: %w", err)
		}
		c.saved = st
		defer c.Restore()
	}

	buf := make([]byte, utf8.UTFMax)
	n, err := c.in.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, apperr.ErrInterrupted
		}
		return 0, fmt.Errorf("console: read key: %w", err)
	}
	r, _ := utf8.DecodeRune(buf[:n])
	if r == keyCtrlC || r == keyCtrlD {
		return 0, apperr.ErrInterrupted
	}
	return unicode.ToLower(r), nil
}

// ReadLine reads one line that the user can edit starting from initial.
func (c *Console) ReadLine(prefix, initial string) (string, error) {
	p := promptui.Prompt{
		Label:     prefix,
		Default:   initial,
		AllowEdit: true,
		Templates: &promptui.PromptTemplates{
			Prompt:  "{{ . }} ",
			Valid:   "{{ . }} ",
			Invalid: "{{ . }} ",
			Success: "{{ . }} ",
		},
	}
	text, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", apperr.ErrInterrupted
	}
	if err != nil {
		return "", fmt.Errorf("console: read line: %w", err)
	}
	return text, nil
}

// Restore puts the terminal back in the mode it had before raw input.
func (c *Console) Restore() {
	if c.saved == nil {
		return
	}
	_ = term.Restore(c.fd, c.saved)
	c.saved = nil
}

// RestoreOnSignal restores the terminal and exits when the process is
// interrupted or terminated. The returned func stops listening.
func (c *Console) RestoreOnSignal() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			c.Restore()
			os.Exit(130)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
