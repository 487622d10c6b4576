package console

import "github.com/atotto/clipboard"

// Package-level so tests can swap the system clipboard out.
var (
	clipboardReadAll  = clipboard.ReadAll
	clipboardWriteAll = clipboard.WriteAll
)

// Clipboard is the system clipboard.
type Clipboard struct{}

// ReadAll returns the clipboard text.
func (Clipboard) ReadAll() (string, error) {
	return clipboardReadAll()
}

// WriteAll replaces the clipboard text.
func (Clipboard) WriteAll(text string) error {
	return clipboardWriteAll(text)
}
