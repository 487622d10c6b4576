package barcode

import (
	"fmt"
	"strings"
)

// Editor binds a command key to one editable field.
type Editor struct {
	Key    rune
	Index  int
	Name   string
	Label  string
	Prefix string

	// Current renders the stored value as the pre-filled edit text.
	Current func(f Fields) string
	// Parse validates text and returns the zero-padded value to store.
	Parse func(text string, f Fields) (string, error)
}

// Editors lists the editable fields in menu order.
var Editors = []Editor{
	{
		Key:    'v',
		Index:  Value,
		Name:   "value",
		Label:  "Digite o valor novo com todas as casas decimais.",
		Prefix: "R$",
		Current: func(f Fields) string {
			return DisplayValue(f[Value])
		},
		Parse: func(text string, _ Fields) (string, error) {
			cents, err := ParseValue(text)
			if err != nil {
				return "", err
			}
			return FormatValue(cents), nil
		},
	},
	{
		Key:   'd',
		Index: DueDate,
		Name:  "due_date",
		Label: "Digite a nova data com barras entre os números.",
		Current: func(f Fields) string {
			s, err := DisplayDueDate(f[DueDate])
			if err != nil {
				return ""
			}
			return s
		},
		Parse: func(text string, _ Fields) (string, error) {
			t, err := ParseDueDate(text)
			if err != nil {
				return "", err
			}
			return FormatDueDate(t), nil
		},
	},
	{
		Key:   'g',
		Index: GuideNumber,
		Name:  "guide_number",
		Label: "Digite o novo número da guia:",
		Current: func(f Fields) string {
			return Number(f[GuideNumber])
		},
		Parse: func(text string, _ Fields) (string, error) {
			n, err := ParseGuideNumber(text)
			if err != nil {
				return "", err
			}
			return pad(n, Layout[GuideNumber]), nil
		},
	},
	{
		Key:   'p',
		Index: Installment,
		Name:  "installment",
		Label: "Digite a nova parcela:",
		Current: func(f Fields) string {
			return Number(f[Installment])
		},
		Parse: func(text string, _ Fields) (string, error) {
			n, err := ParseInstallment(text)
			if err != nil {
				return "", err
			}
			return pad(n, Layout[Installment]), nil
		},
	},
	{
		Key:    'e',
		Index:  FiscalYear,
		Name:   "fiscal_year",
		Label:  "Digite o novo exercício:",
		Prefix: "20",
		Current: func(f Fields) string {
			return f[FiscalYear]
		},
		Parse: func(text string, f Fields) (string, error) {
			n, err := ParseFiscalYear(text, f[DueDate])
			if err != nil {
				return "", err
			}
			return pad(n, Layout[FiscalYear]), nil
		},
	},
	{
		Key:   't',
		Index: Tribute,
		Name:  "tribute",
		Label: "Digite o código do novo tributo:",
		Current: func(f Fields) string {
			return Number(f[Tribute])
		},
		Parse: func(text string, _ Fields) (string, error) {
			n, err := ParseTribute(text)
			if err != nil {
				return "", err
			}
			return pad(n, Layout[Tribute]), nil
		},
	},
}

// EditorForKey returns the editor bound to a command key.
func EditorForKey(key rune) (Editor, bool) {
	for _, e := range Editors {
		if e.Key == key {
			return e, true
		}
	}
	return Editor{}, false
}

// EditorByName returns the editor with the given name, e.g. "due_date".
func EditorByName(name string) (Editor, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range Editors {
		if e.Name == name {
			return e, true
		}
	}
	return Editor{}, false
}

// Apply validates text for the editor's field and stores it. f is left
// untouched when validation fails.
func (f *Fields) Apply(e Editor, text string) error {
	v, err := e.Parse(text, *f)
	if err != nil {
		return err
	}
	if len(v) != Layout[e.Index] {
		return fmt.Errorf("%s: formatted value %q has the wrong width", e.Name, v)
	}
	f[e.Index] = v
	return nil
}
