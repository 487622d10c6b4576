// Package barcode decodes, edits and re-encodes the 44-digit municipal
// collection barcode (segment "816").
package barcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"

	"github.com/starford/guia/internal/apperr"
)

// Field indexes within Fields.
const (
	Segment = iota
	CheckDigit
	Value
	Municipality
	DueDate
	GuideNumber
	Installment
	LayoutCode
	FiscalYear
	Tribute

	FieldCount
)

const (
	// RawLength is the size of the typed line: four 11-digit blocks, each
	// followed by a separator, its block check digit and another separator.
	RawLength = 55
	// DigitsLength is the size of the canonical barcode.
	DigitsLength = 44

	blockWidth = 11
	padWidth   = 3
)

// Layout holds the width of every field, in order.
//
//	idx  width  content
//	0    3      "816"
//	1    1      general check digit
//	2    11     value in cents
//	3    4      municipal code (Febraban)
//	4    8      due date, YYYYMMDD
//	5    7      guide number
//	6    3      installment, "000" is a single installment
//	7    1      layout code
//	8    2      fiscal year, last two digits
//	9    4      tribute code
var Layout = [FieldCount]int{3, 1, 11, 4, 8, 7, 3, 1, 2, 4}

// Names holds the machine name of every field, in order.
var Names = [FieldCount]string{
	"segment", "check_digit", "value", "municipality", "due_date",
	"guide_number", "installment", "layout_code", "fiscal_year", "tribute",
}

var digitsRe = regexp.MustCompile(`^[0-9]+$`)

// Fields is a decoded barcode. Every entry has exactly the width declared in Layout.
type Fields [FieldCount]string

// Normalize trims surrounding whitespace and folds full-width digits to ASCII.
func Normalize(raw string) string {
	folded, _, err := transform.String(width.Fold, raw)
	if err != nil {
		folded = raw
	}
	return strings.TrimSpace(folded)
}

// Clean strips the separator and check-digit groups from a typed line.
// While input remains, an even remaining length drops the next 3 characters
// and an odd one keeps the next 11. Chunks are clamped to what is left.
func Clean(raw string) string {
	rest := []rune(raw)
	var b strings.Builder
	for len(rest) > 0 {
		keep := len(rest)%2 != 0
		n := padWidth
		if keep {
			n = blockWidth
		}
		n = min(n, len(rest))
		if keep {
			b.WriteString(string(rest[:n]))
		}
		rest = rest[n:]
	}
	return b.String()
}

// Decode turns the 55-character typed line into Fields.
func Decode(raw string) (Fields, error) {
	if n := utf8.RuneCountInString(raw); n != RawLength {
		return Fields{}, fmt.Errorf("%w: raw input has %d characters, want %d", apperr.ErrInvalidBarcode, n, RawLength)
	}
	clean := Clean(raw)
	if !digitsRe.MatchString(clean) {
		return Fields{}, fmt.Errorf("%w: %q is not made of digits only", apperr.ErrInvalidBarcode, clean)
	}
	return Split(clean)
}

// Split partitions the 44-digit barcode into Fields following Layout.
func Split(digits string) (Fields, error) {
	var f Fields
	if len(digits) != DigitsLength {
		return f, fmt.Errorf("%w: barcode has %d digits, want %d", apperr.ErrInvalidBarcode, len(digits), DigitsLength)
	}
	rest := digits
	for i, w := range Layout {
		f[i], rest = rest[:w], rest[w:]
		if err := validateStored(i, f[i]); err != nil {
			return Fields{}, fmt.Errorf("%w: field %d: %v", apperr.ErrInvalidBarcode, i, err)
		}
	}
	return f, nil
}

// Parse accepts either the 55-character typed line or the 44-digit barcode.
func Parse(s string) (Fields, error) {
	s = Normalize(s)
	if utf8.RuneCountInString(s) == DigitsLength {
		return Split(s)
	}
	return Decode(s)
}

func validateStored(i int, s string) error {
	return validation.Validate(s,
		validation.Required,
		validation.Length(Layout[i], Layout[i]),
		validation.Match(digitsRe).Error("must contain digits only"),
	)
}

// Validate reports whether every field holds exactly its width in digits.
func (f Fields) Validate() error {
	for i, s := range f {
		if err := validateStored(i, s); err != nil {
			return fmt.Errorf("%w: field %d: %v", apperr.ErrInvalidBarcode, i, err)
		}
	}
	return nil
}

// Encode concatenates the fields back into the 44-digit barcode.
func (f Fields) Encode() string {
	return strings.Join(f[:], "")
}

// Debug renders the fields as a quoted list, e.g. ["816", "3", ...].
func (f Fields) Debug() string {
	quoted := make([]string, len(f))
	for i, s := range f {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
