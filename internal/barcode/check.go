package barcode

import (
	"strconv"
	"strings"

	"github.com/starford/guia/internal/checksum"
)

// checkFunc picks the check digit module from the value identifier, the
// third digit of the segment field: 6 and 7 use modulo 10, 8 and 9 modulo 11.
func (f Fields) checkFunc() func(string) int {
	seg := f[Segment]
	if len(seg) == Layout[Segment] && (seg[2] == '8' || seg[2] == '9') {
		return checksum.Mod11
	}
	return checksum.Mod10
}

// ExpectedCheckDigit computes the general check digit over the other 43 digits.
func (f Fields) ExpectedCheckDigit() string {
	rest := f
	rest[CheckDigit] = ""
	return strconv.Itoa(f.checkFunc()(rest.Encode()))
}

// CheckDigitOK reports whether the stored general check digit matches.
func (f Fields) CheckDigitOK() bool {
	return f[CheckDigit] == f.ExpectedCheckDigit()
}

// Line renders the typed line: four 11-digit blocks, each followed by its
// own check digit, separated by spaces. Decode(f.Line()) yields f again.
func (f Fields) Line() string {
	digits := f.Encode()
	mod := f.checkFunc()
	parts := make([]string, 0, 2*DigitsLength/blockWidth)
	for i := 0; i+blockWidth <= len(digits); i += blockWidth {
		block := digits[i : i+blockWidth]
		parts = append(parts, block, strconv.Itoa(mod(block)))
	}
	return strings.Join(parts, " ")
}
