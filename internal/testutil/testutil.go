// Package testutil provides shared test fixtures for typed barcode lines.
package testutil

import "strings"

// Digits is a valid 44-digit barcode:
// 816 | 3 | 00000000150 | 0123 | 20240315 | 0001234 | 000 | 1 | 24 | 1234.
const Digits = "81630000000015001232024031500012340001241234"

// Line is Digits as typed, with the block check digits it carries on paper.
const Line = "81630000000 6 01500123202 2 40315000123 4 40001241234 4"

// Raw interleaves a 44-digit barcode with the given 3-character padding
// groups, the inverse of the decoder's alternating chunk rule. The last
// group is cut to 2 characters so the result is 55 characters long.
func Raw(digits string, pads [4]string) string {
	var b strings.Builder
	for i := range 4 {
		b.WriteString(digits[i*11 : (i+1)*11])
		p := pads[i]
		if i == 3 {
			p = p[:2]
		}
		b.WriteString(p)
	}
	return b.String()
}

// Spaced is Raw with " 0 " padding groups.
func Spaced(digits string) string {
	return Raw(digits, [4]string{" 0 ", " 0 ", " 0 ", " 0 "})
}

// Replace overwrites the field starting at offset in a 44-digit barcode.
func Replace(digits string, offset int, value string) string {
	return digits[:offset] + value + digits[offset+len(value):]
}
