// Package checksum computes the FEBRABAN check digits used by collection barcodes.
package checksum

// Mod10 returns the modulo-10 check digit of a digit string. Weights 2 and 1
// alternate from the rightmost digit; two-digit products contribute the sum
// of their digits.
func Mod10(digits string) int {
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		p := int(digits[i]-'0') * weight
		sum += p/10 + p%10
		weight = 3 - weight
	}
	if r := sum % 10; r != 0 {
		return 10 - r
	}
	return 0
}

// Mod11 returns the modulo-11 check digit of a digit string. Weights run
// 2..9 from the rightmost digit and wrap back to 2. Results of 10 or 11 map to 0.
func Mod11(digits string) int {
	sum := 0
	weight := 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	dv := 11 - sum%11
	if dv >= 10 {
		return 0
	}
	return dv
}
