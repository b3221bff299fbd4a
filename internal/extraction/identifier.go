package extraction

import "regexp"

// identifierPattern matches a candidate security identifier: two uppercase
// country letters, nine alphanumerics, one decimal check digit.
var identifierPattern = regexp.MustCompile(`\b[A-Z]{2}[A-Z0-9]{9}[0-9]\b`)

// ValidIdentifier reports whether s is a well-formed 12-character security
// identifier, including its check digit. Candidates that merely look like an
// identifier but fail the checksum must be dropped by the caller.
func ValidIdentifier(s string) bool {
	if len(s) != 12 {
		return false
	}
	for i := 0; i < 2; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	for i := 2; i < 11; i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	if s[11] < '0' || s[11] > '9' {
		return false
	}
	return checkDigitValid(s)
}

// checkDigitValid runs the Luhn algorithm over the identifier after expanding
// letters to their numeric values (A=10 ... Z=35).
func checkDigitValid(s string) bool {
	var digits []int
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		} else {
			v := int(c-'A') + 10
			digits = append(digits, v/10, v%10)
		}
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
