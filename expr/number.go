package expr

import (
	"fmt"
	"strconv"
)

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool   { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }
func isBinaryDigit(c byte) bool { return c == '0' || c == '1' }
func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

const maxDigitLen = 10

// scanNumber scans a numeric literal starting at s[0], which must be a
// decimal digit. It returns the parsed value and the number of bytes
// consumed.
func scanNumber(s string) (value int, consumed int, err error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return scanRadix(s[2:], 16, isHexDigit, 2)
	}
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'o' || s[1] == 'O') {
		return scanRadix(s[2:], 8, isOctalDigit, 2)
	}
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'b' || s[1] == 'B') {
		if len(s) > 2 && isBinaryDigit(s[2]) {
			return scanRadix(s[2:], 2, isBinaryDigit, 2)
		}
	}
	if len(s) >= 2 && s[0] == '0' && isOctalDigit(s[1]) {
		return scanRadix(s[1:], 8, isOctalDigit, 1)
	}

	// Generic run: grab the maximal alphanumeric run, then see if it ends in
	// a radix suffix (h/H, o/O, b/B) that reclassifies the preceding digits.
	end := 0
	for end < len(s) && isAlnum(s[end]) {
		end++
	}
	run := s[:end]

	if len(run) >= 2 {
		last := run[len(run)-1]
		digits := run[:len(run)-1]
		switch {
		case (last == 'h' || last == 'H') && allHexDigits(digits):
			return finishRadix(digits, 16, len(digits)+1)
		case (last == 'o' || last == 'O') && allOctalDigits(digits):
			return finishRadix(digits, 8, len(digits)+1)
		case (last == 'b' || last == 'B') && allBinaryDigits(digits):
			return finishRadix(digits, 2, len(digits)+1)
		}
	}

	// No suffix: the number is the maximal leading run of decimal digits;
	// anything else in `run` (e.g. trailing hex letters with no "h") belongs
	// to whatever token follows, per the "re-scope the digits" rule.
	end = 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	return finishRadix(s[:end], 10, end)
}

func allHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func allOctalDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isOctalDigit(s[i]) {
			return false
		}
	}
	return true
}

func allBinaryDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isBinaryDigit(s[i]) {
			return false
		}
	}
	return true
}

func scanRadix(s string, base int, digitOK func(byte) bool, prefixLen int) (int, int, error) {
	end := 0
	for end < len(s) && digitOK(s[end]) {
		end++
	}
	v, n, err := finishRadix(s[:end], base, end)
	return v, n + prefixLen, err
}

func finishRadix(digits string, base int, consumed int) (int, int, error) {
	if len(digits) == 0 {
		return 0, 0, fmt.Errorf("expected digits in numeric literal")
	}
	if len(digits) > maxDigitLen {
		return 0, 0, fmt.Errorf("numeric literal %q exceeds maximum digit length %d", digits, maxDigitLen)
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid base-%d literal %q: %w", base, digits, err)
	}
	return int(v), consumed, nil
}
