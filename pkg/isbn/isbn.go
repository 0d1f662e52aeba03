// Package isbn computes and verifies ISBN-10 and ISBN-13 check digits.
//
// Both functions operate on bare digit strings: hyphens, spaces and
// prefixes such as "ISBN" must be stripped by the caller.
package isbn

import (
	"errors"

	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// Sentinel errors for CheckDigit.
var (
	// ErrLength is returned when the input is neither 10 nor 13 characters long.
	ErrLength = errors.New("isbn must have length 10 or 13")

	// ErrDigit is returned when a payload position holds a non-digit.
	ErrDigit = errors.New("isbn must only have digits")
)

// CheckDigit returns the check character for s, which must be a 10- or
// 13-character ISBN. Only the payload (the first 9 or 12 characters) is
// read; the final position is ignored so both complete ISBNs and ISBNs with
// a placeholder check character are accepted.
//
// ISBN-10 weights the payload 10 down to 2 and yields (11 - sum%11) % 11,
// written as 'X' when it is 10. ISBN-13 weights alternate 1 and 3 and
// yield (10 - sum%10) % 10.
func CheckDigit(s string) (byte, error) {
	switch len(s) {
	case 10:
		sum := 0
		for i := 0; i < 9; i++ {
			d, ok := digit(s[i])
			if !ok {
				return 0, digitErr(s, i)
			}
			sum += d * (10 - i)
		}
		ck := (11 - sum%11) % 11
		if ck == 10 {
			return 'X', nil
		}
		return byte('0' + ck), nil
	case 13:
		sum := 0
		for i := 0; i < 12; i++ {
			d, ok := digit(s[i])
			if !ok {
				return 0, digitErr(s, i)
			}
			sum += d * weight13(i)
		}
		return byte('0' + (10-sum%10)%10), nil
	default:
		return 0, errs.Wrap(errs.ErrCodeInvalidFormat, ErrLength, "%q has length %d", s, len(s))
	}
}

// IsValid reports whether s is a complete ISBN-10 or ISBN-13 whose check
// character matches its payload. 'X' is accepted only as the last
// character of an ISBN-10. Malformed input yields false, never an error.
func IsValid(s string) bool {
	switch len(s) {
	case 10:
		sum := 0
		for i := 0; i < 10; i++ {
			d, ok := digit(s[i])
			if !ok {
				if i != 9 || s[i] != 'X' {
					return false
				}
				d = 10
			}
			sum += d * (10 - i)
		}
		return sum%11 == 0
	case 13:
		sum := 0
		for i := 0; i < 13; i++ {
			d, ok := digit(s[i])
			if !ok {
				return false
			}
			sum += d * weight13(i)
		}
		return sum%10 == 0
	default:
		return false
	}
}

// ValidateBatch applies IsValid to each element. One bad entry never
// affects the others.
func ValidateBatch(isbns []string) []bool {
	out := make([]bool, len(isbns))
	for i, s := range isbns {
		out[i] = IsValid(s)
	}
	return out
}

func digit(c byte) (int, bool) {
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}

func weight13(i int) int {
	if i%2 == 1 {
		return 3
	}
	return 1
}

func digitErr(s string, i int) error {
	return errs.Wrap(errs.ErrCodeInvalidFormat, ErrDigit, "%q has %q at position %d", s, s[i], i)
}
