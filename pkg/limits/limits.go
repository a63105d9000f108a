// Package limits turns the command-line argument into an enumeration bound.
package limits

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrMissingArgument = errors.New("no limit supplied")
	ErrInvalidLimit    = errors.New("limit is not an unsigned 64-bit decimal integer")
)

// Parse reads a decimal limit. Surrounding whitespace and one leading '+' are
// accepted; signs, other bases, fractions and values above 2^64-1 are not.
func Parse(s string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "+")
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, errors.Wrapf(ErrInvalidLimit, "%q: %v", s, err)
	}
	return n, nil
}

// FromArgs parses the first positional argument. Arguments after the first
// are ignored.
func FromArgs(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, ErrMissingArgument
	}
	return Parse(args[0])
}
