// Package sharecode generates the 6-character codes users disclose to an
// admin so the admin can add them to a business without knowing their email.
package sharecode

import (
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"
	"strings"

	"shiftness-api/internal/constants"
)

// ErrExhausted is returned when every drawn candidate was already taken.
// With a 36^6 code space this should effectively never happen; callers
// treat it as an internal failure.
var ErrExhausted = errors.New("sharecode: could not generate a unique code within the attempt bound")

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ExistsFunc reports whether a candidate code is already assigned.
type ExistsFunc func(code string) (bool, error)

// Generate draws random candidates until one passes the uniqueness check,
// bounded at constants.ShareCodeMaxAttempts. Errors from the check
// propagate unchanged.
func Generate(exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < constants.ShareCodeMaxAttempts; attempt++ {
		code, err := random()
		if err != nil {
			return "", err
		}

		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}

// Normalize trims and uppercases a code supplied by a client.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether a normalized code is exactly 6 characters of [0-9A-Z].
func Valid(code string) bool {
	return codePattern.MatchString(code)
}

func random() (string, error) {
	max := big.NewInt(int64(len(constants.ShareCodeAlphabet)))
	b := make([]byte, constants.ShareCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = constants.ShareCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
