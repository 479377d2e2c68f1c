// Package address validates account addresses and renders them in EIP-55
// mixed-case checksum form, so the same account always compares equal.
package address

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalid = errors.New("invalid address")

// Zero is the all-zero address. It is never a valid owner.
const Zero = "0x0000000000000000000000000000000000000000"

// Normalize parses a 0x-prefixed 20-byte hex address and returns its checksum
// form. Mixed-case input must already carry a correct checksum.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 42 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return "", ErrInvalid
	}
	body := s[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return "", ErrInvalid
	}
	out := checksum(strings.ToLower(body))
	if hasUpper(body) && hasLower(body) && out[2:] != body {
		return "", ErrInvalid
	}
	if out == Zero {
		return "", ErrInvalid
	}
	return out, nil
}

// Must is Normalize for constants and tests.
func Must(raw string) string {
	out, err := Normalize(raw)
	if err != nil {
		panic(err)
	}
	return out
}

// Equal compares two addresses ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func checksum(lower string) string {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := digest[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c -= 'a' - 'A'
			}
		}
		out = append(out, c)
	}
	return string(out)
}

func hasUpper(s string) bool { return strings.ToLower(s) != s }
func hasLower(s string) bool { return strings.ToUpper(s) != s }
