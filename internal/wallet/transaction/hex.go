package transaction

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// EncodeHex renders raw bytes in the wire format: uppercase hex, no 0x prefix.
func EncodeHex(raw []byte) string {
	return strings.ToUpper(hex.EncodeToString(raw))
}

// ParseHex accepts hex in either case with an optional 0x prefix.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, &fieldError{cause: errors.Wrap(err, "invalid hex")}
	}

	return raw, nil
}

// DecodeHex parses a hex encoded transaction.
func DecodeHex(s string) (*Transaction, error) {
	raw, err := ParseHex(s)
	if err != nil {
		return nil, err
	}

	return Decode(raw)
}

// EncodeToHex encodes tx (signed or unsigned) in the wire format.
func EncodeToHex(tx *Transaction) (string, error) {
	raw, err := Encode(tx)
	if err != nil {
		return "", err
	}

	return EncodeHex(raw), nil
}
