package seed

import (
	"crypto/sha512"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidSeed is returned when a mnemonic or passphrase cannot be stretched into a seed.
var ErrInvalidSeed = errors.New("invalid seed")

const (
	pbkdf2Iterations = 2048 // BIP39 standard iterations
	pbkdf2KeyLength  = 64   // BIP39 standard key length (512 bits)

	saltPrefix = "mnemonic"
)

// FromMnemonic converts a mnemonic and optional passphrase into a 64 byte seed.
// BIP39: seed = PBKDF2(NFKD(mnemonic), "mnemonic" + NFKD(passphrase), 2048, 64, SHA512)
// The mnemonic is not checked against a wordlist here, see ValidateMnemonic.
// WARNING: Caller must clear the seed after use
func FromMnemonic(mnemonic string, passphrase string) ([]byte, error) {
	if strings.TrimSpace(mnemonic) == "" {
		return nil, errors.Wrap(ErrInvalidSeed, "mnemonic is empty")
	}

	password := norm.NFKD.String(mnemonic)
	salt := saltPrefix + norm.NFKD.String(passphrase)

	seed := pbkdf2.Key(
		[]byte(password),
		[]byte(salt),
		pbkdf2Iterations,
		pbkdf2KeyLength,
		sha512.New,
	)
	if len(seed) != pbkdf2KeyLength {
		return nil, errors.Wrapf(ErrInvalidSeed, "key stretching returned %d bytes", len(seed))
	}

	return seed, nil
}

// Zero overwrites b in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
