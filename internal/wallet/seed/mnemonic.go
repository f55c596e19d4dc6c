package seed

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned when a mnemonic fails wordlist or checksum validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

var entropyBitsByWords = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// NewMnemonic generates a random English mnemonic with the given number of words.
func NewMnemonic(words int) (string, error) {
	bitSize, ok := entropyBitsByWords[words]
	if !ok {
		return "", errors.Errorf("unsupported mnemonic length: %d words", words)
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}
	defer Zero(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate mnemonic")
	}

	return mnemonic, nil
}

// ValidateMnemonic checks word count, wordlist membership and checksum.
func ValidateMnemonic(mnemonic string) error {
	normalized := strings.Join(strings.Fields(mnemonic), " ")

	// go-bip39 quotes unknown words in its errors, so only the kind is kept
	if _, err := bip39.EntropyFromMnemonic(normalized); err != nil {
		if errors.Is(err, bip39.ErrChecksumIncorrect) {
			return errors.Wrap(ErrInvalidMnemonic, "checksum mismatch")
		}
		return errors.Wrap(ErrInvalidMnemonic, "unknown word or wrong word count")
	}

	return nil
}
