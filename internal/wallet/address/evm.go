package address

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-ethwallet/internal/wallet/hdkey"
	"github/chapool/go-ethwallet/internal/wallet/seed"
)

// ErrInvalidAddress is returned for malformed or wrongly checksummed addresses.
var ErrInvalidAddress = errors.New("invalid address")

const (
	addressHexLength   = 2 * common.AddressLength
	publicKeyLength    = 64
	uncompressedPrefix = 0x04
)

// Derive derives the key pair at m/44'/60'/account'/0/0.
func Derive(mnemonic string, passphrase string, account uint32) (*KeyPair, error) {
	path, err := hdkey.EthereumPath(account)
	if err != nil {
		return nil, err
	}

	return DerivePath(mnemonic, passphrase, path)
}

// DerivePath derives the key pair at an arbitrary BIP32 path.
// Seed and intermediate keys are cleared before returning.
func DerivePath(mnemonic string, passphrase string, path hdkey.Path) (*KeyPair, error) {
	seedBytes, err := seed.FromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive seed")
	}
	defer seed.Zero(seedBytes)

	master, err := hdkey.NewMaster(seedBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}
	defer master.Zero()

	derivedKey, err := master.Derive(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key from path")
	}
	defer derivedKey.Zero()

	privateKey := derivedKey.PrivateKey()
	defer seed.Zero(privateKey)

	return NewKeyPair(privateKey)
}

// NewKeyPair builds a key pair from a raw 32 byte private key. The input is copied.
func NewKeyPair(privateKey []byte) (*KeyPair, error) {
	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	return &KeyPair{
		PrivateKey: crypto.FromECDSA(ecdsaPrivateKey),
		PublicKey:  crypto.FromECDSAPub(&ecdsaPrivateKey.PublicKey)[1:],
	}, nil
}

// ParsePrivateKey parses a hex private key, with or without 0x, in either case.
// The input is never echoed in errors.
func ParsePrivateKey(hexKey string) (*KeyPair, error) {
	raw, err := hex.DecodeString(trimHexPrefix(strings.TrimSpace(hexKey)))
	if err != nil {
		return nil, errors.New("private key is not valid hex")
	}
	defer seed.Zero(raw)

	return NewKeyPair(raw)
}

// FromPublicKey returns the address for a 64 byte (X || Y) or 65 byte (0x04 || X || Y) public key.
func FromPublicKey(publicKey []byte) (common.Address, error) {
	switch len(publicKey) {
	case publicKeyLength:
		publicKey = append([]byte{uncompressedPrefix}, publicKey...)
	case publicKeyLength + 1:
	default:
		return common.Address{}, errors.Errorf("public key must be %d or %d bytes, got %d", publicKeyLength, publicKeyLength+1, len(publicKey))
	}

	ecdsaPublicKey, err := crypto.UnmarshalPubkey(publicKey)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to parse public key")
	}

	return crypto.PubkeyToAddress(*ecdsaPublicKey), nil
}

// Parse parses a 40 digit hex address, with or without 0x. Mixed case input
// must carry a valid checksum; all lower or all upper case input is accepted as is.
func Parse(s string) (common.Address, error) {
	digits := trimHexPrefix(strings.TrimSpace(s))
	if len(digits) != addressHexLength {
		return common.Address{}, errors.Wrapf(ErrInvalidAddress, "%q must have %d hex digits", s, addressHexLength)
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return common.Address{}, errors.Wrapf(ErrInvalidAddress, "%q is not hex", s)
	}

	addr := common.BytesToAddress(raw)
	if isMixedCase(digits) && addr.Hex()[2:] != digits {
		return common.Address{}, errors.Wrapf(ErrInvalidAddress, "%q has an invalid checksum", s)
	}

	return addr, nil
}

// Checksum re-renders an address in EIP-55 mixed case.
func Checksum(s string) (string, error) {
	digits := trimHexPrefix(strings.TrimSpace(s))

	// the case of the input is not trusted here, only its digits
	addr, err := Parse(strings.ToLower(digits))
	if err != nil {
		return "", err
	}

	return addr.Hex(), nil
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
