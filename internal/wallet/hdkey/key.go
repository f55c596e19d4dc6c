// Package hdkey implements BIP32 private key derivation on secp256k1.
package hdkey

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
	"github/chapool/go-ethwallet/internal/wallet/seed"
)

var (
	// ErrInvalidSeed is seed.ErrInvalidSeed, returned when a seed cannot produce a master key.
	ErrInvalidSeed = seed.ErrInvalidSeed

	// ErrKeyDerivationOverflow is returned when a child key is zero or not below the curve order.
	// BIP32 says to skip to the next index; this package treats it as fatal.
	ErrKeyDerivationOverflow = errors.New("key derivation overflow")
)

const (
	masterHMACKey = "Bitcoin seed"

	minSeedLength = 16
	maxSeedLength = 64

	keyLength = 32
)

// ExtendedKey is a BIP32 extended private key.
type ExtendedKey struct {
	key       [keyLength]byte
	chainCode [keyLength]byte
	depth     uint8
}

// NewMaster derives the master key from a seed.
func NewMaster(seedBytes []byte) (*ExtendedKey, error) {
	if len(seedBytes) < minSeedLength || len(seedBytes) > maxSeedLength {
		return nil, errors.Wrapf(ErrInvalidSeed, "seed must be %d to %d bytes, got %d", minSeedLength, maxSeedLength, len(seedBytes))
	}

	il, ir := hmacSHA512([]byte(masterHMACKey), seedBytes)
	defer seed.Zero(il)

	var scalar btcec.ModNScalar
	defer scalar.Zero()

	if overflow := scalar.SetByteSlice(il); overflow || scalar.IsZero() {
		return nil, errors.Wrap(ErrInvalidSeed, "master key is not a valid secp256k1 scalar")
	}

	master := &ExtendedKey{}
	scalar.PutBytes(&master.key)
	copy(master.chainCode[:], ir)

	return master, nil
}

// Child derives the child key for segment.
func (k *ExtendedKey) Child(segment Segment) (*ExtendedKey, error) {
	if segment.Index >= HardenedOffset {
		return nil, errors.Wrapf(ErrInvalidPath, "segment index %d out of range", segment.Index)
	}

	//nolint:mnd // 1 byte prefix or parity + 32 byte key + 4 byte index
	data := make([]byte, 0, 37)
	if segment.Hardened {
		data = append(data, 0x00)
		data = append(data, k.key[:]...)
	} else {
		data = append(data, k.PublicKeyCompressed()...)
	}
	data = binary.BigEndian.AppendUint32(data, segment.childNumber())
	defer seed.Zero(data)

	il, ir := hmacSHA512(k.chainCode[:], data)
	defer seed.Zero(il)

	child, err := deriveChild(&k.key, il, ir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to derive child %s", segment)
	}
	child.depth = k.depth + 1

	return child, nil
}

// deriveChild computes key = il + parent mod N.
func deriveChild(parent *[keyLength]byte, il []byte, ir []byte) (*ExtendedKey, error) {
	var tweak, parentScalar btcec.ModNScalar
	defer tweak.Zero()
	defer parentScalar.Zero()

	if overflow := tweak.SetByteSlice(il); overflow {
		return nil, errors.Wrap(ErrKeyDerivationOverflow, "tweak is not below the curve order")
	}

	parentScalar.SetBytes(parent)
	tweak.Add(&parentScalar)
	if tweak.IsZero() {
		return nil, errors.Wrap(ErrKeyDerivationOverflow, "child key is zero")
	}

	child := &ExtendedKey{}
	tweak.PutBytes(&child.key)
	copy(child.chainCode[:], ir)

	return child, nil
}

// Derive walks path starting at k. Intermediate keys are zeroed.
func (k *ExtendedKey) Derive(path Path) (*ExtendedKey, error) {
	current := k
	for _, segment := range path {
		next, err := current.Child(segment)
		if current != k {
			current.Zero()
		}
		if err != nil {
			return nil, err
		}
		current = next
	}

	if current == k {
		clone := *k
		return &clone, nil
	}

	return current, nil
}

// Depth is the number of derivation steps from the master key.
func (k *ExtendedKey) Depth() uint8 {
	return k.depth
}

// PrivateKey returns a copy of the 32 byte private scalar.
// WARNING: Caller must clear the private key after use
func (k *ExtendedKey) PrivateKey() []byte {
	out := make([]byte, keyLength)
	copy(out, k.key[:])
	return out
}

// ChainCode returns a copy of the chain code.
func (k *ExtendedKey) ChainCode() []byte {
	out := make([]byte, keyLength)
	copy(out, k.chainCode[:])
	return out
}

// PublicKeyCompressed returns the 33 byte SEC1 compressed public key.
func (k *ExtendedKey) PublicKeyCompressed() []byte {
	_, pub := btcec.PrivKeyFromBytes(k.key[:])
	return pub.SerializeCompressed()
}

// Zero clears the key material.
func (k *ExtendedKey) Zero() {
	seed.Zero(k.key[:])
	seed.Zero(k.chainCode[:])
}

func hmacSHA512(key []byte, data []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	sum := mac.Sum(nil)

	return sum[:keyLength], sum[keyLength:]
}
