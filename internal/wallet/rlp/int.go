package rlp

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrIntegerRange is returned when an integer does not fit the requested type.
var ErrIntegerRange = errors.New("integer out of range")

const maxUint64Bytes = 8

// Uint encodes u as a minimal big-endian string. Zero is the empty string.
func Uint(u uint64) String {
	return String(minimalBigEndian(u))
}

// BigInt encodes n as a minimal big-endian string. A nil n encodes as zero.
func BigInt(n *big.Int) (String, error) {
	if n == nil {
		return String{}, nil
	}
	if n.Sign() < 0 {
		return nil, errors.Wrap(ErrIntegerRange, "negative integers cannot be encoded")
	}

	return String(n.Bytes()), nil
}

// Uint64 interprets s as a canonical unsigned integer.
func (s String) Uint64() (uint64, error) {
	if err := s.checkCanonical(); err != nil {
		return 0, err
	}
	if len(s) > maxUint64Bytes {
		return 0, errors.Wrapf(ErrIntegerRange, "%d byte integer exceeds 64 bits", len(s))
	}

	var u uint64
	for _, b := range s {
		u = u<<8 | uint64(b)
	}

	return u, nil
}

// BigInt interprets s as a canonical unsigned integer of at most maxBits bits.
// A maxBits of zero means no limit.
func (s String) BigInt(maxBits int) (*big.Int, error) {
	if err := s.checkCanonical(); err != nil {
		return nil, err
	}

	n := new(big.Int).SetBytes(s)
	if maxBits > 0 && n.BitLen() > maxBits {
		return nil, errors.Wrapf(ErrIntegerRange, "integer exceeds %d bits", maxBits)
	}

	return n, nil
}

func (s String) checkCanonical() error {
	if len(s) > 0 && s[0] == 0 {
		return errors.Wrap(ErrMalformedEncoding, "integer has leading zero bytes")
	}
	return nil
}
