package rlp

import "math/bits"

const (
	shortStringOffset byte = 0x80
	longStringOffset  byte = 0xb7
	shortListOffset   byte = 0xc0
	longListOffset    byte = 0xf7

	maxShortPayload = 55
)

// Encode returns the canonical encoding of item. A nil item encodes as the empty string.
func Encode(item Item) []byte {
	return appendItem(nil, item)
}

func appendItem(dst []byte, item Item) []byte {
	switch v := item.(type) {
	case List:
		var payload []byte
		for _, child := range v {
			payload = appendItem(payload, child)
		}
		dst = appendHeader(dst, shortListOffset, longListOffset, uint64(len(payload)))
		return append(dst, payload...)
	case String:
		if len(v) == 1 && v[0] < shortStringOffset {
			return append(dst, v[0])
		}
		dst = appendHeader(dst, shortStringOffset, longStringOffset, uint64(len(v)))
		return append(dst, v...)
	default:
		return append(dst, shortStringOffset)
	}
}

// appendHeader writes the prefix for a payload of the given size. Payloads up to
// 55 bytes carry their size in the prefix itself, longer ones are followed by
// the big-endian size.
func appendHeader(dst []byte, shortOffset, longOffset byte, size uint64) []byte {
	if size <= maxShortPayload {
		return append(dst, shortOffset+byte(size))
	}

	sizeBytes := minimalBigEndian(size)
	dst = append(dst, longOffset+byte(len(sizeBytes)))
	return append(dst, sizeBytes...)
}

// minimalBigEndian returns u without leading zero bytes; zero yields an empty slice.
func minimalBigEndian(u uint64) []byte {
	n := (bits.Len64(u) + 7) / 8 //nolint:mnd // bits to bytes
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(u)
		u >>= 8
	}
	return out
}
