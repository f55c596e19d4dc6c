package rlp

import (
	"bytes"

	"github.com/pkg/errors"
)

// Decode parses exactly one item from input. The whole input must be consumed.
// Returned strings never alias input.
func Decode(input []byte) (Item, error) {
	item, rest, err := decodeItem(input)
	if err != nil {
		return nil, err
	}

	if len(rest) > 0 {
		return nil, errors.Wrapf(ErrMalformedEncoding, "%d trailing bytes after top-level item", len(rest))
	}

	return item, nil
}

func decodeItem(input []byte) (Item, []byte, error) {
	isList, payload, rest, err := split(input)
	if err != nil {
		return nil, nil, err
	}

	if !isList {
		return String(bytes.Clone(payload)), rest, nil
	}

	items := List{}
	for len(payload) > 0 {
		var child Item
		child, payload, err = decodeItem(payload)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, child)
	}

	return items, rest, nil
}

// split reads the header at the start of input and returns the item's payload
// along with whatever follows it.
func split(input []byte) (isList bool, payload []byte, rest []byte, err error) {
	if len(input) == 0 {
		return false, nil, nil, errors.Wrap(ErrMalformedEncoding, "unexpected end of input")
	}

	prefix := input[0]
	switch {
	case prefix < shortStringOffset:
		return false, input[:1], input[1:], nil

	case prefix <= longStringOffset:
		payload, rest, err = take(input[1:], uint64(prefix-shortStringOffset))
		if err != nil {
			return false, nil, nil, err
		}
		if len(payload) == 1 && payload[0] < shortStringOffset {
			return false, nil, nil, errors.Wrapf(ErrMalformedEncoding, "byte 0x%02x must be encoded as itself", payload[0])
		}
		return false, payload, rest, nil

	case prefix < shortListOffset:
		payload, rest, err = takeLong(input[1:], int(prefix-longStringOffset))
		return false, payload, rest, err

	case prefix <= longListOffset:
		payload, rest, err = take(input[1:], uint64(prefix-shortListOffset))
		return true, payload, rest, err

	default:
		payload, rest, err = takeLong(input[1:], int(prefix-longListOffset))
		return true, payload, rest, err
	}
}

// takeLong handles the long form, where the prefix is followed by sizeLen
// bytes of big-endian payload size.
func takeLong(input []byte, sizeLen int) ([]byte, []byte, error) {
	if len(input) < sizeLen {
		return nil, nil, errors.Wrapf(ErrMalformedEncoding, "length prefix truncated: want %d bytes, have %d", sizeLen, len(input))
	}

	sizeBytes := input[:sizeLen]
	if sizeBytes[0] == 0 {
		return nil, nil, errors.Wrap(ErrMalformedEncoding, "length prefix has leading zero bytes")
	}

	var size uint64
	for _, b := range sizeBytes {
		size = size<<8 | uint64(b)
	}

	if size <= maxShortPayload {
		return nil, nil, errors.Wrapf(ErrMalformedEncoding, "long form used for %d byte payload", size)
	}

	return take(input[sizeLen:], size)
}

func take(input []byte, size uint64) ([]byte, []byte, error) {
	if uint64(len(input)) < size {
		return nil, nil, errors.Wrapf(ErrMalformedEncoding, "payload truncated: want %d bytes, have %d", size, len(input))
	}

	return input[:size], input[size:], nil
}
