// Package rlp implements Ethereum's Recursive Length Prefix encoding over a
// small tagged item model: every value is either a String or a List.
package rlp

import (
	"bytes"

	"github.com/pkg/errors"
)

// ErrMalformedEncoding is returned when input is structurally invalid or not canonical.
var ErrMalformedEncoding = errors.New("malformed RLP encoding")

// Item is either a String or a List.
type Item interface {
	isItem()
}

// String is an RLP byte string.
type String []byte

// List is an ordered RLP list of items.
type List []Item

func (String) isItem() {}
func (List) isItem()   {}

// Equal reports whether a and b are the same item. Nil and empty strings
// (and lists) are treated as equal since they share one encoding.
func Equal(a, b Item) bool {
	switch x := a.(type) {
	case nil:
		y, ok := b.(String)
		return b == nil || (ok && len(y) == 0)
	case String:
		if b == nil {
			return len(x) == 0
		}
		y, ok := b.(String)
		return ok && bytes.Equal(x, y)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
