package transaction

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-ethwallet/internal/wallet/rlp"
)

// ErrMalformedTransaction is returned for field count or field range violations.
var ErrMalformedTransaction = errors.New("malformed transaction")

const (
	unsignedFieldCount = 6
	signedFieldCount   = 9

	maxWordBits  = 256
	scalarLength = 32
)

var fieldNames = [signedFieldCount]string{"nonce", "gasPrice", "gasLimit", "to", "value", "data", "v", "r", "s"}

// fieldError matches ErrMalformedTransaction and keeps the underlying cause
// (for example rlp.ErrMalformedEncoding) reachable through errors.Is.
type fieldError struct {
	field string
	cause error
}

func (e *fieldError) Error() string {
	if e.field == "" {
		return fmt.Sprintf("%v: %v", ErrMalformedTransaction, e.cause)
	}
	return fmt.Sprintf("%v: %s: %v", ErrMalformedTransaction, e.field, e.cause)
}

func (e *fieldError) Unwrap() error {
	return e.cause
}

func (e *fieldError) Is(target error) bool {
	return target == ErrMalformedTransaction //nolint:errorlint // identity check on the sentinel
}

// EncodeUnsigned returns the 6 item RLP encoding of tx. Signature fields are ignored.
func EncodeUnsigned(tx *Transaction) ([]byte, error) {
	items, err := unsignedItems(tx)
	if err != nil {
		return nil, err
	}

	return rlp.Encode(items), nil
}

// EncodeSigned returns the 9 item RLP encoding of tx.
func EncodeSigned(tx *Transaction) ([]byte, error) {
	if tx.Signature == nil {
		return nil, errors.Wrap(ErrMalformedTransaction, "transaction is not signed")
	}

	items, err := unsignedItems(tx)
	if err != nil {
		return nil, err
	}

	v, err := bigItem("v", tx.Signature.V, maxWordBits)
	if err != nil {
		return nil, err
	}
	r, err := bigItem("r", tx.Signature.R, scalarLength*8)
	if err != nil {
		return nil, err
	}
	s, err := bigItem("s", tx.Signature.S, scalarLength*8)
	if err != nil {
		return nil, err
	}

	return rlp.Encode(append(items, v, r, s)), nil
}

// Encode encodes tx as signed or unsigned depending on whether it carries a signature.
func Encode(tx *Transaction) ([]byte, error) {
	if tx.IsSigned() {
		return EncodeSigned(tx)
	}
	return EncodeUnsigned(tx)
}

func unsignedItems(tx *Transaction) (rlp.List, error) {
	gasPrice, err := bigItem("gasPrice", tx.GasPrice, maxWordBits)
	if err != nil {
		return nil, err
	}

	value, err := bigItem("value", tx.Value, maxWordBits)
	if err != nil {
		return nil, err
	}

	to := rlp.String{}
	if tx.To != nil {
		to = tx.To.Bytes()
	}

	items := make(rlp.List, 0, signedFieldCount)
	items = append(items,
		rlp.Uint(tx.Nonce),
		gasPrice,
		rlp.Uint(tx.GasLimit),
		to,
		value,
		rlp.String(tx.Data),
	)

	return items, nil
}

func bigItem(field string, n *big.Int, maxBits int) (rlp.String, error) {
	s, err := rlp.BigInt(n)
	if err != nil {
		return nil, &fieldError{field: field, cause: err}
	}
	if n != nil && n.BitLen() > maxBits {
		return nil, &fieldError{field: field, cause: errors.Errorf("exceeds %d bits", maxBits)}
	}
	return s, nil
}

// Decode parses an RLP encoded legacy transaction. Six items decode as an
// unsigned transaction, nine as a signed one.
func Decode(raw []byte) (*Transaction, error) {
	item, err := rlp.Decode(raw)
	if err != nil {
		return nil, &fieldError{cause: err}
	}

	list, ok := item.(rlp.List)
	if !ok {
		return nil, errors.Wrap(ErrMalformedTransaction, "expected an RLP list")
	}

	if len(list) != unsignedFieldCount && len(list) != signedFieldCount {
		return nil, errors.Wrapf(ErrMalformedTransaction, "expected %d or %d fields, got %d", unsignedFieldCount, signedFieldCount, len(list))
	}

	fields := make([]rlp.String, len(list))
	for i, field := range list {
		s, ok := field.(rlp.String)
		if !ok {
			return nil, &fieldError{field: fieldNames[i], cause: errors.New("expected a byte string, got a list")}
		}
		fields[i] = s
	}

	return decodeFields(fields)
}

//nolint:cyclop // one branch per field
func decodeFields(fields []rlp.String) (*Transaction, error) {
	var (
		tx  Transaction
		err error
	)

	if tx.Nonce, err = fields[0].Uint64(); err != nil {
		return nil, &fieldError{field: fieldNames[0], cause: err}
	}
	if tx.GasPrice, err = fields[1].BigInt(maxWordBits); err != nil {
		return nil, &fieldError{field: fieldNames[1], cause: err}
	}
	if tx.GasLimit, err = fields[2].Uint64(); err != nil {
		return nil, &fieldError{field: fieldNames[2], cause: err}
	}

	switch len(fields[3]) {
	case 0:
	case common.AddressLength:
		to := common.BytesToAddress(fields[3])
		tx.To = &to
	default:
		return nil, &fieldError{field: fieldNames[3], cause: errors.Errorf("expected 0 or %d bytes, got %d", common.AddressLength, len(fields[3]))}
	}

	if tx.Value, err = fields[4].BigInt(maxWordBits); err != nil {
		return nil, &fieldError{field: fieldNames[4], cause: err}
	}
	if len(fields[5]) > 0 {
		tx.Data = fields[5]
	}

	if len(fields) == unsignedFieldCount {
		return &tx, nil
	}

	sig := &Signature{}
	if sig.V, err = fields[6].BigInt(maxWordBits); err != nil {
		return nil, &fieldError{field: fieldNames[6], cause: err}
	}
	if sig.R, err = fields[7].BigInt(scalarLength * 8); err != nil {
		return nil, &fieldError{field: fieldNames[7], cause: err}
	}
	if sig.S, err = fields[8].BigInt(scalarLength * 8); err != nil {
		return nil, &fieldError{field: fieldNames[8], cause: err}
	}
	tx.Signature = sig

	return &tx, nil
}

// SigningHash is keccak256 of the unsigned encoding, the digest that gets signed.
func (tx *Transaction) SigningHash() (common.Hash, error) {
	raw, err := EncodeUnsigned(tx)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(raw), nil
}

// Hash is keccak256 of the signed encoding, the hash a node reports for tx.
func (tx *Transaction) Hash() (common.Hash, error) {
	raw, err := EncodeSigned(tx)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(raw), nil
}
