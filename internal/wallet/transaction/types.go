package transaction

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Transaction is a legacy (pre EIP-2718) Ethereum transaction.
// It is unsigned while Signature is nil.
type Transaction struct {
	Nonce    uint64
	GasPrice *big.Int // wei, nil is treated as zero
	GasLimit uint64
	To       *common.Address // nil means contract creation
	Value    *big.Int        // wei, nil is treated as zero
	Data     []byte

	Signature *Signature
}

// Signature holds the legacy signature fields. V is 27 or 28 for
// transactions produced by this module; decoded transactions may carry any V.
type Signature struct {
	V *big.Int
	R *big.Int
	S *big.Int
}

// IsSigned reports whether tx carries signature fields.
func (tx *Transaction) IsSigned() bool {
	return tx.Signature != nil
}

// Copy returns a deep copy of tx.
func (tx *Transaction) Copy() *Transaction {
	cpy := &Transaction{
		Nonce:    tx.Nonce,
		GasPrice: copyBig(tx.GasPrice),
		GasLimit: tx.GasLimit,
		Value:    copyBig(tx.Value),
		Data:     bytes.Clone(tx.Data),
	}

	if tx.To != nil {
		to := *tx.To
		cpy.To = &to
	}

	if tx.Signature != nil {
		cpy.Signature = &Signature{
			V: copyBig(tx.Signature.V),
			R: copyBig(tx.Signature.R),
			S: copyBig(tx.Signature.S),
		}
	}

	return cpy
}

// WithSignature returns a signed copy of tx. tx itself is not modified.
func (tx *Transaction) WithSignature(sig Signature) *Transaction {
	cpy := tx.Copy()
	cpy.Signature = &Signature{
		V: copyBig(sig.V),
		R: copyBig(sig.R),
		S: copyBig(sig.S),
	}
	return cpy
}

// WithoutSignature returns an unsigned copy of tx.
func (tx *Transaction) WithoutSignature() *Transaction {
	cpy := tx.Copy()
	cpy.Signature = nil
	return cpy
}

func copyBig(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n)
}
