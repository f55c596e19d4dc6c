package signer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-ethwallet/internal/wallet/transaction"
)

// Sender recovers the address that signed tx. Only legacy v values (27, 28) are supported.
func Sender(tx *transaction.Transaction) (common.Address, error) {
	if !tx.IsSigned() {
		return common.Address{}, errors.Wrap(ErrSigningFailure, "transaction is not signed")
	}

	sig := tx.Signature
	if sig.V == nil || sig.R == nil || sig.S == nil {
		return common.Address{}, errors.Wrap(ErrSigningFailure, "incomplete signature")
	}

	if !sig.V.IsUint64() || (sig.V.Uint64() != legacyRecoveryOffset && sig.V.Uint64() != legacyRecoveryOffset+1) {
		return common.Address{}, errors.Wrapf(ErrSigningFailure, "unsupported v value %s", sig.V)
	}
	recID := byte(sig.V.Uint64() - legacyRecoveryOffset)

	if !crypto.ValidateSignatureValues(recID, sig.R, sig.S, true) {
		return common.Address{}, errors.Wrap(ErrSigningFailure, "invalid signature values")
	}

	digest, err := tx.SigningHash()
	if err != nil {
		return common.Address{}, err
	}

	raw := make([]byte, crypto.SignatureLength)
	sig.R.FillBytes(raw[:scalarLength])
	sig.S.FillBytes(raw[scalarLength : 2*scalarLength])
	raw[crypto.RecoveryIDOffset] = recID

	publicKey, err := crypto.SigToPub(digest[:], raw)
	if err != nil {
		return common.Address{}, errors.Wrap(ErrSigningFailure, err.Error())
	}

	return crypto.PubkeyToAddress(*publicKey), nil
}
