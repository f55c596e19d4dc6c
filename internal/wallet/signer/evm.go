// Package signer produces legacy ECDSA signatures for transactions.
// v is always 27 or 28; no chain id is mixed in (EIP-155 is not applied).
package signer

import (
	"bytes"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-ethwallet/internal/wallet/transaction"
)

var (
	// ErrSigningFailure is returned when the signature primitive rejects its inputs.
	ErrSigningFailure = errors.New("signing failure")

	// ErrSigningKeyMismatch is returned by SignAs when the key does not belong to the expected address.
	ErrSigningKeyMismatch = errors.New("from address does not match private key")
)

const (
	legacyRecoveryOffset = 27
	scalarLength         = 32
)

var (
	curveOrder     = crypto.S256().Params().N
	halfCurveOrder = new(big.Int).Rsh(curveOrder, 1)
)

// Sign signs the unsigned encoding of tx and returns a new signed transaction.
// Any signature already on tx is ignored and tx is never modified.
func Sign(tx *transaction.Transaction, privateKey []byte) (*transaction.Transaction, error) {
	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		// go-ethereum's key errors describe the problem, never the key
		return nil, errors.Wrap(ErrSigningFailure, err.Error())
	}

	return signWithKey(tx, ecdsaPrivateKey)
}

// SignAs is Sign with a check that privateKey belongs to expected.
func SignAs(tx *transaction.Transaction, privateKey []byte, expected common.Address) (*transaction.Transaction, error) {
	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrap(ErrSigningFailure, err.Error())
	}

	derivedAddress := crypto.PubkeyToAddress(ecdsaPrivateKey.PublicKey)
	if derivedAddress != expected {
		return nil, errors.Wrapf(ErrSigningKeyMismatch, "expected %s", expected.Hex())
	}

	return signWithKey(tx, ecdsaPrivateKey)
}

func signWithKey(tx *transaction.Transaction, key *ecdsa.PrivateKey) (*transaction.Transaction, error) {
	digest, err := tx.SigningHash()
	if err != nil {
		return nil, err
	}

	// RFC 6979 deterministic nonce
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return nil, errors.Wrap(ErrSigningFailure, err.Error())
	}

	r := new(big.Int).SetBytes(sig[:scalarLength])
	s := new(big.Int).SetBytes(sig[scalarLength : 2*scalarLength])

	recID, err := recoveryID(digest[:], r, s, &key.PublicKey)
	if err != nil {
		return nil, err
	}

	s, recID = canonicalize(s, recID)

	return tx.WithSignature(transaction.Signature{
		V: big.NewInt(int64(legacyRecoveryOffset + recID)),
		R: r,
		S: s,
	}), nil
}

// recoveryID finds which of the two candidate keys recovered from (r, s) is expected.
func recoveryID(digest []byte, r, s *big.Int, expected *ecdsa.PublicKey) (byte, error) {
	want := crypto.FromECDSAPub(expected)

	candidate := make([]byte, crypto.SignatureLength)
	r.FillBytes(candidate[:scalarLength])
	s.FillBytes(candidate[scalarLength : 2*scalarLength])

	for id := range byte(2) {
		candidate[crypto.RecoveryIDOffset] = id

		recovered, err := crypto.Ecrecover(digest, candidate)
		if err == nil && bytes.Equal(recovered, want) {
			return id, nil
		}
	}

	return 0, errors.Wrap(ErrSigningFailure, "no recovery id reproduces the signing key")
}

// canonicalize moves s into the lower half of the curve order. Negating s
// mirrors the recovered point, so the recovery id flips with it.
func canonicalize(s *big.Int, recID byte) (*big.Int, byte) {
	if s.Cmp(halfCurveOrder) <= 0 {
		return s, recID
	}

	return new(big.Int).Sub(curveOrder, s), recID ^ 1
}
