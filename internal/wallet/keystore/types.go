// Package keystore encrypts private keys into Web3 Secret Storage (keystore v3) JSON
// and back. Nothing here touches the filesystem.
package keystore

import "github.com/pkg/errors"

// ErrDecrypt is returned for a wrong password or a corrupted keystore.
var ErrDecrypt = errors.New("could not decrypt key with given password")

const (
	version    = 3
	cipherName = "aes-128-ctr"
	kdfName    = "scrypt"
)

// KeystoreJSON represents the Ethereum keystore v3 JSON structure
//
//nolint:revive // KeystoreJSON is the standard name for Ethereum keystore JSON structure
type KeystoreJSON struct {
	Address string `json:"address"`
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	N     int // CPU/memory cost parameter
	R     int // Block size parameter (8)
	P     int // Parallelization parameter
}

// DefaultScryptParams returns the standard scrypt parameters for Ethereum keystore v3
func DefaultScryptParams() ScryptParams {
	const (
		scryptDKLen = 32
		scryptN     = 262144 // 2^18
		scryptR     = 8
		scryptP     = 1
	)

	return ScryptParams{
		DKLen: scryptDKLen,
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
	}
}

// NewScryptParams returns the default parameters with n and p replaced when they are positive.
func NewScryptParams(n, p int) ScryptParams {
	params := DefaultScryptParams()
	if n > 0 {
		params.N = n
	}
	if p > 0 {
		params.P = p
	}

	return params
}
