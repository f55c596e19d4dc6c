package address

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/go-ethwallet/internal/wallet/seed"
)

// KeyPair holds a secp256k1 private key and its public point.
// The caller owns it and should call Zero when done.
type KeyPair struct {
	PrivateKey []byte // 32 byte scalar
	PublicKey  []byte // 64 byte uncompressed point (X || Y), no 0x04 prefix
}

// Address returns the account address of the key pair.
func (kp *KeyPair) Address() common.Address {
	return common.BytesToAddress(crypto.Keccak256(kp.PublicKey)[12:])
}

// Export renders the key pair in the interchange format.
// All fields are secrets, including Password which is the private key in base64.
func (kp *KeyPair) Export() Export {
	return Export{
		Address:    kp.Address().Hex(),
		PrivateKey: strings.ToUpper(hex.EncodeToString(kp.PrivateKey)),
		PublicKey:  strings.ToUpper(hex.EncodeToString(kp.PublicKey)),
		Password:   base64.StdEncoding.EncodeToString(kp.PrivateKey),
	}
}

// Zero clears the private key.
func (kp *KeyPair) Zero() {
	seed.Zero(kp.PrivateKey)
}

// Export is the key material interchange record.
type Export struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
	Password   string `json:"password"`
}
