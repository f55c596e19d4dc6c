package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	saltLength = 32
	ivLength   = aes.BlockSize
	// AES-128 uses the first half of the derived key, the MAC the second half
	aesKeyLength = 16
)

// Encrypt seals privateKey under password and returns the keystore v3 JSON document.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func Encrypt(privateKey []byte, password string, params ScryptParams) ([]byte, error) {
	ecdsaKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}

	if params.DKLen != 2*aesKeyLength {
		return nil, errors.Errorf("unsupported derived key length %d", params.DKLen)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	ciphertext, err := aes128CTR(derivedKey[:aesKeyLength], iv, privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt key")
	}

	keystoreJSON := KeystoreJSON{
		Address: hex.EncodeToString(crypto.PubkeyToAddress(ecdsaKey.PublicKey).Bytes()),
		Version: version,
		ID:      uuid.New().String(),
	}

	keystoreJSON.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	keystoreJSON.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	keystoreJSON.Crypto.Cipher = cipherName
	keystoreJSON.Crypto.KDF = kdfName
	keystoreJSON.Crypto.KDFParams.DKLen = params.DKLen
	keystoreJSON.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	keystoreJSON.Crypto.KDFParams.N = params.N
	keystoreJSON.Crypto.KDFParams.R = params.R
	keystoreJSON.Crypto.KDFParams.P = params.P
	keystoreJSON.Crypto.MAC = hex.EncodeToString(calculateMAC(derivedKey[aesKeyLength:], ciphertext))

	return json.Marshal(keystoreJSON)
}

// aes128CTR is its own inverse: it both encrypts and decrypts.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func aes128CTR(key []byte, iv []byte, input []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	output := make([]byte, len(input))
	cipher.NewCTR(block, iv).XORKeyStream(output, input)

	return output, nil
}

// calculateMAC is keccak256(derivedKey[16:32] ‖ ciphertext).
func calculateMAC(key []byte, ciphertext []byte) []byte {
	return crypto.Keccak256(key, ciphertext)
}
