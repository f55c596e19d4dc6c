package keystore

import (
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// Decrypt opens a keystore v3 JSON document and returns the 32-byte private key.
func Decrypt(keyJSON []byte, password string) ([]byte, error) {
	var keystoreJSON KeystoreJSON
	if err := json.Unmarshal(keyJSON, &keystoreJSON); err != nil {
		return nil, errors.Wrap(ErrDecrypt, "keystore is not valid JSON")
	}

	params := keystoreJSON.Crypto
	switch {
	case keystoreJSON.Version != version:
		return nil, errors.Wrapf(ErrDecrypt, "unsupported keystore version %d", keystoreJSON.Version)
	case params.Cipher != cipherName:
		return nil, errors.Wrapf(ErrDecrypt, "unsupported cipher %q", params.Cipher)
	case params.KDF != kdfName:
		return nil, errors.Wrapf(ErrDecrypt, "unsupported KDF %q", params.KDF)
	case params.KDFParams.DKLen != 2*aesKeyLength:
		return nil, errors.Wrapf(ErrDecrypt, "unsupported derived key length %d", params.KDFParams.DKLen)
	}

	salt, err := hex.DecodeString(params.KDFParams.Salt)
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, "failed to decode salt")
	}

	//nolint:varnamelen // iv is a common abbreviation for initialization vector
	iv, err := hex.DecodeString(params.CipherParams.IV)
	if err != nil || len(iv) != ivLength {
		return nil, errors.Wrap(ErrDecrypt, "failed to decode IV")
	}

	ciphertext, err := hex.DecodeString(params.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(params.MAC)
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, "failed to decode MAC")
	}

	derivedKey, err := scrypt.Key(
		[]byte(password),
		salt,
		params.KDFParams.N,
		params.KDFParams.R,
		params.KDFParams.P,
		params.KDFParams.DKLen,
	)
	if err != nil {
		return nil, errors.Wrapf(ErrDecrypt, "failed to derive key: %v", err)
	}

	mac := calculateMAC(derivedKey[aesKeyLength:], ciphertext)
	if subtle.ConstantTimeCompare(mac, expectedMAC) != 1 {
		return nil, errors.Wrap(ErrDecrypt, "MAC mismatch")
	}

	privateKey, err := aes128CTR(derivedKey[:aesKeyLength], iv, ciphertext)
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, err.Error())
	}

	if _, err := crypto.ToECDSA(privateKey); err != nil {
		return nil, errors.Wrap(ErrDecrypt, "decrypted data is not a private key")
	}

	return privateKey, nil
}
