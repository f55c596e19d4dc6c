package signer_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-ethwallet/internal/wallet/signer"
	"github/chapool/go-ethwallet/internal/wallet/transaction"
	"pgregory.net/rapid"
)

const (
	account0Key = "1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727"

	goldenSigned   = "F85F800182520894000000000000000000000000000000000000000080801BA033F443D859B6ED136F73C1607C979B2D7E60B2A36C15158DF61A3AE09DAE222FA057466FC200CB5EA1F2DBE0C96679815D11E4416DE4C274920A36086BFC3DFDFA"
	transferSigned = "F86B098504A817C8008252089478839F6054D7ED13918BAE0473BA31B1CA9D726587038D7EA4C68000801BA01ECDB23EB2BCD12ABF2ADB18C8F6C31EECFA2FCEE85F859A2098146FA0F5D5A3A03E8192EF32F45F2CF68F40DDCF582A6DBE064CC281A2D085FC0F2474F4968DBB"
)

var account0 = common.HexToAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94")

func mustKey(t *testing.T) []byte {
	t.Helper()

	key, err := hex.DecodeString(account0Key)
	require.NoError(t, err)
	return key
}

func TestSignGolden(t *testing.T) {
	to := common.Address{}
	unsigned := &transaction.Transaction{
		GasPrice: big.NewInt(1),
		GasLimit: 21000,
		To:       &to,
		Value:    big.NewInt(0),
	}

	signed, err := signer.Sign(unsigned, mustKey(t))
	require.NoError(t, err)

	encoded, err := transaction.EncodeToHex(signed)
	require.NoError(t, err)
	assert.Equal(t, goldenSigned, encoded)

	assert.False(t, unsigned.IsSigned(), "input must stay unsigned")
	assert.Equal(t, int64(27), signed.Signature.V.Int64())
}

func TestSignTransfer(t *testing.T) {
	to := common.HexToAddress("0x78839F6054d7ed13918bAe0473BA31b1Ca9D7265")
	unsigned := &transaction.Transaction{
		Nonce:    9,
		GasPrice: big.NewInt(20_000_000_000),
		GasLimit: 21000,
		To:       &to,
		Value:    big.NewInt(1_000_000_000_000_000),
	}

	signed, err := signer.SignAs(unsigned, mustKey(t), account0)
	require.NoError(t, err)

	encoded, err := transaction.EncodeToHex(signed)
	require.NoError(t, err)
	assert.Equal(t, transferSigned, encoded)

	sender, err := signer.Sender(signed)
	require.NoError(t, err)
	assert.Equal(t, account0, sender)
}

func TestSignReplacesExistingSignature(t *testing.T) {
	signed, err := transaction.DecodeHex(goldenSigned)
	require.NoError(t, err)

	tampered := signed.WithSignature(transaction.Signature{V: big.NewInt(28), R: big.NewInt(1), S: big.NewInt(1)})

	resigned, err := signer.Sign(tampered, mustKey(t))
	require.NoError(t, err)

	encoded, err := transaction.EncodeToHex(resigned)
	require.NoError(t, err)
	assert.Equal(t, goldenSigned, encoded)
}

func TestSignAsMismatch(t *testing.T) {
	tx := &transaction.Transaction{GasPrice: big.NewInt(1), GasLimit: 21000, Value: big.NewInt(0)}

	_, err := signer.SignAs(tx, mustKey(t), common.HexToAddress("0x78839F6054d7ed13918bAe0473BA31b1Ca9D7265"))
	require.ErrorIs(t, err, signer.ErrSigningKeyMismatch)
}

func TestSignRejectsInvalidKeys(t *testing.T) {
	tx := &transaction.Transaction{GasPrice: big.NewInt(1), GasLimit: 21000, Value: big.NewInt(0)}

	for name, key := range map[string][]byte{
		"empty":      nil,
		"short":      mustKey(t)[:31],
		"zero":       make([]byte, 32),
		"curveOrder": crypto.S256().Params().N.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := signer.Sign(tx, key)
			require.ErrorIs(t, err, signer.ErrSigningFailure)
			if len(key) > 0 {
				assert.NotContains(t, err.Error(), hex.EncodeToString(key))
			}
		})
	}
}

func TestSignRejectsMalformedTransaction(t *testing.T) {
	tx := &transaction.Transaction{GasPrice: big.NewInt(-1)}

	_, err := signer.Sign(tx, mustKey(t))
	require.ErrorIs(t, err, transaction.ErrMalformedTransaction)
}

func TestSignMatchesGoEthereum(t *testing.T) {
	key, err := crypto.ToECDSA(mustKey(t))
	require.NoError(t, err)

	to := common.HexToAddress("0x78839F6054d7ed13918bAe0473BA31b1Ca9D7265")
	reference, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    42,
		GasPrice: big.NewInt(3_000_000_000),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(12345),
		Data:     []byte("memo"),
	}), types.HomesteadSigner{}, key)
	require.NoError(t, err)

	want, err := reference.MarshalBinary()
	require.NoError(t, err)

	signed, err := signer.Sign(&transaction.Transaction{
		Nonce:    42,
		GasPrice: big.NewInt(3_000_000_000),
		GasLimit: 21000,
		To:       &to,
		Value:    big.NewInt(12345),
		Data:     []byte("memo"),
	}, mustKey(t))
	require.NoError(t, err)

	got, err := transaction.EncodeSigned(signed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSignatureProperties(t *testing.T) {
	halfOrder := new(big.Int).Rsh(crypto.S256().Params().N, 1)

	rapid.Check(t, func(t *rapid.T) {
		keyBytes := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "key")
		key, err := crypto.ToECDSA(keyBytes)
		if err != nil {
			t.Skip("not a valid secp256k1 scalar")
		}

		tx := &transaction.Transaction{
			Nonce:    rapid.Uint64().Draw(t, "nonce"),
			GasPrice: new(big.Int).SetBytes(rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "gasPrice")),
			GasLimit: rapid.Uint64().Draw(t, "gasLimit"),
			Value:    new(big.Int).SetBytes(rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "value")),
			Data:     rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data"),
		}

		signed, err := signer.Sign(tx, keyBytes)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		if signed.Signature.S.Cmp(halfOrder) > 0 {
			t.Fatalf("s is not canonical: %s", signed.Signature.S)
		}
		if v := signed.Signature.V.Int64(); v != 27 && v != 28 {
			t.Fatalf("unexpected v %d", v)
		}

		sender, err := signer.Sender(signed)
		if err != nil {
			t.Fatalf("sender: %v", err)
		}
		if want := crypto.PubkeyToAddress(key.PublicKey); sender != want {
			t.Fatalf("recovered %s, want %s", sender, want)
		}
	})
}

func TestSenderRejectsUnsupportedV(t *testing.T) {
	signed, err := transaction.DecodeHex(goldenSigned)
	require.NoError(t, err)

	_, err = signer.Sender(signed.WithoutSignature())
	require.ErrorIs(t, err, signer.ErrSigningFailure)

	// EIP-155 style v for chain id 1
	eip155 := signed.WithSignature(transaction.Signature{V: big.NewInt(37), R: signed.Signature.R, S: signed.Signature.S})
	_, err = signer.Sender(eip155)
	require.ErrorIs(t, err, signer.ErrSigningFailure)

	highS := signed.WithSignature(transaction.Signature{
		V: signed.Signature.V,
		R: signed.Signature.R,
		S: new(big.Int).Sub(crypto.S256().Params().N, signed.Signature.S),
	})
	_, err = signer.Sender(highS)
	require.ErrorIs(t, err, signer.ErrSigningFailure)
}
