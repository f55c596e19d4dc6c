package transaction_test

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-ethwallet/internal/wallet/rlp"
	"github/chapool/go-ethwallet/internal/wallet/transaction"
	"pgregory.net/rapid"
)

const (
	goldenUnsigned = "DC80018252089400000000000000000000000000000000000000008080"
	goldenSigned   = "F85F800182520894000000000000000000000000000000000000000080801BA033F443D859B6ED136F73C1607C979B2D7E60B2A36C15158DF61A3AE09DAE222FA057466FC200CB5EA1F2DBE0C96679815D11E4416DE4C274920A36086BFC3DFDFA"

	transferUnsigned = "E8098504A817C8008252089478839F6054D7ED13918BAE0473BA31B1CA9D726587038D7EA4C6800080"
	transferSigned   = "F86B098504A817C8008252089478839F6054D7ED13918BAE0473BA31B1CA9D726587038D7EA4C68000801BA01ECDB23EB2BCD12ABF2ADB18C8F6C31EECFA2FCEE85F859A2098146FA0F5D5A3A03E8192EF32F45F2CF68F40DDCF582A6DBE064CC281A2D085FC0F2474F4968DBB"
)

func goldenTransaction() *transaction.Transaction {
	to := common.Address{}
	return &transaction.Transaction{
		Nonce:    0,
		GasPrice: big.NewInt(1),
		GasLimit: 21000,
		To:       &to,
		Value:    big.NewInt(0),
	}
}

func TestEncodeUnsignedGolden(t *testing.T) {
	raw, err := transaction.EncodeUnsigned(goldenTransaction())
	require.NoError(t, err)
	assert.Equal(t, goldenUnsigned, transaction.EncodeHex(raw))

	hash, err := goldenTransaction().SigningHash()
	require.NoError(t, err)
	assert.Equal(t, "0x23b038a005993185979cfe14a7d626867b260f800c7c378ecb6a70d87311ee03", hash.Hex())
}

func TestEncodeUnsignedIgnoresSignature(t *testing.T) {
	signed, err := transaction.DecodeHex(goldenSigned)
	require.NoError(t, err)

	raw, err := transaction.EncodeUnsigned(signed)
	require.NoError(t, err)
	assert.Equal(t, goldenUnsigned, transaction.EncodeHex(raw))
}

func TestDecodeSignedGolden(t *testing.T) {
	tx, err := transaction.DecodeHex(goldenSigned)
	require.NoError(t, err)

	require.True(t, tx.IsSigned())
	assert.Equal(t, uint64(0), tx.Nonce)
	assert.Equal(t, int64(1), tx.GasPrice.Int64())
	assert.Equal(t, uint64(21000), tx.GasLimit)
	require.NotNil(t, tx.To)
	assert.Equal(t, common.Address{}, *tx.To)
	assert.Zero(t, tx.Value.Sign())
	assert.Empty(t, tx.Data)
	assert.Equal(t, int64(27), tx.Signature.V.Int64())
	assert.Equal(t, "33f443d859b6ed136f73c1607c979b2d7e60b2a36c15158df61a3ae09dae222f", tx.Signature.R.Text(16))
	assert.Equal(t, "57466fc200cb5ea1f2dbe0c96679815d11e4416de4c274920a36086bfc3dfdfa", tx.Signature.S.Text(16))

	encoded, err := transaction.EncodeToHex(tx)
	require.NoError(t, err)
	assert.Equal(t, goldenSigned, encoded)
}

func TestDecodeTransfer(t *testing.T) {
	unsigned, err := transaction.DecodeHex(transferUnsigned)
	require.NoError(t, err)

	assert.False(t, unsigned.IsSigned())
	assert.Equal(t, uint64(9), unsigned.Nonce)
	assert.Equal(t, "20000000000", unsigned.GasPrice.String())
	assert.Equal(t, uint64(21000), unsigned.GasLimit)
	assert.Equal(t, "0x78839F6054d7ed13918bAe0473BA31b1Ca9D7265", unsigned.To.Hex())
	assert.Equal(t, "1000000000000000", unsigned.Value.String())

	signed, err := transaction.DecodeHex(transferSigned)
	require.NoError(t, err)

	hash, err := signed.Hash()
	require.NoError(t, err)
	assert.Equal(t, "0x376d09f4fc1b020554ff63ed15a141b5f907fe3217d4f33cac871dd184400bf2", hash.Hex())

	assertTransactionsEqual(t, unsigned, signed.WithoutSignature())
}

func TestDecodeHexTolerance(t *testing.T) {
	for _, input := range []string{
		goldenUnsigned,
		strings.ToLower(goldenUnsigned),
		"0x" + goldenUnsigned,
		"0X" + strings.ToLower(goldenUnsigned),
		"  0x" + goldenUnsigned + "\n",
	} {
		tx, err := transaction.DecodeHex(input)
		require.NoError(t, err)
		assertTransactionsEqual(t, goldenTransaction(), tx)
	}
}

func TestDecodeContractCreation(t *testing.T) {
	tx := &transaction.Transaction{
		Nonce:    1,
		GasPrice: big.NewInt(2),
		GasLimit: 3,
		Value:    big.NewInt(4),
		Data:     []byte{0x60, 0x80},
	}

	raw, err := transaction.EncodeUnsigned(tx)
	require.NoError(t, err)

	decoded, err := transaction.Decode(raw)
	require.NoError(t, err)
	assert.Nil(t, decoded.To)
	assert.Equal(t, []byte{0x60, 0x80}, decoded.Data)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name       string
		item       rlp.Item
		isEncoding bool
	}{
		{"top level string", rlp.String("hello"), false},
		{"five fields", rlp.List{rlp.Uint(0), rlp.Uint(1), rlp.Uint(2), rlp.String{}, rlp.Uint(0)}, false},
		{"seven fields", rlp.List{rlp.Uint(0), rlp.Uint(1), rlp.Uint(2), rlp.String{}, rlp.Uint(0), rlp.String{}, rlp.Uint(27)}, false},
		{"nested list field", rlp.List{rlp.Uint(0), rlp.List{}, rlp.Uint(2), rlp.String{}, rlp.Uint(0), rlp.String{}}, false},
		{"short to", rlp.List{rlp.Uint(0), rlp.Uint(1), rlp.Uint(2), rlp.String(make([]byte, 19)), rlp.Uint(0), rlp.String{}}, false},
		{"nonce over 64 bits", rlp.List{rlp.String{1, 0, 0, 0, 0, 0, 0, 0, 0}, rlp.Uint(1), rlp.Uint(2), rlp.String{}, rlp.Uint(0), rlp.String{}}, false},
		{"gas price over 256 bits", rlp.List{rlp.Uint(0), rlp.String(append([]byte{1}, make([]byte, 32)...)), rlp.Uint(2), rlp.String{}, rlp.Uint(0), rlp.String{}}, false},
		{"non canonical nonce", rlp.List{rlp.String{0x00}, rlp.Uint(1), rlp.Uint(2), rlp.String{}, rlp.Uint(0), rlp.String{}}, true},
		{"non canonical r", rlp.List{rlp.Uint(0), rlp.Uint(1), rlp.Uint(2), rlp.String{}, rlp.Uint(0), rlp.String{}, rlp.Uint(27), rlp.String{0x00, 0x01}, rlp.Uint(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transaction.Decode(rlp.Encode(tt.item))
			require.ErrorIs(t, err, transaction.ErrMalformedTransaction)
			if tt.isEncoding {
				require.ErrorIs(t, err, rlp.ErrMalformedEncoding)
			}
		})
	}

	// structurally broken RLP is both kinds at once
	_, err := transaction.DecodeHex(goldenUnsigned[:len(goldenUnsigned)-2])
	require.ErrorIs(t, err, transaction.ErrMalformedTransaction)
	require.ErrorIs(t, err, rlp.ErrMalformedEncoding)

	_, err = transaction.DecodeHex(goldenUnsigned + "00")
	require.ErrorIs(t, err, rlp.ErrMalformedEncoding)

	_, err = transaction.DecodeHex("0xZZ")
	require.ErrorIs(t, err, transaction.ErrMalformedTransaction)
}

func TestEncodeErrors(t *testing.T) {
	_, err := transaction.EncodeSigned(goldenTransaction())
	require.ErrorIs(t, err, transaction.ErrMalformedTransaction)

	tx := goldenTransaction()
	tx.Value = big.NewInt(-1)
	_, err = transaction.EncodeUnsigned(tx)
	require.ErrorIs(t, err, transaction.ErrMalformedTransaction)

	tx = goldenTransaction()
	tx.Signature = &transaction.Signature{V: big.NewInt(27), R: new(big.Int).Lsh(big.NewInt(1), 256), S: big.NewInt(1)}
	_, err = transaction.EncodeSigned(tx)
	require.ErrorIs(t, err, transaction.ErrMalformedTransaction)
}

func TestNilAmountsEncodeAsZero(t *testing.T) {
	tx := goldenTransaction()
	tx.Value = nil

	raw, err := transaction.EncodeUnsigned(tx)
	require.NoError(t, err)
	assert.Equal(t, goldenUnsigned, transaction.EncodeHex(raw))
}

func TestWithSignatureDoesNotMutate(t *testing.T) {
	unsigned := goldenTransaction()
	signed := unsigned.WithSignature(transaction.Signature{V: big.NewInt(27), R: big.NewInt(1), S: big.NewInt(2)})

	assert.False(t, unsigned.IsSigned())
	assert.True(t, signed.IsSigned())

	signed.To[0] = 0xff
	assert.Equal(t, common.Address{}, *unsigned.To)
}

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tx := transactionGenerator(rapid.Bool().Draw(t, "signed")).Draw(t, "tx")

		raw, err := transaction.Encode(tx)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		decoded, err := transaction.Decode(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}

		if msg := diff(tx, decoded); msg != "" {
			t.Fatal(msg)
		}
	})
}

func TestEncodeMatchesGoEthereum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tx := transactionGenerator(true).Draw(t, "tx")

		reference := types.NewTx(&types.LegacyTx{
			Nonce:    tx.Nonce,
			GasPrice: tx.GasPrice,
			Gas:      tx.GasLimit,
			To:       tx.To,
			Value:    tx.Value,
			Data:     tx.Data,
			V:        tx.Signature.V,
			R:        tx.Signature.R,
			S:        tx.Signature.S,
		})

		want, err := reference.MarshalBinary()
		if err != nil {
			t.Fatalf("go-ethereum encode: %v", err)
		}

		got, err := transaction.EncodeSigned(tx)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("signed encoding mismatch:\n got %x\nwant %x", got, want)
		}

		signingHash, err := tx.SigningHash()
		if err != nil {
			t.Fatalf("signing hash: %v", err)
		}
		if wantHash := (types.HomesteadSigner{}).Hash(reference); signingHash != wantHash {
			t.Fatalf("signing hash mismatch: got %s, want %s", signingHash, wantHash)
		}
	})
}

func transactionGenerator(signed bool) *rapid.Generator[*transaction.Transaction] {
	return rapid.Custom(func(t *rapid.T) *transaction.Transaction {
		tx := &transaction.Transaction{
			Nonce:    rapid.Uint64().Draw(t, "nonce"),
			GasPrice: bigGenerator().Draw(t, "gasPrice"),
			GasLimit: rapid.Uint64().Draw(t, "gasLimit"),
			Value:    bigGenerator().Draw(t, "value"),
			Data:     rapid.SliceOfN(rapid.Byte(), 0, 100).Draw(t, "data"),
		}

		if rapid.Bool().Draw(t, "hasTo") {
			to := common.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "to"))
			tx.To = &to
		}

		if signed {
			tx.Signature = &transaction.Signature{
				V: bigGenerator().Draw(t, "v"),
				R: bigGenerator().Draw(t, "r"),
				S: bigGenerator().Draw(t, "s"),
			}
		}

		return tx
	})
}

func bigGenerator() *rapid.Generator[*big.Int] {
	return rapid.Custom(func(t *rapid.T) *big.Int {
		return new(big.Int).SetBytes(rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "bytes"))
	})
}

func assertTransactionsEqual(t *testing.T, want, got *transaction.Transaction) {
	t.Helper()

	if msg := diff(want, got); msg != "" {
		t.Fatal(msg)
	}
}

func diff(want, got *transaction.Transaction) string {
	switch {
	case want.Nonce != got.Nonce:
		return "nonce differs"
	case want.GasPrice.Cmp(got.GasPrice) != 0:
		return "gas price differs"
	case want.GasLimit != got.GasLimit:
		return "gas limit differs"
	case (want.To == nil) != (got.To == nil) || (want.To != nil && *want.To != *got.To):
		return "to differs"
	case want.Value.Cmp(got.Value) != 0:
		return "value differs"
	case !bytes.Equal(want.Data, got.Data):
		return "data differs"
	case want.IsSigned() != got.IsSigned():
		return "signed state differs"
	}

	if want.IsSigned() {
		switch {
		case want.Signature.V.Cmp(got.Signature.V) != 0:
			return "v differs"
		case want.Signature.R.Cmp(got.Signature.R) != 0:
			return "r differs"
		case want.Signature.S.Cmp(got.Signature.S) != 0:
			return "s differs"
		}
	}

	return ""
}
