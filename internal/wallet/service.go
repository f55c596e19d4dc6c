package wallet

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/go-ethwallet/internal/config"
	"github/chapool/go-ethwallet/internal/util"
	"github/chapool/go-ethwallet/internal/wallet/address"
	"github/chapool/go-ethwallet/internal/wallet/keystore"
	"github/chapool/go-ethwallet/internal/wallet/node"
	"github/chapool/go-ethwallet/internal/wallet/seed"
	"github/chapool/go-ethwallet/internal/wallet/signer"
	"github/chapool/go-ethwallet/internal/wallet/transaction"
	"github/chapool/go-ethwallet/internal/wallet/transfer"
)

// Service exposes key derivation and the transfer lifecycle as string-in, string-out operations.
type Service interface {
	// GenerateKeypair derives the key pair of account on m/44'/60'/account'/0/0 and exports it
	GenerateKeypair(ctx context.Context, mnemonic string, passphrase string, account uint32) (*address.Export, error)

	// ExportKeystore derives the key pair of account and seals it in a keystore v3 document
	ExportKeystore(ctx context.Context, mnemonic string, passphrase string, account uint32, password string) ([]byte, error)

	// DecodeTransaction decodes an unsigned or signed transaction from hex
	DecodeTransaction(ctx context.Context, encoded string) (*DecodedTransaction, error)

	// CreateTransferTransaction builds an unsigned transfer of amount ether and returns it as hex
	CreateTransferTransaction(ctx context.Context, from string, to string, amount string) (string, error)

	// SignTransaction signs an encoded transaction with a hex private key.
	// When from is not empty the key must belong to that address.
	SignTransaction(ctx context.Context, privateKey string, encoded string, from string) (string, error)

	// SignTransactionWithKeystore is SignTransaction with the key taken from a keystore v3 document
	SignTransactionWithKeystore(ctx context.Context, keyJSON []byte, password string, encoded string, from string) (string, error)

	// SendTransaction submits a signed transaction and returns the hash reported by the node
	SendTransaction(ctx context.Context, encoded string) (string, error)
}

type service struct {
	node           node.Client
	builder        *transfer.Builder
	strictMnemonic bool
	scryptParams   keystore.ScryptParams
}

// NewService creates a new wallet Service on top of client
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(client node.Client, cfg config.Server) (Service, error) {
	if client == nil {
		return nil, errors.New("node client is required")
	}

	return &service{
		node:           client,
		builder:        transfer.NewBuilder(client, cfg.Wallet.GasLimit),
		strictMnemonic: cfg.Wallet.StrictMnemonic,
		scryptParams:   keystore.NewScryptParams(cfg.Keystore.ScryptN, cfg.Keystore.ScryptP),
	}, nil
}

// begin logs the start of an operation and returns a logger bound to it plus a func logging its end.
func begin(ctx context.Context, operation string) (*zerolog.Logger, func(err error)) {
	log := util.LogFromContext(ctx).With().
		Str("component", "wallet").
		Str("operation", operation).
		Str("operation_id", uuid.NewString()).
		Logger()

	start := time.Now()
	log.Debug().Msg("Operation started")

	return &log, func(err error) {
		if err != nil {
			log.Debug().Err(err).Dur("duration", time.Since(start)).Msg("Operation failed")
			return
		}
		log.Debug().Dur("duration", time.Since(start)).Msg("Operation finished")
	}
}

func (s *service) deriveKeyPair(mnemonic string, passphrase string, account uint32) (*address.KeyPair, error) {
	if s.strictMnemonic {
		if err := seed.ValidateMnemonic(mnemonic); err != nil {
			return nil, err
		}
	}

	return address.Derive(mnemonic, passphrase, account)
}

func (s *service) GenerateKeypair(ctx context.Context, mnemonic string, passphrase string, account uint32) (_ *address.Export, err error) {
	log, end := begin(ctx, "generate_keypair")
	defer func() { end(err) }()

	keyPair, err := s.deriveKeyPair(mnemonic, passphrase, account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key pair")
	}
	defer keyPair.Zero()

	export := keyPair.Export()
	log.Info().
		Uint32("account", account).
		Str("address", export.Address).
		Msg("Derived key pair")

	return &export, nil
}

func (s *service) ExportKeystore(ctx context.Context, mnemonic string, passphrase string, account uint32, password string) (_ []byte, err error) {
	log, end := begin(ctx, "export_keystore")
	defer func() { end(err) }()

	keyPair, err := s.deriveKeyPair(mnemonic, passphrase, account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key pair")
	}
	defer keyPair.Zero()

	keyJSON, err := keystore.Encrypt(keyPair.PrivateKey, password, s.scryptParams)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt key")
	}

	log.Info().
		Uint32("account", account).
		Str("address", keyPair.Address().Hex()).
		Msg("Exported keystore")

	return keyJSON, nil
}

func (s *service) DecodeTransaction(ctx context.Context, encoded string) (_ *DecodedTransaction, err error) {
	log, end := begin(ctx, "decode_transaction")
	defer func() { end(err) }()

	tx, err := transaction.DecodeHex(encoded)
	if err != nil {
		return nil, err
	}

	decoded := &DecodedTransaction{
		Nonce:      strconv.FormatUint(tx.Nonce, 10),
		GasPrice:   bigString(tx.GasPrice),
		GasLimit:   strconv.FormatUint(tx.GasLimit, 10),
		Value:      bigString(tx.Value),
		ValueEther: transfer.FormatEther(tx.Value),
		Data:       transaction.EncodeHex(tx.Data),
		Signed:     tx.IsSigned(),
	}
	if tx.To != nil {
		decoded.ToAddress = tx.To.Hex()
	}

	if !tx.IsSigned() {
		return decoded, nil
	}

	decoded.V = bigString(tx.Signature.V)
	decoded.R = scalarHex(tx.Signature.R.Bytes())
	decoded.S = scalarHex(tx.Signature.S.Bytes())

	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	decoded.Hash = hash.Hex()

	// signatures with a chain id in v still decode, they just have no legacy sender
	if from, err := signer.Sender(tx); err == nil {
		decoded.From = from.Hex()
	} else {
		log.Debug().Err(err).Msg("Could not recover sender")
	}

	return decoded, nil
}

func (s *service) CreateTransferTransaction(ctx context.Context, from string, to string, amount string) (_ string, err error) {
	log, end := begin(ctx, "create_transfer_transaction")
	defer func() { end(err) }()

	fromAddress, err := address.Parse(from)
	if err != nil {
		return "", errors.Wrap(err, "invalid from address")
	}

	toAddress, err := address.Parse(to)
	if err != nil {
		return "", errors.Wrap(err, "invalid to address")
	}

	tx, err := s.builder.Build(log.WithContext(ctx), fromAddress, toAddress, amount)
	if err != nil {
		return "", err
	}

	return transaction.EncodeToHex(tx)
}

func (s *service) SignTransaction(ctx context.Context, privateKey string, encoded string, from string) (_ string, err error) {
	log, end := begin(ctx, "sign_transaction")
	defer func() { end(err) }()

	keyPair, err := address.ParsePrivateKey(privateKey)
	if err != nil {
		return "", errors.Wrap(signer.ErrSigningFailure, err.Error())
	}
	defer keyPair.Zero()

	return s.sign(log, keyPair.PrivateKey, encoded, from)
}

func (s *service) SignTransactionWithKeystore(ctx context.Context, keyJSON []byte, password string, encoded string, from string) (_ string, err error) {
	log, end := begin(ctx, "sign_transaction_with_keystore")
	defer func() { end(err) }()

	privateKey, err := keystore.Decrypt(keyJSON, password)
	if err != nil {
		return "", err
	}
	defer seed.Zero(privateKey)

	return s.sign(log, privateKey, encoded, from)
}

func (s *service) sign(log *zerolog.Logger, privateKey []byte, encoded string, from string) (string, error) {
	tx, err := transaction.DecodeHex(encoded)
	if err != nil {
		return "", err
	}

	var signed *transaction.Transaction
	if strings.TrimSpace(from) == "" {
		signed, err = signer.Sign(tx, privateKey)
	} else {
		expected, parseErr := address.Parse(from)
		if parseErr != nil {
			return "", errors.Wrap(parseErr, "invalid from address")
		}
		signed, err = signer.SignAs(tx, privateKey, expected)
	}
	if err != nil {
		return "", err
	}

	hash, err := signed.Hash()
	if err != nil {
		return "", err
	}

	log.Info().
		Uint64("nonce", signed.Nonce).
		Str("tx_hash", hash.Hex()).
		Msg("Signed transaction")

	return transaction.EncodeToHex(signed)
}

func (s *service) SendTransaction(ctx context.Context, encoded string) (_ string, err error) {
	log, end := begin(ctx, "send_transaction")
	defer func() { end(err) }()

	raw, err := transaction.ParseHex(encoded)
	if err != nil {
		return "", err
	}

	tx, err := transaction.Decode(raw)
	if err != nil {
		return "", err
	}
	if !tx.IsSigned() {
		return "", errors.Wrap(transaction.ErrMalformedTransaction, "transaction is not signed")
	}

	hash, err := s.node.SubmitRawTransaction(ctx, raw)
	if err != nil {
		log.Error().Err(err).Uint64("nonce", tx.Nonce).Msg("Failed to submit transaction")
		return "", err
	}

	log.Info().
		Uint64("nonce", tx.Nonce).
		Str("tx_hash", hash.Hex()).
		Msg("Submitted transaction")

	return hash.Hex(), nil
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}

	return n.String()
}

// scalarHex renders a signature scalar as 64 uppercase hex digits.
func scalarHex(b []byte) string {
	padded := make([]byte, 32)
	copy(padded[len(padded)-len(b):], b)

	return transaction.EncodeHex(padded)
}
