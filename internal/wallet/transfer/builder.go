// Package transfer builds unsigned value-transfer transactions from node state.
package transfer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-ethwallet/internal/util"
	"github/chapool/go-ethwallet/internal/wallet/node"
	"github/chapool/go-ethwallet/internal/wallet/transaction"
	"golang.org/x/sync/errgroup"
)

// DefaultGasLimit is the intrinsic gas of a plain value transfer.
const DefaultGasLimit uint64 = 21000

type Builder struct {
	node     node.Client
	gasLimit uint64
}

// NewBuilder returns a Builder that uses gasLimit for every transfer, or DefaultGasLimit when it is zero.
func NewBuilder(client node.Client, gasLimit uint64) *Builder {
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}

	return &Builder{
		node:     client,
		gasLimit: gasLimit,
	}
}

// Build returns an unsigned transaction moving amount ether from from to to.
// The gas price comes from the node and the nonce is from's transaction count at the latest block.
func (b *Builder) Build(ctx context.Context, from, to common.Address, amount string) (*transaction.Transaction, error) {
	value, err := ParseEther(amount)
	if err != nil {
		return nil, err
	}

	var (
		gasPrice *big.Int
		nonce    uint64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gasPrice, err = b.node.GasPrice(gctx)
		return errors.Wrap(err, "failed to get gas price")
	})
	g.Go(func() error {
		var err error
		nonce, err = b.node.TransactionCount(gctx, from)
		return errors.Wrap(err, "failed to get nonce")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Str("from", from.Hex()).
		Str("to", to.Hex()).
		Uint64("nonce", nonce).
		Str("gas_price", gasPrice.String()).
		Str("value", value.String()).
		Msg("Built transfer transaction")

	return &transaction.Transaction{
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: b.gasLimit,
		To:       &to,
		Value:    value,
	}, nil
}
