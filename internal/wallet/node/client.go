// Package node talks to an Ethereum JSON-RPC endpoint for the three lookups a
// transfer needs: gas price, account nonce and raw transaction submission.
package node

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrNodeCommunication wraps every transport or node-side failure.
var ErrNodeCommunication = errors.New("node communication error")

// healthCheckInterval is how long a passed health check is trusted.
const healthCheckInterval = 5 * time.Second

// Client is the node collaborator used by the transfer builder and the wallet service.
type Client interface {
	GasPrice(ctx context.Context) (*big.Int, error)

	// TransactionCount returns the number of transactions sent from address at the latest block.
	TransactionCount(ctx context.Context, address common.Address) (uint64, error)

	// SubmitRawTransaction broadcasts a signed encoding and returns the hash reported by the node.
	SubmitRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
}

// RPCClient implements Client over one or more JSON-RPC URLs and fails over between them.
type RPCClient struct {
	urls    []string
	timeout time.Duration

	mu        sync.Mutex
	clients   []*ethclient.Client
	current   int
	checkedAt time.Time
}

var _ Client = (*RPCClient)(nil)

// NewRPCClient dials every url. Dial failures are logged and retried on use;
// only a configuration where no url can be dialed is an error.
// A zero timeout leaves request deadlines to the caller's context.
func NewRPCClient(urls []string, timeout time.Duration) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, errors.Wrap(ErrNodeCommunication, "at least one RPC URL is required")
	}

	clients := make([]*ethclient.Client, 0, len(urls))
	dialed := 0
	for _, url := range urls {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			clients = append(clients, nil)
			continue
		}
		clients = append(clients, client)
		dialed++
	}

	if dialed == 0 {
		return nil, errors.Wrap(ErrNodeCommunication, "failed to connect to any RPC node")
	}

	return &RPCClient{
		urls:    urls,
		timeout: timeout,
		clients: clients,
	}, nil
}

// Close closes all client connections.
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, client := range c.clients {
		if client != nil {
			client.Close()
			c.clients[i] = nil
		}
	}
}

func (c *RPCClient) GasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	done := observe("eth_gasPrice")

	client, err := c.getClient(ctx)
	if err != nil {
		done(err)
		return nil, err
	}

	price, err := client.SuggestGasPrice(ctx)
	done(err)
	if err != nil {
		c.invalidate()
		return nil, errors.Wrapf(ErrNodeCommunication, "failed to get gas price: %v", err)
	}

	return price, nil
}

func (c *RPCClient) TransactionCount(ctx context.Context, address common.Address) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	done := observe("eth_getTransactionCount")

	client, err := c.getClient(ctx)
	if err != nil {
		done(err)
		return 0, err
	}

	// a nil block number asks for "latest"
	nonce, err := client.NonceAt(ctx, address, nil)
	done(err)
	if err != nil {
		c.invalidate()
		return 0, errors.Wrapf(ErrNodeCommunication, "failed to get transaction count of %s: %v", address.Hex(), err)
	}

	return nonce, nil
}

func (c *RPCClient) SubmitRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	done := observe("eth_sendRawTransaction")

	client, err := c.getClient(ctx)
	if err != nil {
		done(err)
		return common.Hash{}, err
	}

	var hash common.Hash
	err = client.Client().CallContext(ctx, &hash, "eth_sendRawTransaction", "0x"+strings.ToUpper(hex.EncodeToString(raw)))
	done(err)
	if err != nil {
		c.invalidate()
		return common.Hash{}, errors.Wrapf(ErrNodeCommunication, "failed to send transaction: %v", err)
	}

	return hash, nil
}

// ChainID is used by the health check and by the readiness probe.
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		c.invalidate()
		return nil, errors.Wrapf(ErrNodeCommunication, "failed to get chain ID: %v", err)
	}

	return chainID, nil
}

// getClient returns the first healthy client, starting at the last one that worked.
// The lock is never held across a network call.
func (c *RPCClient) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	start := c.current
	if client := c.clients[start]; client != nil && time.Since(c.checkedAt) < healthCheckInterval {
		c.mu.Unlock()
		return client, nil
	}
	c.mu.Unlock()

	for i := range c.urls {
		idx := (start + i) % len(c.urls)

		client, err := c.clientAt(idx)
		if err != nil {
			log.Warn().
				Str("url", c.urls[idx]).
				Err(err).
				Msg("RPC client reconnect failed")
			continue
		}

		// simple health check: ask for the chain id
		if _, err := client.ChainID(ctx); err != nil {
			log.Warn().
				Str("url", c.urls[idx]).
				Err(err).
				Msg("RPC client health check failed, trying next node")
			continue
		}

		c.markHealthy(idx)

		return client, nil
	}

	return nil, errors.Wrap(ErrNodeCommunication, "all RPC clients are unavailable")
}

// clientAt returns the client of urls[idx], dialing it again if it was never connected.
func (c *RPCClient) clientAt(idx int) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clients[idx] == nil {
		client, err := ethclient.Dial(c.urls[idx])
		if err != nil {
			return nil, err
		}
		c.clients[idx] = client
	}

	return c.clients[idx], nil
}

func (c *RPCClient) markHealthy(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx != c.current {
		log.Info().
			Str("url", c.urls[idx]).
			Msg("Switched to RPC node")
		c.current = idx
	}
	c.checkedAt = time.Now()
}

// invalidate forces a health check before the next request.
func (c *RPCClient) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkedAt = time.Time{}
}

func (c *RPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.timeout)
}
