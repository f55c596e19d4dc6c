package node

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// LazyClient connects an RPCClient on the first request, so offline
// operations never dial the configured nodes.
type LazyClient struct {
	urls    []string
	timeout time.Duration

	mu     sync.Mutex
	client *RPCClient
}

var _ Client = (*LazyClient)(nil)

func NewLazyClient(urls []string, timeout time.Duration) *LazyClient {
	return &LazyClient{
		urls:    urls,
		timeout: timeout,
	}
}

// Connected reports whether a request has dialed the nodes yet.
func (c *LazyClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.client != nil
}

func (c *LazyClient) connect() (*RPCClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	// a failed connect is retried on the next request
	client, err := NewRPCClient(c.urls, c.timeout)
	if err != nil {
		return nil, err
	}
	c.client = client

	return client, nil
}

// Close closes the underlying client if one was connected.
func (c *LazyClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

func (c *LazyClient) GasPrice(ctx context.Context) (*big.Int, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}

	return client.GasPrice(ctx)
}

func (c *LazyClient) TransactionCount(ctx context.Context, address common.Address) (uint64, error) {
	client, err := c.connect()
	if err != nil {
		return 0, err
	}

	return client.TransactionCount(ctx, address)
}

func (c *LazyClient) SubmitRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	client, err := c.connect()
	if err != nil {
		return common.Hash{}, err
	}

	return client.SubmitRawTransaction(ctx, raw)
}
