package test

import (
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Node is an in-process JSON-RPC node answering the eth_ methods the wallet uses.
type Node struct {
	URL string

	mu           sync.Mutex
	chainID      *big.Int
	chainIDCalls int
	gasPrice     *big.Int
	nonces       map[common.Address]uint64
	submitted    [][]byte
	submitErr    error
	blockTags    []string
}

// WithTestNode starts a Node for the duration of closure.
func WithTestNode(t *testing.T, closure func(n *Node)) {
	t.Helper()

	closure(NewTestNode(t))
}

// NewTestNode starts a Node that is shut down with the test.
func NewTestNode(t *testing.T) *Node {
	t.Helper()

	n := &Node{
		chainID:  big.NewInt(1),
		gasPrice: big.NewInt(20_000_000_000),
		nonces:   make(map[common.Address]uint64),
	}

	server := rpc.NewServer()
	if err := server.RegisterName("eth", &ethAPI{node: n}); err != nil {
		t.Fatalf("failed to register eth API: %v", err)
	}

	httpServer := httptest.NewServer(server)
	t.Cleanup(func() {
		httpServer.Close()
		server.Stop()
	})

	n.URL = httpServer.URL

	return n
}

// NewUnreachableURL returns the URL of a server that is already closed.
func NewUnreachableURL(t *testing.T) string {
	t.Helper()

	httpServer := httptest.NewServer(nil)
	url := httpServer.URL
	httpServer.Close()

	return url
}

func (n *Node) SetGasPrice(price *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gasPrice = new(big.Int).Set(price)
}

func (n *Node) SetNonce(address common.Address, nonce uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nonces[address] = nonce
}

// FailSubmissions makes eth_sendRawTransaction return message as a JSON-RPC error.
func (n *Node) FailSubmissions(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitErr = errors.New(message)
}

// Submitted returns every raw transaction received so far.
func (n *Node) Submitted() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([][]byte, len(n.submitted))
	copy(out, n.submitted)

	return out
}

// BlockTags returns the block arguments of every eth_getTransactionCount call.
func (n *Node) BlockTags() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.blockTags...)
}

// ChainIDCalls returns how often eth_chainId was called.
func (n *Node) ChainIDCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.chainIDCalls
}

type ethAPI struct {
	node *Node
}

func (api *ethAPI) ChainId() *hexutil.Big { //nolint:revive,stylecheck // the RPC method is eth_chainId
	api.node.mu.Lock()
	defer api.node.mu.Unlock()

	api.node.chainIDCalls++

	return (*hexutil.Big)(new(big.Int).Set(api.node.chainID))
}

func (api *ethAPI) GasPrice() *hexutil.Big {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()

	return (*hexutil.Big)(new(big.Int).Set(api.node.gasPrice))
}

func (api *ethAPI) GetTransactionCount(address common.Address, block string) hexutil.Uint64 {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()

	api.node.blockTags = append(api.node.blockTags, block)

	return hexutil.Uint64(api.node.nonces[address])
}

func (api *ethAPI) SendRawTransaction(raw hexutil.Bytes) (common.Hash, error) {
	api.node.mu.Lock()
	defer api.node.mu.Unlock()

	if api.node.submitErr != nil {
		return common.Hash{}, api.node.submitErr
	}

	api.node.submitted = append(api.node.submitted, append([]byte(nil), raw...))

	return crypto.Keccak256Hash(raw), nil
}
