package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-ethwallet/internal/config"
	"github/chapool/go-ethwallet/internal/test"
	"github/chapool/go-ethwallet/internal/util"
	"github/chapool/go-ethwallet/internal/util/command"
	"github/chapool/go-ethwallet/internal/wallet"
	"github/chapool/go-ethwallet/internal/wallet/node"
)

func TestWithService(t *testing.T) {
	test.WithTestNode(t, func(n *test.Node) {
		ctx := t.Context()

		var testError = errors.New("test error")

		cfg, err := config.Load("")
		require.NoError(t, err)
		cfg.Node.URLs = []string{n.URL}
		cfg.Logger.PrettyPrintConsole = false

		resultErr := command.WithService(ctx, cfg, func(ctx context.Context, s wallet.Service) error {
			assert.NotNil(t, util.LogFromContext(ctx))

			decoded, err := s.DecodeTransaction(ctx, "DC80018252089400000000000000000000000000000000000000008080")
			require.NoError(t, err)
			assert.Equal(t, "21000", decoded.GasLimit)

			return testError
		})

		assert.Equal(t, testError, resultErr)
	})
}

func TestWithServiceOffline(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Node.URLs = []string{"ftp://localhost"}
	cfg.Logger.PrettyPrintConsole = false

	err = command.WithService(t.Context(), cfg, func(ctx context.Context, s wallet.Service) error {
		decoded, err := s.DecodeTransaction(ctx, "DC80018252089400000000000000000000000000000000000000008080")
		require.NoError(t, err)
		assert.Equal(t, "1", decoded.GasPrice)

		_, err = s.SendTransaction(ctx, "F85F800182520894000000000000000000000000000000000000000080801BA033F443D859B6ED136F73C1607C979B2D7E60B2A36C15158DF61A3AE09DAE222FA057466FC200CB5EA1F2DBE0C96679815D11E4416DE4C274920A36086BFC3DFDFA")
		require.ErrorIs(t, err, node.ErrNodeCommunication)

		return nil
	})
	require.NoError(t, err)
}

func TestNewSubcommandGroup(t *testing.T) {
	child := command.NewSubcommandGroup("child")
	group := command.NewSubcommandGroup("group", child)

	assert.Equal(t, "group", group.Use)
	require.Len(t, group.Commands(), 1)
	assert.Equal(t, "child", group.Commands()[0].Use)
}
