package command

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/config"
	"github/chapool/go-ethwallet/internal/util"
	"github/chapool/go-ethwallet/internal/wallet"
	"github/chapool/go-ethwallet/internal/wallet/node"
)

// NewSubcommandGroup returns a command that only groups subcommands and prints help when run on its own.
func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s related subcommands", name),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// WithService configures logging and runs fn with a wallet Service.
// The configured nodes are dialed on the first request that needs them and closed when fn returns.
func WithService(ctx context.Context, cfg config.Server, fn func(ctx context.Context, s wallet.Service) error) error {
	util.ConfigureLogger(cfg.Logger)

	logger := log.With().Str("module", config.ModuleName).Logger()
	ctx = logger.WithContext(ctx)

	client := node.NewLazyClient(cfg.Node.URLs, cfg.Node.Timeout)
	defer client.Close()

	service, err := wallet.NewService(client, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create wallet service")
	}

	return fn(ctx, service)
}

// ConfigFlag is the persistent root flag naming an optional config file.
const ConfigFlag = "config"

// LoadConfig reads the config from env vars and the file given by --config, if any.
func LoadConfig(cmd *cobra.Command) (config.Server, error) {
	configFile, err := cmd.Flags().GetString(ConfigFlag)
	if err != nil {
		// commands executed outside the root command have no --config flag
		configFile = ""
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Server{}, errors.Wrap(err, "failed to load config")
	}

	return cfg, nil
}
