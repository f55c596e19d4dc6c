package probe

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/util"
	"github/chapool/go-ethwallet/internal/util/command"
	"github/chapool/go-ethwallet/internal/wallet/node"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Checks that a node answers eth_chainId and eth_gasPrice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}
			util.ConfigureLogger(cfg.Logger)

			client, err := node.NewRPCClient(cfg.Node.URLs, cfg.Node.Timeout)
			if err != nil {
				return err
			}
			defer client.Close()

			chainID, err := client.ChainID(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "node is not ready")
			}

			gasPrice, err := client.GasPrice(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "node is not ready")
			}

			if verbose, _ := cmd.Flags().GetBool(verboseFlag); verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "chain id %s, gas price %s wei\n", chainID, gasPrice)
			}

			return nil
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "print probe details")

	return cmd
}
