package probe

import (
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/util/command"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Checks that the config loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := command.LoadConfig(cmd)
			if err != nil {
				return err
			}

			if verbose, _ := cmd.Flags().GetBool(verboseFlag); verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "config ok, %d node url(s)\n", len(cfg.Node.URLs))
			}

			return nil
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "print probe details")

	return cmd
}
