package account

import (
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/wallet/seed"
)

func newMnemonic() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generates a new BIP39 mnemonic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			words, err := cmd.Flags().GetInt(wordsFlag)
			if err != nil {
				return err
			}

			mnemonic, err := seed.NewMnemonic(words)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), mnemonic)
			return err
		},
	}

	cmd.Flags().Int(wordsFlag, 24, "number of words (12, 15, 18, 21 or 24)")

	return cmd
}
