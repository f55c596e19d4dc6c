package account

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/util/command"
	"github/chapool/go-ethwallet/internal/wallet"
)

func newExport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Prints the key of an account as an encrypted keystore v3 JSON document",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	addMnemonicFlags(cmd)
	cmd.Flags().Uint32(accountFlag, 0, "account index")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	mnemonic, passphrase, err := readMnemonic(cmd)
	if err != nil {
		return err
	}

	account, err := cmd.Flags().GetUint32(accountFlag)
	if err != nil {
		return err
	}

	password, err := wallet.PromptNewPassword()
	if err != nil {
		return errors.Wrap(err, "failed to read keystore password")
	}

	return command.WithService(cmd.Context(), cfg, func(ctx context.Context, s wallet.Service) error {
		keyJSON, err := s.ExportKeystore(ctx, mnemonic, passphrase, account, password)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(keyJSON))
		return err
	})
}
