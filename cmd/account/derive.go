package account

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/util/command"
	"github/chapool/go-ethwallet/internal/wallet"
	"github/chapool/go-ethwallet/internal/wallet/address"
	"github/chapool/go-ethwallet/internal/wallet/hdkey"
	"golang.org/x/sync/errgroup"
)

func newDerive() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derives the key pair of one or more accounts on m/44'/60'/account'/0/0",
		Long: `Derives the key pair of one or more accounts on m/44'/60'/account'/0/0
and prints address, private key, public key and password as JSON.
The output contains secrets.`,
		Args: cobra.NoArgs,
		RunE: runDerive,
	}

	addMnemonicFlags(cmd)
	cmd.Flags().Uint32(accountFlag, 0, "account index")
	cmd.Flags().UintSlice(accountsFlag, nil, "several account indexes, derived in parallel")

	return cmd
}

func runDerive(cmd *cobra.Command, _ []string) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	mnemonic, passphrase, err := readMnemonic(cmd)
	if err != nil {
		return err
	}

	accounts, err := accountIndexes(cmd)
	if err != nil {
		return err
	}

	return command.WithService(cmd.Context(), cfg, func(ctx context.Context, s wallet.Service) error {
		exports := make([]*address.Export, len(accounts))

		g, gctx := errgroup.WithContext(ctx)
		for i, account := range accounts {
			g.Go(func() error {
				export, err := s.GenerateKeypair(gctx, mnemonic, passphrase, account)
				if err != nil {
					return err
				}
				exports[i] = export
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		if len(exports) == 1 {
			return encoder.Encode(exports[0])
		}

		return encoder.Encode(exports)
	})
}

func accountIndexes(cmd *cobra.Command) ([]uint32, error) {
	if cmd.Flags().Changed(accountsFlag) {
		indexes, err := cmd.Flags().GetUintSlice(accountsFlag)
		if err != nil {
			return nil, err
		}

		accounts := make([]uint32, 0, len(indexes))
		for _, index := range indexes {
			if index >= uint(hdkey.HardenedOffset) {
				return nil, errors.Wrapf(hdkey.ErrInvalidPath, "account %d out of range", index)
			}
			accounts = append(accounts, uint32(index)) //nolint:gosec // bounded by HardenedOffset above
		}
		return accounts, nil
	}

	account, err := cmd.Flags().GetUint32(accountFlag)
	if err != nil {
		return nil, err
	}

	return []uint32{account}, nil
}
