package tx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/util/command"
	"github/chapool/go-ethwallet/internal/wallet"
)

const (
	fromFlag     string = "from"
	toFlag       string = "to"
	amountFlag   string = "amount"
	keyFlag      string = "key"
	keystoreFlag string = "keystore"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("tx",
		newCreate(),
		newDecode(),
		newSign(),
		newSend(),
	)
}

// run loads the config and runs fn with a wallet Service.
func run(cmd *cobra.Command, fn func(ctx context.Context, s wallet.Service) error) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}

	return command.WithService(cmd.Context(), cfg, fn)
}

func newCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Builds an unsigned transfer with gas price and nonce from the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetString(fromFlag)
			to, _ := cmd.Flags().GetString(toFlag)
			amount, _ := cmd.Flags().GetString(amountFlag)

			return run(cmd, func(ctx context.Context, s wallet.Service) error {
				encoded, err := s.CreateTransferTransaction(ctx, from, to, amount)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
				return err
			})
		},
	}

	cmd.Flags().String(fromFlag, "", "sender address")
	cmd.Flags().String(toFlag, "", "recipient address")
	cmd.Flags().String(amountFlag, "", "amount in ether, e.g. 0.001")
	_ = cmd.MarkFlagRequired(fromFlag)
	_ = cmd.MarkFlagRequired(toFlag)
	_ = cmd.MarkFlagRequired(amountFlag)

	return cmd
}

func newDecode() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decodes an unsigned or signed transaction to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s wallet.Service) error {
				decoded, err := s.DecodeTransaction(ctx, args[0])
				if err != nil {
					return err
				}

				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(decoded)
			})
		},
	}
}

func newSign() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <hex>",
		Short: "Signs an encoded transaction with a hex private key or a keystore file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString(keyFlag)
			keystorePath, _ := cmd.Flags().GetString(keystoreFlag)
			from, _ := cmd.Flags().GetString(fromFlag)

			var (
				keyJSON  []byte
				password string
			)
			if keystorePath != "" {
				var err error
				keyJSON, err = os.ReadFile(keystorePath)
				if err != nil {
					return errors.Wrap(err, "failed to read keystore file")
				}

				password, err = wallet.PromptSecret("Enter keystore password: ")
				if err != nil {
					return errors.Wrap(err, "failed to read keystore password")
				}
			}

			return run(cmd, func(ctx context.Context, s wallet.Service) error {
				var (
					signed string
					err    error
				)
				if keyJSON != nil {
					signed, err = s.SignTransactionWithKeystore(ctx, keyJSON, password, args[0], from)
				} else {
					signed, err = s.SignTransaction(ctx, key, args[0], from)
				}
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
				return err
			})
		},
	}

	cmd.Flags().String(keyFlag, "", "hex private key")
	cmd.Flags().String(keystoreFlag, "", "keystore v3 file, the password is prompted for")
	cmd.Flags().String(fromFlag, "", "expected sender address, checked against the key")
	cmd.MarkFlagsMutuallyExclusive(keyFlag, keystoreFlag)
	cmd.MarkFlagsOneRequired(keyFlag, keystoreFlag)

	return cmd
}

func newSend() *cobra.Command {
	return &cobra.Command{
		Use:   "send <hex>",
		Short: "Submits a signed transaction and prints its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s wallet.Service) error {
				hash, err := s.SendTransaction(ctx, args[0])
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
				return err
			})
		},
	}
}
