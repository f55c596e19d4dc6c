package account

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/internal/util/command"
	"github/chapool/go-ethwallet/internal/wallet"
)

const (
	accountFlag    string = "account"
	accountsFlag   string = "accounts"
	mnemonicFlag   string = "mnemonic"
	passphraseFlag string = "passphrase"
	wordsFlag      string = "words"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("account",
		newDerive(),
		newMnemonic(),
		newExport(),
	)
}

func addMnemonicFlags(cmd *cobra.Command) {
	cmd.Flags().String(mnemonicFlag, "", "BIP39 mnemonic (prompted for when omitted)")
	cmd.Flags().String(passphraseFlag, "", "optional BIP39 passphrase")
}

// readMnemonic returns the --mnemonic flag or prompts for the mnemonic on the terminal.
func readMnemonic(cmd *cobra.Command) (string, string, error) {
	mnemonic, err := cmd.Flags().GetString(mnemonicFlag)
	if err != nil {
		return "", "", err
	}

	passphrase, err := cmd.Flags().GetString(passphraseFlag)
	if err != nil {
		return "", "", err
	}

	if strings.TrimSpace(mnemonic) == "" {
		mnemonic, err = wallet.PromptSecret("Enter mnemonic: ")
		if err != nil {
			return "", "", errors.Wrap(err, "failed to read mnemonic")
		}
	}

	return strings.TrimSpace(mnemonic), passphrase, nil
}
