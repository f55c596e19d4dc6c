package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-ethwallet/cmd/account"
	"github/chapool/go-ethwallet/cmd/env"
	"github/chapool/go-ethwallet/cmd/probe"
	"github/chapool/go-ethwallet/cmd/tx"
	"github/chapool/go-ethwallet/internal/config"
	"github/chapool/go-ethwallet/internal/util/command"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "ethwallet",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Derives Ethereum accounts from a BIP39 mnemonic and builds, signs,
decodes and submits legacy value-transfer transactions.
Configuration through ENV (ETHWALLET_*) or --config.`, config.ModuleName),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.PersistentFlags().String(command.ConfigFlag, "", "config file (yaml, json or toml)")

	// attach the subcommands
	rootCmd.AddCommand(
		account.New(),
		env.New(),
		probe.New(),
		tx.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
