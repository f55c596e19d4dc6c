package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "ETHWALLET"

type LoggerServer struct {
	Level              zerolog.Level `json:"level"`
	PrettyPrintConsole bool          `json:"pretty_print_console"`
}

type NodeServer struct {
	// URLs are tried in order; later ones are failover targets.
	URLs    []string      `json:"urls"`
	Timeout time.Duration `json:"timeout"`
}

type WalletServer struct {
	GasLimit uint64 `json:"gas_limit"`
	// StrictMnemonic rejects mnemonics whose BIP39 checksum does not verify.
	StrictMnemonic bool `json:"strict_mnemonic"`
}

type KeystoreServer struct {
	ScryptN int `json:"scrypt_n"`
	ScryptP int `json:"scrypt_p"`
}

type Server struct {
	Logger   LoggerServer   `json:"logger"`
	Node     NodeServer     `json:"node"`
	Wallet   WalletServer   `json:"wallet"`
	Keystore KeystoreServer `json:"keystore"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", zerolog.InfoLevel.String())
	v.SetDefault("logger.pretty_print_console", true)

	v.SetDefault("node.urls", []string{"http://localhost:8545"})
	v.SetDefault("node.timeout", 15*time.Second)

	v.SetDefault("wallet.gas_limit", 21000)
	v.SetDefault("wallet.strict_mnemonic", true)

	v.SetDefault("keystore.scrypt_n", 262144)
	v.SetDefault("keystore.scrypt_p", 1)
}

// NewViper returns a viper instance reading ETHWALLET_* env vars and, if configFile is set, that file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	return v, nil
}

// Load builds the Server config from env vars and the optional configFile.
func Load(configFile string) (Server, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return Server{}, err
	}

	return FromViper(v)
}

func FromViper(v *viper.Viper) (Server, error) {
	level, err := zerolog.ParseLevel(v.GetString("logger.level"))
	if err != nil {
		return Server{}, errors.Wrap(err, "invalid logger.level")
	}

	urls := splitList(v.GetStringSlice("node.urls"))
	if len(urls) == 0 {
		return Server{}, errors.New("node.urls must not be empty")
	}

	gasLimit := v.GetUint64("wallet.gas_limit")
	if gasLimit == 0 {
		return Server{}, errors.New("wallet.gas_limit must be positive")
	}

	return Server{
		Logger: LoggerServer{
			Level:              level,
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
		},
		Node: NodeServer{
			URLs:    urls,
			Timeout: v.GetDuration("node.timeout"),
		},
		Wallet: WalletServer{
			GasLimit:       gasLimit,
			StrictMnemonic: v.GetBool("wallet.strict_mnemonic"),
		},
		Keystore: KeystoreServer{
			ScryptN: v.GetInt("keystore.scrypt_n"),
			ScryptP: v.GetInt("keystore.scrypt_p"),
		},
	}, nil
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined above.
func DefaultServiceConfigFromEnv() Server {
	cfg, err := Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config from env")
	}

	return cfg
}

// splitList accepts both list values and a single comma separated env value.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
