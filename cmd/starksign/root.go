package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/stark-ecdsa/internal/logging"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/felt"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/signer"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/starkecdsa"
)

const envPrefix = "STARKSIGN"

// Configuration keys. Each may come from a flag, a STARKSIGN_* environment
// variable or the config file.
const (
	keyPrivateKey = "private_key"
	keyLogLevel   = "log_level"
	keyWorkers    = "workers"
	keyFailFast   = "fail_fast"
)

// app carries the state shared by all subcommands.
type app struct {
	v   *viper.Viper
	out io.Writer
	log *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, log: zap.NewNop()}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	var configFile string
	root := &cobra.Command{
		Use:          "starksign",
		Short:        "Derive STARK public keys and sign transaction digests",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				a.v.SetConfigFile(configFile)
				if err := a.v.ReadInConfig(); err != nil {
					return errors.Wrapf(err, "failed to read config %s", configFile)
				}
			}
			log, err := logging.New(a.v.GetString(keyLogLevel))
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (YAML, JSON or TOML)")
	flags.String("private-key", "", "hex private key (or "+envPrefix+"_PRIVATE_KEY)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	a.bindFlags(flags, map[string]string{
		keyPrivateKey: "private-key",
		keyLogLevel:   "log-level",
	})

	root.AddCommand(
		a.keygenCmd(),
		a.pubkeyCmd(),
		a.signCmd(),
		a.batchCmd(),
	)
	return root
}

// bindFlags binds config keys to the named flags. Flags take precedence over
// the environment and the config file once set.
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			panic("starksign: unknown flag " + name)
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}

// signer builds the signer for the configured private key.
func (a *app) signer() (*signer.Signer, error) {
	hex := a.v.GetString(keyPrivateKey)
	if hex == "" {
		return nil, errors.Errorf("no private key: set --private-key or %s_PRIVATE_KEY", envPrefix)
	}
	priv, err := felt.FromHex(hex)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	engine := starkecdsa.NewEngine().WithLogger(a.log.Named("engine"))
	return signer.NewWithEngine(priv, engine)
}

func (a *app) printJSON(v interface{}) error {
	return encodeJSON(a.out, v)
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
