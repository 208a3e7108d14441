package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/stark-ecdsa/internal/batch"
	"github.com/mahdiidarabi/stark-ecdsa/internal/parser"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/felt"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/signer"
)

type keyPair struct {
	PrivateKey string `json:"private_key,omitempty"`
	PublicKey  string `json:"public_key"`
}

type signOutput struct {
	Digest    string   `json:"digest"`
	Signature []string `json:"signature"`
}

func (a *app) keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := signer.Generate()
			if err != nil {
				return err
			}
			return a.printJSON(keyPair{
				PrivateKey: felt.Hex(s.PrivateKey()),
				PublicKey:  s.PublicKeyHex(),
			})
		},
	}
}

func (a *app) pubkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public key of the configured private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.signer()
			if err != nil {
				return err
			}
			return a.printJSON(keyPair{PublicKey: s.PublicKeyHex()})
		},
	}
}

func (a *app) signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign <digest>",
		Short: "Sign a transaction digest (hex with 0x prefix, or decimal)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := felt.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "invalid digest")
			}
			s, err := a.signer()
			if err != nil {
				return err
			}
			rs, err := s.SignTransactionDigestHex(digest)
			if err != nil {
				return err
			}
			return a.printJSON(signOutput{Digest: felt.Hex(digest), Signature: rs})
		},
	}
}

func (a *app) batchCmd() *cobra.Command {
	var input, output, format string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Sign every digest in a JSON or CSV file",
		Long: `Reads [{"id": ..., "digest": ...}] from a JSON file or id,digest rows
from a CSV file and writes the signatures as a JSON array.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return errors.New("--input is required")
			}
			p, err := digestParser(format, input)
			if err != nil {
				return err
			}
			requests, err := p.ParseFile(input)
			if err != nil {
				return errors.Wrapf(err, "failed to parse %s", input)
			}
			s, err := a.signer()
			if err != nil {
				return err
			}

			cfg := batch.DefaultConfig()
			if n := a.v.GetInt(keyWorkers); n > 0 {
				cfg.Workers = n
			}
			cfg.FailFast = a.v.GetBool(keyFailFast)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results, err := batch.NewPool(s, cfg, a.log).Sign(ctx, requests)
			if err != nil {
				return err
			}

			a.log.Info("writing results", zap.Int("count", len(results)))
			if output == "" {
				return a.printJSON(results)
			}
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "failed to create output")
			}
			return writeAndClose(f, results)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "digest file (.json or .csv)")
	flags.StringVarP(&output, "output", "o", "", "write results here instead of stdout")
	flags.StringVar(&format, "format", "", "input format: json or csv (default from file extension)")
	flags.Int("workers", 0, "parallel signers (0 = one per CPU)")
	flags.Bool("fail-fast", false, "abort on the first failed digest")
	a.bindFlags(flags, map[string]string{
		keyWorkers:  "workers",
		keyFailFast: "fail-fast",
	})
	return cmd
}

// writeAndClose encodes v to w and closes it, reporting the first error.
func writeAndClose(w io.WriteCloser, v interface{}) error {
	err := encodeJSON(w, v)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "failed to close output")
	}
	return err
}

func digestParser(format, path string) (parser.DigestParser, error) {
	switch strings.ToLower(format) {
	case "":
		return parser.ForPath(path), nil
	case "json":
		return &parser.JSONParser{}, nil
	case "csv":
		return &parser.CSVParser{}, nil
	default:
		return nil, errors.Errorf("unknown format %q", format)
	}
}
