package starkecdsa

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/curve"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/felt"
)

type keyVector struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

type signVector struct {
	Name       string      `json:"name"`
	PrivateKey string      `json:"private_key"`
	Digest     string      `json:"digest"`
	Seed       json.Number `json:"seed"`
	K          string      `json:"k"`
	R          string      `json:"r"`
	S          string      `json:"s"`
}

// loadFixture decodes testdata/<name> into v.
func loadFixture(t *testing.T, name string, v interface{}) {
	t.Helper()

	file, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(v), "decode %s", name)
}

// num parses a hex or decimal fixture value.
func num(t *testing.T, s string) *big.Int {
	t.Helper()
	v, err := felt.Parse(s)
	require.NoError(t, err)
	return v
}

// seedOf returns nil for an absent seed.
func seedOf(t *testing.T, n json.Number) *big.Int {
	t.Helper()
	if n == "" {
		return nil
	}
	v, err := felt.Parse(n)
	require.NoError(t, err)
	return v
}

// secp256k1Params describes secp256k1 for engines built with WithCurve. Its
// coordinates usually exceed 2^251, so signing on it rejects most nonces.
func secp256k1Params(t *testing.T) *curve.Params {
	t.Helper()
	p := secp256k1.S256().Params()
	params, err := curve.NewParams("secp256k1",
		p.P.Text(16), p.N.Text(16), "0", p.B.Text(16), p.Gx.Text(16), p.Gy.Text(16))
	require.NoError(t, err)
	return params
}

// verify checks x((z/s)·G + (r/s)·Q) == r on c.
func verify(t *testing.T, c *curve.Params, pub *curve.Point, digest *big.Int, sig *Signature) bool {
	t.Helper()
	w, err := curve.ModInverse(sig.S, c.N)
	require.NoError(t, err)

	u1 := new(big.Int).Mul(digest, w)
	u1.Mod(u1, c.N)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, c.N)

	x := c.Add(c.ScalarBaseMult(u1), c.ScalarMult(u2, pub))
	return !x.IsInfinity() && x.X().Cmp(sig.R) == 0
}
