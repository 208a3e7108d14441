package starkecdsa

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/curve"
)

// PublicKeyPoint returns priv·G.
func (e *Engine) PublicKeyPoint(priv *big.Int) (*curve.Point, error) {
	if priv == nil {
		return nil, ErrInvalidPrivateKey
	}
	p := e.curve.ScalarBaseMult(priv)
	if p.IsInfinity() {
		return nil, errors.Wrapf(ErrPointAtInfinity, "private key %v", priv)
	}
	return p, nil
}

// PublicKey returns the x-coordinate of priv·G, the form in which STARK
// public keys are published.
func (e *Engine) PublicKey(priv *big.Int) (*big.Int, error) {
	p, err := e.PublicKeyPoint(priv)
	if err != nil {
		return nil, err
	}
	return p.X(), nil
}

// PublicKeyPoint returns priv·G on the default engine.
func PublicKeyPoint(priv *big.Int) (*curve.Point, error) {
	return defaultEngine.PublicKeyPoint(priv)
}

// PublicKey returns the public key of priv on the default engine.
func PublicKey(priv *big.Int) (*big.Int, error) {
	return defaultEngine.PublicKey(priv)
}

// GeneratePrivateKey draws a uniformly random private key in [1, n-1] from
// rand, where n is the order of the engine's curve.
func (e *Engine) GeneratePrivateKey(rand io.Reader) (*big.Int, error) {
	n := e.curve.N
	buf := make([]byte, (n.BitLen()+7)/8)
	mask := byte(0xff >> uint(len(buf)*8-n.BitLen()))

	for {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, errors.Wrap(err, "starkecdsa: read key material")
		}
		buf[0] &= mask

		k := new(big.Int).SetBytes(buf)
		if k.Sign() > 0 && k.Cmp(n) < 0 {
			return k, nil
		}
	}
}

// GeneratePrivateKey draws a STARK private key from rand.
func GeneratePrivateKey(rand io.Reader) (*big.Int, error) {
	return defaultEngine.GeneratePrivateKey(rand)
}
