// Package signer binds a single STARK private key and signs transaction
// digests with it.
package signer

import (
	"math/big"

	"github.com/pkg/errors"
	"lukechampine.com/frand"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/curve"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/felt"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/starkecdsa"
)

// ErrInvalidKey is returned for private keys outside [1, n-1].
var ErrInvalidKey = errors.New("signer: private key must be in [1, n-1]")

// TransactionSigner produces the [r, s] pair embedded in signed transactions.
type TransactionSigner interface {
	PublicKey() *big.Int
	SignTransactionDigest(digest *big.Int) ([]*big.Int, error)
}

// Signer holds one private key and its public key. It is immutable and safe
// for concurrent use.
type Signer struct {
	engine *starkecdsa.Engine
	priv   *big.Int
	pub    *big.Int
}

var _ TransactionSigner = (*Signer)(nil)

// New creates a signer for priv, which must lie in [1, n-1].
func New(priv *big.Int) (*Signer, error) {
	return NewWithEngine(priv, starkecdsa.NewEngine())
}

// NewWithEngine creates a signer that signs through engine.
func NewWithEngine(priv *big.Int, engine *starkecdsa.Engine) (*Signer, error) {
	if engine == nil {
		engine = starkecdsa.NewEngine()
	}
	n := engine.Curve().N
	if priv == nil || priv.Sign() <= 0 || priv.Cmp(n) >= 0 {
		return nil, ErrInvalidKey
	}

	priv = new(big.Int).Set(priv)
	pub, err := engine.PublicKey(priv)
	if err != nil {
		return nil, errors.Wrap(err, "signer: derive public key")
	}
	return &Signer{engine: engine, priv: priv, pub: pub}, nil
}

// FromHex creates a signer from a hex encoded private key, with or without
// the 0x prefix.
func FromHex(s string) (*Signer, error) {
	priv, err := felt.FromHex(s)
	if err != nil {
		return nil, errors.Wrap(err, "signer: parse private key")
	}
	return New(priv)
}

// Generate creates a signer for a fresh random key.
func Generate() (*Signer, error) {
	return GenerateWithEngine(starkecdsa.NewEngine())
}

// GenerateWithEngine creates a signer for a fresh random key on the engine's
// curve.
func GenerateWithEngine(engine *starkecdsa.Engine) (*Signer, error) {
	if engine == nil {
		engine = starkecdsa.NewEngine()
	}
	priv, err := engine.GeneratePrivateKey(frand.Reader)
	if err != nil {
		return nil, err
	}
	return NewWithEngine(priv, engine)
}

// PublicKey returns a copy of the public key.
func (s *Signer) PublicKey() *big.Int {
	return new(big.Int).Set(s.pub)
}

// PublicKeyHex returns the public key in canonical field element encoding.
func (s *Signer) PublicKeyHex() string {
	return felt.Hex(s.pub)
}

// PrivateKey returns a copy of the private key.
func (s *Signer) PrivateKey() *big.Int {
	return new(big.Int).Set(s.priv)
}

// Curve returns the curve the signer's keys live on.
func (s *Signer) Curve() *curve.Params {
	return s.engine.Curve()
}

// Sign signs digest, which must lie in [0, 2²⁵¹).
func (s *Signer) Sign(digest *big.Int) (*starkecdsa.Signature, error) {
	return s.engine.Sign(s.priv, digest)
}

// SignTransactionDigest signs digest and returns [r, s].
func (s *Signer) SignTransactionDigest(digest *big.Int) ([]*big.Int, error) {
	sig, err := s.Sign(digest)
	if err != nil {
		return nil, err
	}
	return sig.Slice(), nil
}

// SignTransactionDigestHex is SignTransactionDigest with both components in
// canonical hex.
func (s *Signer) SignTransactionDigestHex(digest *big.Int) ([]string, error) {
	sig, err := s.Sign(digest)
	if err != nil {
		return nil, err
	}
	h := sig.Hex()
	return h[:], nil
}
