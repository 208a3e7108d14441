package starkecdsa

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/curve"
)

// ElementBits is the bit width of digests and signature components.
const ElementBits = 251

// DefaultMaxAttempts caps the signing loop. A single rejection has
// probability around 2⁻¹²⁰, so reaching the cap means something is broken.
const DefaultMaxAttempts = 1 << 16

// ElementBound is 2²⁵¹, the exclusive upper bound for digests, r and w.
var ElementBound = new(big.Int).Lsh(big.NewInt(1), ElementBits)

var defaultEngine = NewEngine()

// Engine signs digests and derives keys on the STARK curve.
type Engine struct {
	curve       *curve.Params
	maxAttempts int
	log         *zap.Logger
}

// NewEngine returns an engine bound to the STARK curve with a no-op logger.
func NewEngine() *Engine {
	return &Engine{
		curve:       curve.Stark(),
		maxAttempts: DefaultMaxAttempts,
		log:         zap.NewNop(),
	}
}

// WithLogger returns a copy of the engine that reports nonce rejections at
// debug level.
func (e *Engine) WithLogger(log *zap.Logger) *Engine {
	c := *e
	if log == nil {
		log = zap.NewNop()
	}
	c.log = log
	return &c
}

// WithCurve returns a copy of the engine operating on c. Nil is ignored.
func (e *Engine) WithCurve(c *curve.Params) *Engine {
	cp := *e
	if c != nil {
		cp.curve = c
	}
	return &cp
}

// WithMaxAttempts returns a copy of the engine with a different retry cap.
// Values below one are ignored.
func (e *Engine) WithMaxAttempts(n int) *Engine {
	c := *e
	if n > 0 {
		c.maxAttempts = n
	}
	return &c
}

// Curve returns the curve parameters the engine operates on.
func (e *Engine) Curve() *curve.Params {
	return e.curve
}

// Sign signs digest with priv. It is SignWithSeed with a nil seed.
func (e *Engine) Sign(priv, digest *big.Int) (*Signature, error) {
	return e.SignWithSeed(priv, digest, nil)
}

// SignWithSeed signs digest with priv, mixing seed into the first nonce.
//
// Every rejected candidate is replaced by the nonce for the next seed
// (1, 2, … when seed is nil, seed+1, seed+2, … otherwise), so the result is
// fully determined by (priv, digest, seed).
func (e *Engine) SignWithSeed(priv, digest, seed *big.Int) (*Signature, error) {
	if priv == nil {
		return nil, ErrInvalidPrivateKey
	}
	if !inBound(digest, true) {
		return nil, errors.Wrapf(ErrDigestOutOfRange, "digest %v", digest)
	}

	n := e.curve.N
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		k := e.GenerateK(digest, priv, seed)
		seed = nextSeed(seed)

		point := e.curve.ScalarBaseMult(k)
		if point.IsInfinity() {
			e.reject(attempt, "nonce point at infinity")
			continue
		}

		// r is the x-coordinate itself, not reduced mod n.
		r := point.X()
		if !inBound(r, false) {
			e.reject(attempt, "r out of range")
			continue
		}

		t := new(big.Int).Mul(r, priv)
		t.Add(t, digest)
		if new(big.Int).Mod(t, n).Sign() == 0 {
			e.reject(attempt, "digest + r*key is zero mod n")
			continue
		}

		tInv, err := curve.ModInverse(t, n)
		if err != nil {
			return nil, errors.Wrap(err, "starkecdsa: invert digest + r*key")
		}
		w := tInv.Mul(tInv, k)
		w.Mod(w, n)
		if !inBound(w, false) {
			e.reject(attempt, "w out of range")
			continue
		}

		s, err := curve.ModInverse(w, n)
		if err != nil {
			return nil, errors.Wrap(err, "starkecdsa: invert w")
		}
		return &Signature{R: r, S: s}, nil
	}

	return nil, errors.Wrapf(ErrAttemptsExhausted, "%d attempts", e.maxAttempts)
}

func (e *Engine) reject(attempt int, reason string) {
	e.log.Debug("nonce rejected", zap.Int("attempt", attempt), zap.String("reason", reason))
}

// nextSeed returns the seed for the attempt after one that used seed.
func nextSeed(seed *big.Int) *big.Int {
	if seed == nil {
		return big.NewInt(1)
	}
	return new(big.Int).Add(seed, big.NewInt(1))
}

// inBound reports whether x lies in [0, 2²⁵¹) when zeroOK, else [1, 2²⁵¹).
func inBound(x *big.Int, zeroOK bool) bool {
	if x == nil || x.Sign() < 0 || (!zeroOK && x.Sign() == 0) {
		return false
	}
	return x.Cmp(ElementBound) < 0
}

// Sign signs digest with priv on the default engine.
func Sign(priv, digest *big.Int) (*Signature, error) {
	return defaultEngine.Sign(priv, digest)
}

// SignWithSeed signs digest with priv and an explicit seed on the default
// engine.
func SignWithSeed(priv, digest, seed *big.Int) (*Signature, error) {
	return defaultEngine.SignWithSeed(priv, digest, seed)
}
