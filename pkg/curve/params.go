// Package curve implements affine point arithmetic on short Weierstrass
// curves y² = x³ + A·x + B over a prime field, and carries the STARK curve
// parameters used for transaction signatures.
package curve

import (
	"math/big"

	"github.com/pkg/errors"
)

// Params describes a short Weierstrass curve with a prime order generator.
// The big.Int fields must not be modified once the Params are in use.
type Params struct {
	Name    string
	BitSize int      // bit length of the field prime
	P       *big.Int // field prime
	N       *big.Int // order of the generator
	A       *big.Int // curve coefficient a
	B       *big.Int // curve coefficient b
	Gx, Gy  *big.Int // generator
}

// stark is built once and shared by every caller of Stark.
var stark = mustParams(
	"STARK",
	"800000000000011000000000000000000000000000000000000000000000001",
	"800000000000010ffffffffffffffffb781126dcae7b2321e66a241adc64d2f",
	"1",
	"6f21413efbe40de150e596d72f7a8c5609ad26c15c915c1f4cdfcb99cee9e89",
	"1ef15c18599971b7beced415a40f0c7deacfd9b0d1819e03d723d8bc943cfca",
	"5668060aa49730b7be4801df46ec62de53ecd11abe43a32873000c36e8dc1f",
)

// Stark returns the STARK curve as described in
// https://docs.starkware.co/starkex/crypto/stark-curve.html.
func Stark() *Params {
	return stark
}

// NewParams builds curve parameters from big-endian hex strings. The
// generator must satisfy the curve equation.
func NewParams(name, p, n, a, b, gx, gy string) (*Params, error) {
	values := make([]*big.Int, 6)
	for i, s := range []string{p, n, a, b, gx, gy} {
		v, ok := new(big.Int).SetString(s, 16)
		if !ok {
			return nil, errors.Errorf("curve %s: invalid hex constant %q", name, s)
		}
		values[i] = v
	}

	params := &Params{
		Name:    name,
		BitSize: values[0].BitLen(),
		P:       values[0],
		N:       values[1],
		A:       values[2],
		B:       values[3],
		Gx:      values[4],
		Gy:      values[5],
	}
	if !params.IsOnCurve(params.Gx, params.Gy) {
		return nil, errors.Errorf("curve %s: generator is not on the curve", name)
	}
	return params, nil
}

func mustParams(name, p, n, a, b, gx, gy string) *Params {
	params, err := NewParams(name, p, n, a, b, gx, gy)
	if err != nil {
		panic(err)
	}
	return params
}

// Generator returns the base point G.
func (c *Params) Generator() *Point {
	return &Point{x: new(big.Int).Set(c.Gx), y: new(big.Int).Set(c.Gy)}
}

// IsOnCurve reports whether (x, y) is a canonical point satisfying the curve
// equation.
func (c *Params) IsOnCurve(x, y *big.Int) bool {
	if x == nil || y == nil {
		return false
	}
	if x.Sign() < 0 || x.Cmp(c.P) >= 0 || y.Sign() < 0 || y.Cmp(c.P) >= 0 {
		return false
	}

	// y² = x³ + a·x + b
	lhs := new(big.Int).Mul(y, y)
	lhs.Mod(lhs, c.P)

	rhs := new(big.Int).Mul(x, x)
	rhs.Add(rhs, c.A)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, c.B)
	rhs.Mod(rhs, c.P)

	return lhs.Cmp(rhs) == 0
}
