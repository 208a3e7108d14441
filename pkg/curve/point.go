package curve

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// ErrNotOnCurve is returned when coordinates do not describe a curve point.
var ErrNotOnCurve = errors.New("curve: point is not on the curve")

// Point is an affine curve point or the point at infinity. Points are never
// modified after construction; arithmetic returns new points.
type Point struct {
	x, y *big.Int
	inf  bool
}

// Infinity returns the identity element.
func Infinity() *Point {
	return &Point{inf: true}
}

// NewPoint validates (x, y) against the curve and returns the point.
func (c *Params) NewPoint(x, y *big.Int) (*Point, error) {
	if !c.IsOnCurve(x, y) {
		return nil, errors.Wrapf(ErrNotOnCurve, "%s (%s, %s)", c.Name, x, y)
	}
	return &Point{x: new(big.Int).Set(x), y: new(big.Int).Set(y)}, nil
}

// IsInfinity reports whether p is the identity element.
func (p *Point) IsInfinity() bool {
	return p == nil || p.inf
}

// X returns a copy of the x-coordinate, or nil for the identity.
func (p *Point) X() *big.Int {
	if p.IsInfinity() {
		return nil
	}
	return new(big.Int).Set(p.x)
}

// Y returns a copy of the y-coordinate, or nil for the identity.
func (p *Point) Y() *big.Int {
	if p.IsInfinity() {
		return nil
	}
	return new(big.Int).Set(p.y)
}

// Equal reports whether p and q are the same point.
func (p *Point) Equal(q *Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

func (p *Point) String() string {
	if p.IsInfinity() {
		return "(infinity)"
	}
	return fmt.Sprintf("(%#x, %#x)", p.x, p.y)
}

// Neg returns -p.
func (c *Params) Neg(p *Point) *Point {
	if p.IsInfinity() {
		return Infinity()
	}
	y := new(big.Int).Neg(p.y)
	y.Mod(y, c.P)
	return &Point{x: new(big.Int).Set(p.x), y: y}
}

// Add returns p + q.
func (c *Params) Add(p, q *Point) *Point {
	switch {
	case p.IsInfinity() && q.IsInfinity():
		return Infinity()
	case p.IsInfinity():
		return &Point{x: new(big.Int).Set(q.x), y: new(big.Int).Set(q.y)}
	case q.IsInfinity():
		return &Point{x: new(big.Int).Set(p.x), y: new(big.Int).Set(p.y)}
	}

	if p.x.Cmp(q.x) == 0 {
		sum := new(big.Int).Add(p.y, q.y)
		if sum.Mod(sum, c.P).Sign() == 0 {
			return Infinity()
		}
		return c.Double(p)
	}

	// λ = (y2 - y1) / (x2 - x1)
	num := new(big.Int).Sub(q.y, p.y)
	den := new(big.Int).Sub(q.x, p.x)
	lambda := num.Mul(num, c.mustInverse(den))
	lambda.Mod(lambda, c.P)

	return c.chord(lambda, p, q.x)
}

// Double returns 2p.
func (c *Params) Double(p *Point) *Point {
	if p.IsInfinity() || p.y.Sign() == 0 {
		return Infinity()
	}

	// λ = (3x² + a) / 2y
	num := new(big.Int).Mul(p.x, p.x)
	num.Mul(num, big.NewInt(3))
	num.Add(num, c.A)
	den := new(big.Int).Lsh(p.y, 1)
	lambda := num.Mul(num, c.mustInverse(den))
	lambda.Mod(lambda, c.P)

	return c.chord(lambda, p, p.x)
}

// chord finishes an addition given the slope through p and a second point
// with x-coordinate x2.
func (c *Params) chord(lambda *big.Int, p *Point, x2 *big.Int) *Point {
	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, p.x)
	x3.Sub(x3, x2)
	x3.Mod(x3, c.P)

	y3 := new(big.Int).Sub(p.x, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.y)
	y3.Mod(y3, c.P)

	return &Point{x: x3, y: y3}
}

// ScalarMult returns k·p. The scalar is reduced modulo N first, so p must
// belong to the subgroup generated by G (every point does when the cofactor
// is one, as for the STARK curve). A scalar congruent to zero yields the
// identity.
//
// The Montgomery ladder always walks the full bit length of N and performs
// one addition and one doubling per bit, independent of the scalar's value.
func (c *Params) ScalarMult(k *big.Int, p *Point) *Point {
	scalar := new(big.Int).Mod(k, c.N)

	r0, r1 := Infinity(), p
	for i := c.N.BitLen() - 1; i >= 0; i-- {
		if scalar.Bit(i) == 0 {
			r1 = c.Add(r0, r1)
			r0 = c.Double(r0)
		} else {
			r0 = c.Add(r0, r1)
			r1 = c.Double(r1)
		}
	}
	return r0
}

// ScalarBaseMult returns k·G.
func (c *Params) ScalarBaseMult(k *big.Int) *Point {
	return c.ScalarMult(k, c.Generator())
}

// mustInverse inverts a non-zero field element. Arithmetic on valid points
// never divides by zero, so a failure means the parameters are broken.
func (c *Params) mustInverse(x *big.Int) *big.Int {
	inv, err := ModInverse(x, c.P)
	if err != nil {
		panic(errors.Wrapf(err, "curve %s: field inverse", c.Name))
	}
	return inv
}
