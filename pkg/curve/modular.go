package curve

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrNotInvertible is returned by ModInverse when the operand shares a factor
// with the modulus. For a prime modulus that only happens for zero.
var ErrNotInvertible = errors.New("curve: value is not invertible")

// ModInverse returns x⁻¹ mod m as a canonical value in [1, m).
func ModInverse(x, m *big.Int) (*big.Int, error) {
	r := new(big.Int).Mod(x, m)
	if r.Sign() == 0 {
		return nil, ErrNotInvertible
	}
	inv := new(big.Int).ModInverse(r, m)
	if inv == nil {
		return nil, ErrNotInvertible
	}
	return inv, nil
}
