// Package felt encodes STARK field elements in their canonical textual form:
// a 0x prefix followed by 64 lowercase hex digits.
package felt

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/templexxx/xhex"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/curve"
)

// Size is the byte width of an encoded field element.
const Size = 32

const hexDigits = "0123456789abcdef"

var (
	// ErrNegative is returned when a negative value is encoded.
	ErrNegative = errors.New("felt: negative value")
	// ErrTooLarge is returned when a value does not fit in Size bytes.
	ErrTooLarge = errors.New("felt: value exceeds 256 bits")
)

// Bytes32 returns x as a fixed-width big-endian byte array.
func Bytes32(x *big.Int) ([Size]byte, error) {
	var out [Size]byte
	if x.Sign() < 0 {
		return out, ErrNegative
	}
	if x.BitLen() > Size*8 {
		return out, ErrTooLarge
	}
	x.FillBytes(out[:])
	return out, nil
}

// Hex renders x in canonical form. Values outside [0, 2²⁵⁶) are rendered
// with %#x since they have no canonical encoding.
func Hex(x *big.Int) string {
	b, err := Bytes32(x)
	if err != nil {
		return fmt.Sprintf("%#x", x)
	}
	dst := make([]byte, 2+Size*2)
	dst[0], dst[1] = '0', 'x'
	xhex.Encode(dst[2:], b[:])
	return string(dst)
}

// FromHex parses a hex string with or without a 0x prefix. Odd lengths are
// left padded.
func FromHex(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return nil, errors.Errorf("felt: empty hex string %q", s)
	}
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	if len(digits) > Size*2 {
		return nil, errors.Wrapf(ErrTooLarge, "felt: %q", s)
	}

	digits = strings.ToLower(digits)
	if strings.Trim(digits, hexDigits) != "" {
		return nil, errors.Errorf("felt: invalid hex %q", s)
	}

	buf := make([]byte, len(digits)/2)
	if err := xhex.Decode(buf, []byte(digits)); err != nil {
		return nil, errors.Wrapf(err, "felt: invalid hex %q", s)
	}
	return new(big.Int).SetBytes(buf), nil
}

// Parse reads an integer from the forms found in digest files and command
// lines: 0x-prefixed hex, bare decimal, json.Number and Go integers.
func Parse(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			return FromHex(s)
		}
		z, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, errors.Errorf("felt: invalid number format %q", v)
		}
		return z, nil

	case json.Number:
		z, ok := new(big.Int).SetString(string(v), 10)
		if !ok {
			return nil, errors.Errorf("felt: invalid number format %q", v)
		}
		return z, nil

	case *big.Int:
		if v == nil {
			return nil, errors.New("felt: nil integer")
		}
		return new(big.Int).Set(v), nil

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	case uint64:
		return new(big.Int).SetUint64(v), nil

	default:
		return nil, errors.Errorf("felt: unsupported type %T", val)
	}
}

// InField reports whether x is a canonical STARK field element.
func InField(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(curve.Stark().P) < 0
}
