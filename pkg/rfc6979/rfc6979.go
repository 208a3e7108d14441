// Package rfc6979 implements the deterministic nonce generation of RFC 6979
// section 3.2 for an arbitrary group order and HMAC hash function.
//
// A Generator is seeded once from the private key, the message hash and
// optional additional data (section 3.6), then yields a reproducible stream of
// candidates in [1, q-1]:
//
//	gen := rfc6979.New(order, privKey, hash, nil, sha256.New)
//	k := gen.Next()
//
// The same inputs always produce the same stream.
package rfc6979

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"math/big"
)

// Generator is the HMAC-DRBG state of RFC 6979. It is not safe for concurrent
// use; create one per signature.
type Generator struct {
	q     *big.Int
	qlen  int
	rolen int
	hash  func() hash.Hash
	k, v  []byte
}

// New runs steps a through g of RFC 6979 section 3.2. The private key x is
// encoded with int2octets and h1 with bits2octets; extra is appended to both
// HMAC inputs that carry the key material. A nil hashFunc selects SHA-256.
func New(q, x *big.Int, h1, extra []byte, hashFunc func() hash.Hash) *Generator {
	if hashFunc == nil {
		hashFunc = sha256.New
	}
	qlen := q.BitLen()
	rolen := (qlen + 7) / 8
	holen := hashFunc().Size()

	g := &Generator{
		q:     q,
		qlen:  qlen,
		rolen: rolen,
		hash:  hashFunc,
	}

	bx := make([]byte, 0, 2*rolen+len(extra))
	bx = append(bx, Int2Octets(x, rolen)...)
	bx = append(bx, Bits2Octets(h1, q, rolen)...)
	bx = append(bx, extra...)

	g.v = bytes.Repeat([]byte{0x01}, holen)
	g.k = make([]byte, holen)

	g.k = g.mac(g.v, []byte{0x00}, bx)
	g.v = g.mac(g.v)
	g.k = g.mac(g.v, []byte{0x01}, bx)
	g.v = g.mac(g.v)

	return g
}

// Next runs step h and returns the next candidate in [1, q-1]. Out of range
// values are skipped. After every candidate, accepted or not, the state
// advances with K = HMAC_K(V || 0x00), V = HMAC_K(V), so successive calls
// continue the same stream.
func (g *Generator) Next() *big.Int {
	for {
		t := make([]byte, 0, g.rolen+len(g.v))
		for len(t) < g.rolen {
			g.v = g.mac(g.v)
			t = append(t, g.v...)
		}

		secret := Bits2Int(t, g.qlen)
		valid := secret.Sign() > 0 && secret.Cmp(g.q) < 0

		g.k = g.mac(g.v, []byte{0x00})
		g.v = g.mac(g.v)

		if valid {
			return secret
		}
	}
}

// mac returns HMAC_K(data...) under the current key.
func (g *Generator) mac(data ...[]byte) []byte {
	m := hmac.New(g.hash, g.k)
	for _, d := range data {
		m.Write(d)
	}
	return m.Sum(nil)
}

// Nonce returns the first HMAC-SHA256 candidate for (q, x, h1, extra).
func Nonce(q, x *big.Int, h1, extra []byte) *big.Int {
	return New(q, x, h1, extra, sha256.New).Next()
}

// Int2Octets encodes x as exactly rolen big-endian bytes. Bytes above rolen
// are dropped, which only happens for x ≥ 2^(8·rolen).
func Int2Octets(x *big.Int, rolen int) []byte {
	b := x.Bytes()
	if len(b) >= rolen {
		return b[len(b)-rolen:]
	}
	out := make([]byte, rolen)
	copy(out[rolen-len(b):], b)
	return out
}

// Bits2Int interprets the leftmost qlen bits of b as a big-endian integer.
func Bits2Int(b []byte, qlen int) *big.Int {
	z := new(big.Int).SetBytes(b)
	if excess := len(b)*8 - qlen; excess > 0 {
		z.Rsh(z, uint(excess))
	}
	return z
}

// Bits2Octets applies Bits2Int, subtracts q once when that leaves a
// non-negative value, and encodes the result with Int2Octets.
func Bits2Octets(b []byte, q *big.Int, rolen int) []byte {
	z1 := Bits2Int(b, q.BitLen())
	z2 := new(big.Int).Sub(z1, q)
	if z2.Sign() < 0 {
		return Int2Octets(z1, rolen)
	}
	return Int2Octets(z2, rolen)
}
