package starkecdsa

import (
	"math/big"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/rfc6979"
)

// PadDigest shifts a digest one nibble to the left when its bit length is at
// least 248 and falls 1 to 4 bits past a byte boundary, as elliptic.js does
// when it hashes the digest for nonce generation.
func PadDigest(digest *big.Int) *big.Int {
	n := digest.BitLen()
	if rem := n % 8; n >= 248 && rem >= 1 && rem <= 4 {
		return new(big.Int).Lsh(digest, 4)
	}
	return new(big.Int).Set(digest)
}

// GenerateK returns the RFC 6979 nonce for (digest, priv). The padded digest
// enters the DRBG as its minimal big-endian encoding. A non-nil seed is
// encoded the same way and mixed in as additional data; a nil or zero seed
// adds nothing.
func (e *Engine) GenerateK(digest, priv, seed *big.Int) *big.Int {
	var extra []byte
	if seed != nil {
		extra = seed.Bytes()
	}
	return rfc6979.Nonce(e.curve.N, priv, PadDigest(digest).Bytes(), extra)
}

// GenerateK is Engine.GenerateK on the default engine.
func GenerateK(digest, priv, seed *big.Int) *big.Int {
	return defaultEngine.GenerateK(digest, priv, seed)
}
