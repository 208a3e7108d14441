package starkecdsa

import "github.com/pkg/errors"

var (
	// ErrDigestOutOfRange is returned when a digest is negative or not below
	// 2²⁵¹. It is a caller error and is never retried.
	ErrDigestOutOfRange = errors.New("starkecdsa: digest out of range [0, 2^251)")

	// ErrInvalidPrivateKey is returned for a missing private key.
	ErrInvalidPrivateKey = errors.New("starkecdsa: invalid private key")

	// ErrPointAtInfinity is returned when a private key is congruent to zero
	// modulo the curve order and so has no public key.
	ErrPointAtInfinity = errors.New("starkecdsa: public key is the point at infinity")

	// ErrAttemptsExhausted is returned when the signing loop hits its retry
	// cap. With the default cap this indicates an arithmetic defect.
	ErrAttemptsExhausted = errors.New("starkecdsa: no valid nonce within attempt limit")
)
