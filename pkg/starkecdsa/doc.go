// Package starkecdsa signs transaction digests on the STARK curve and derives
// public keys from private keys.
//
// Signatures follow the StarkWare ECDSA variant: the nonce is derived
// deterministically with RFC 6979 (HMAC-SHA256), r is the raw x-coordinate of
// k·G, and both r and w = k/(z + r·d) must lie in [1, 2²⁵¹). Signing the same
// digest with the same key always yields the same (r, s) pair, bit for bit
// compatible with the reference Python and JavaScript libraries.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/stark-ecdsa/pkg/starkecdsa"
//
//	priv, _ := new(big.Int).SetString("2dccce1da22003777062ee0870e9881b460a8b7eca276870f57c601f182136c", 16)
//	digest, _ := new(big.Int).SetString("c465dd6b1bbffdb05442eb17f5ca38ad1aa78a6f56bf4415bdee219114a47", 16)
//
//	sig, err := starkecdsa.Sign(priv, digest)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sig.Hex())
//
//	pub, _ := starkecdsa.PublicKey(priv)
//	fmt.Println(felt.Hex(pub))
//
// # Engines
//
// The package level functions use a shared Engine. Build your own to attach a
// logger or change the retry cap:
//
//	engine := starkecdsa.NewEngine().
//	    WithLogger(logger).
//	    WithMaxAttempts(1 << 10)
//
// Rejected nonce candidates are reported at debug level only; they are part
// of normal operation.
//
// An Engine holds no mutable state and can be shared by any number of
// goroutines.
//
// # Digests
//
// The digest is computed elsewhere (typically a Pedersen or Poseidon hash of
// the transaction fields) and must lie in [0, 2²⁵¹). Digests outside that
// range are rejected with ErrDigestOutOfRange before any work is done.
package starkecdsa
