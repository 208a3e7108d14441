package starkecdsa

import (
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"lukechampine.com/frand"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/curve"
)

func TestPublicKeyVectors(t *testing.T) {
	var vectors []keyVector
	loadFixture(t, "public_keys.json", &vectors)
	require.Len(t, vectors, 11)

	for _, v := range vectors {
		t.Run(v.PrivateKey, func(t *testing.T) {
			pub, err := PublicKey(num(t, v.PrivateKey))
			require.NoError(t, err)
			assert.Equal(t, 0, pub.Cmp(num(t, v.PublicKey)), "got %#x", pub)
		})
	}
}

func TestPublicKeyKnownVector(t *testing.T) {
	priv := num(t, "0xe3e70682c2094cac629f6fbed82c07cd")
	pub, err := PublicKey(priv)
	require.NoError(t, err)
	assert.Equal(t, "7e52885445756b313ea16849145363ccb73fb4ab0440dbac333cf9d13de82b9", pub.Text(16))

	point, err := PublicKeyPoint(priv)
	require.NoError(t, err)
	assert.True(t, curve.Stark().IsOnCurve(point.X(), point.Y()))
	assert.Equal(t, 0, pub.Cmp(point.X()))
}

func TestSignVectors(t *testing.T) {
	var vectors []signVector
	loadFixture(t, "signatures.json", &vectors)
	require.NotEmpty(t, vectors)

	for _, v := range vectors {
		t.Run(v.Name, func(t *testing.T) {
			priv, digest := num(t, v.PrivateKey), num(t, v.Digest)
			seed := seedOf(t, v.Seed)

			sig, err := SignWithSeed(priv, digest, seed)
			require.NoError(t, err)

			want := &Signature{R: num(t, v.R), S: num(t, v.S)}
			assert.True(t, want.Equal(sig), "signature mismatch:\n%s", spew.Sdump(want, sig))
		})
	}
}

func TestSignStarkWareVector(t *testing.T) {
	priv := num(t, "0x2dccce1da22003777062ee0870e9881b460a8b7eca276870f57c601f182136c")
	digest := num(t, "0xc465dd6b1bbffdb05442eb17f5ca38ad1aa78a6f56bf4415bdee219114a47")

	sig, err := Sign(priv, digest)
	require.NoError(t, err)
	assert.Equal(t, "0x05f496f6f210b5810b2711c74c15c05244dad43d18ecbbdbe6ed55584bc3b0a2", sig.Hex()[0])
	assert.Equal(t, "0x04e8657b153787f741a67c0666bad6426c3741b478c8eaa3155196fc571416f3", sig.Hex()[1])
}

func TestGenerateKVectors(t *testing.T) {
	var vectors []signVector
	loadFixture(t, "signatures.json", &vectors)

	for _, v := range vectors {
		t.Run(v.Name, func(t *testing.T) {
			priv, digest := num(t, v.PrivateKey), num(t, v.Digest)
			seed := seedOf(t, v.Seed)
			want := num(t, v.K)

			// Stable across repeated calls and independent of process state.
			for i := 0; i < 3; i++ {
				k := GenerateK(digest, priv, seed)
				require.Equal(t, 0, k.Cmp(want), "call %d: got %#x", i, k)
			}
		})
	}
}

func TestGenerateKSeeds(t *testing.T) {
	priv, digest := big.NewInt(1234), big.NewInt(0xabcdef)

	unseeded := GenerateK(digest, priv, nil)
	assert.Equal(t, "2a6c8b4cc6d9dc58d52b609e8bfb2644daf6a6478c0a2f855a56829876baefe", unseeded.Text(16))

	// A zero seed encodes to no additional data.
	assert.Equal(t, 0, unseeded.Cmp(GenerateK(digest, priv, big.NewInt(0))))

	assert.Equal(t, "4f55490f0561c33881abc759f299cacd383c6536656697a284d190ca265dc34",
		GenerateK(digest, priv, big.NewInt(1)).Text(16))
	assert.Equal(t, "6a7976788d8c6fa84aac673b52fab71e0d8257cdefa51cb31cd1a39e8d705e0",
		GenerateK(digest, priv, big.NewInt(2)).Text(16))
}

func TestPadDigest(t *testing.T) {
	one := big.NewInt(1)
	bits := func(n uint) *big.Int { return new(big.Int).Lsh(one, n-1) } // smallest n-bit value

	tests := []struct {
		bitLen uint
		padded bool
	}{
		{1, false},
		{244, false},
		{247, false},
		{248, false},
		{249, true},
		{250, true},
		{251, true},
		{252, true},
		{253, false},
		{256, false},
	}

	for _, tt := range tests {
		d := bits(tt.bitLen)
		got := PadDigest(d)
		if tt.padded {
			assert.Equal(t, 0, got.Cmp(new(big.Int).Lsh(d, 4)), "bit length %d", tt.bitLen)
		} else {
			assert.Equal(t, 0, got.Cmp(d), "bit length %d", tt.bitLen)
		}
	}

	assert.Equal(t, 0, PadDigest(big.NewInt(0)).Sign())

	d := big.NewInt(42)
	PadDigest(d).SetInt64(7)
	assert.Equal(t, int64(42), d.Int64(), "PadDigest must not alias its input")
}

func TestSignIsDeterministic(t *testing.T) {
	priv, digest := big.NewInt(1234), num(t, "0x3bd8e2d0ffe2d3a3f5a34c3af9e6e0a3b1c2d4e5f60718293a4b5c6d7e8f901")

	first, err := Sign(priv, digest)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Signature, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig, err := Sign(priv, digest)
			if err == nil {
				results[i] = sig
			}
		}(i)
	}
	wg.Wait()

	for i, sig := range results {
		require.NotNil(t, sig, "goroutine %d failed", i)
		assert.True(t, first.Equal(sig), "goroutine %d produced %s, want %s", i, sig, first)
	}
}

func TestSignRangeAndKeyTotality(t *testing.T) {
	rng := frand.NewCustom([]byte("starkecdsa-property-tests-seed-0"), 1024, 12)
	c := curve.Stark()

	for i := 0; i < 12; i++ {
		priv, err := GeneratePrivateKey(rng)
		require.NoError(t, err)
		require.Equal(t, 1, priv.Sign())
		require.Equal(t, -1, priv.Cmp(c.N))

		digest := new(big.Int).SetBytes(rng.Bytes(32))
		digest.Rsh(digest, 256-ElementBits)

		sig, err := Sign(priv, digest)
		require.NoError(t, err)
		for _, v := range sig.Slice() {
			assert.Equal(t, 1, v.Sign(), "component must be positive: %s", sig)
			assert.Equal(t, -1, v.Cmp(ElementBound), "component must be below 2^251: %s", sig)
		}

		pub, err := PublicKey(priv)
		require.NoError(t, err)
		assert.True(t, pub.Sign() >= 0 && pub.Cmp(c.P) < 0, "public key not a field element: %#x", pub)
	}
}

func TestSignRejectsDigestOutOfRange(t *testing.T) {
	priv := big.NewInt(1234)

	for name, digest := range map[string]*big.Int{
		"2^251":    new(big.Int).Set(ElementBound),
		"negative": big.NewInt(-1),
		"nil":      nil,
	} {
		t.Run(name, func(t *testing.T) {
			sig, err := Sign(priv, digest)
			assert.Nil(t, sig)
			assert.True(t, errors.Is(err, ErrDigestOutOfRange), "unexpected error %v", err)
		})
	}

	_, err := Sign(nil, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestPublicKeyOfZero(t *testing.T) {
	for _, priv := range []*big.Int{big.NewInt(0), new(big.Int).Set(curve.Stark().N)} {
		_, err := PublicKey(priv)
		assert.ErrorIs(t, err, ErrPointAtInfinity)
	}
	_, err := PublicKey(nil)
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

// A zero key with a zero digest makes digest + r·key vanish on every attempt,
// which drives the loop into its cap.
func TestSignRetriesAreDebugLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := NewEngine().WithLogger(zap.New(core)).WithMaxAttempts(3)

	sig, err := engine.Sign(big.NewInt(0), big.NewInt(0))
	assert.Nil(t, sig)
	require.Error(t, err)
	assert.Equal(t, ErrAttemptsExhausted, errors.Cause(err))

	entries := logs.FilterMessage("nonce rejected").All()
	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, int64(i), entry.ContextMap()["attempt"])
	}
}

func TestEngineBuildersCopy(t *testing.T) {
	base := NewEngine()
	limited := base.WithMaxAttempts(2)
	assert.Equal(t, DefaultMaxAttempts, base.maxAttempts)
	assert.Equal(t, 2, limited.maxAttempts)
	assert.Equal(t, 2, limited.WithMaxAttempts(0).maxAttempts)
	assert.NotNil(t, base.WithLogger(nil).log)
	assert.Same(t, curve.Stark(), base.Curve())
}

func TestSignatureEncoding(t *testing.T) {
	sig := &Signature{R: big.NewInt(1), S: big.NewInt(0xabc)}

	data, err := json.Marshal(sig)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		"0x0000000000000000000000000000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000000000000000000000000000abc"
	]`, string(data))

	var back Signature
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, sig.Equal(&back))

	assert.Error(t, json.Unmarshal([]byte(`["0x1"]`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"r": "0x1"}`), &back))

	slice := sig.Slice()
	slice[0].SetInt64(99)
	assert.Equal(t, int64(1), sig.R.Int64(), "Slice must copy")
}

func TestEngineWithCurve(t *testing.T) {
	custom, err := curve.NewParams("stark-copy",
		curve.Stark().P.Text(16), curve.Stark().N.Text(16), "1", curve.Stark().B.Text(16),
		curve.Stark().Gx.Text(16), curve.Stark().Gy.Text(16))
	require.NoError(t, err)

	e := NewEngine().WithCurve(custom)
	assert.Same(t, custom, e.Curve())
	assert.Same(t, custom, e.WithCurve(nil).Curve())

	priv := num(t, "0xe3e70682c2094cac629f6fbed82c07cd")
	want, err := PublicKey(priv)
	require.NoError(t, err)
	got, err := e.PublicKey(priv)
	require.NoError(t, err)
	assert.Equal(t, 0, want.Cmp(got))
}

func TestSignRetriesUntilAccepted(t *testing.T) {
	if testing.Short() {
		t.Skip("signs through many rejected nonces")
	}

	c := secp256k1Params(t)
	core, logs := observer.New(zapcore.DebugLevel)
	engine := NewEngine().WithCurve(c).WithLogger(zap.New(core))
	priv, digest := big.NewInt(1234), big.NewInt(0xabcdef)

	sig, err := engine.Sign(priv, digest)
	require.NoError(t, err)

	rejections := logs.FilterMessage("nonce rejected").Len()
	require.Greater(t, rejections, 1, "secp256k1 nonces should mostly fail the 2^251 bound")

	for _, v := range sig.Slice() {
		assert.Equal(t, 1, v.Sign())
		assert.Equal(t, -1, v.Cmp(ElementBound))
	}

	pub, err := engine.PublicKeyPoint(priv)
	require.NoError(t, err)
	assert.True(t, verify(t, c, pub, digest, sig), "signature does not verify: %s", sig)

	again, err := engine.Sign(priv, digest)
	require.NoError(t, err)
	assert.True(t, sig.Equal(again), "got %s then %s", sig, again)

	// Attempt i runs with seed i, so starting from the accepted attempt's
	// seed yields the same signature with no rejections.
	seededCore, seededLogs := observer.New(zapcore.DebugLevel)
	direct, err := engine.WithLogger(zap.New(seededCore)).SignWithSeed(priv, digest, big.NewInt(int64(rejections)))
	require.NoError(t, err)
	assert.True(t, sig.Equal(direct), "got %s, want %s", direct, sig)
	assert.Equal(t, 0, seededLogs.Len())
}

func TestGeneratePrivateKeyFollowsEngineCurve(t *testing.T) {
	rng := frand.NewCustom([]byte("starkecdsa-keygen-curve-seed-000"), 1024, 12)
	c := secp256k1Params(t)
	engine := NewEngine().WithCurve(c)

	aboveStark := false
	for i := 0; i < 16; i++ {
		priv, err := engine.GeneratePrivateKey(rng)
		require.NoError(t, err)
		require.Equal(t, 1, priv.Sign())
		require.Equal(t, -1, priv.Cmp(c.N))
		if priv.Cmp(curve.Stark().N) >= 0 {
			aboveStark = true
		}

		stark, err := GeneratePrivateKey(rng)
		require.NoError(t, err)
		require.Equal(t, -1, stark.Cmp(curve.Stark().N))
	}
	assert.True(t, aboveStark, "keys must span the engine's order, not the STARK order")
}
