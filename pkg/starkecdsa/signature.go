package starkecdsa

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/stark-ecdsa/pkg/felt"
)

// Signature is a STARK ECDSA signature.
type Signature struct {
	R *big.Int // x-coordinate of k·G
	S *big.Int // (k / (z + r·d))⁻¹ mod n
}

// Slice returns [r, s], the shape embedded in signed transactions.
func (sig *Signature) Slice() []*big.Int {
	return []*big.Int{new(big.Int).Set(sig.R), new(big.Int).Set(sig.S)}
}

// Hex returns r and s in canonical field element encoding.
func (sig *Signature) Hex() [2]string {
	return [2]string{felt.Hex(sig.R), felt.Hex(sig.S)}
}

// Equal reports whether both components match.
func (sig *Signature) Equal(other *Signature) bool {
	if sig == nil || other == nil {
		return sig == other
	}
	return sig.R.Cmp(other.R) == 0 && sig.S.Cmp(other.S) == 0
}

func (sig *Signature) String() string {
	h := sig.Hex()
	return fmt.Sprintf("(r=%s, s=%s)", h[0], h[1])
}

// MarshalJSON encodes the signature as ["0x<r>", "0x<s>"].
func (sig *Signature) MarshalJSON() ([]byte, error) {
	h := sig.Hex()
	return json.Marshal(h[:])
}

// UnmarshalJSON accepts a two element array of hex or decimal strings.
func (sig *Signature) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.Wrap(err, "starkecdsa: decode signature")
	}
	if len(parts) != 2 {
		return errors.Errorf("starkecdsa: signature must have 2 elements, got %d", len(parts))
	}

	r, err := felt.Parse(parts[0])
	if err != nil {
		return errors.Wrap(err, "starkecdsa: decode r")
	}
	s, err := felt.Parse(parts[1])
	if err != nil {
		return errors.Wrap(err, "starkecdsa: decode s")
	}
	sig.R, sig.S = r, s
	return nil
}
