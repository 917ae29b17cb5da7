package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOROptions tune NewCBOR.
type CBOROptions struct {
	// Canonical selects RFC 8949 core deterministic encoding, so equal values
	// always produce equal bytes. Off by default.
	Canonical bool
	// MaxNestedLevels bounds decode depth; 0 => 64.
	MaxNestedLevels int
}

// CBOR serializes values with fxamacker/cbor. Build it with NewCBOR; the zero
// value has no modes and panics on use.
//
// A json.RawMessage encodes as a CBOR byte string, so the payload survives
// byte for byte.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[[]byte] = CBOR[[]byte]{}

func NewCBOR[V any](opts CBOROptions) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if opts.Canonical {
		eo = cbor.CoreDetEncOptions()
	}
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}

	depth := opts.MaxNestedLevels
	if depth <= 0 {
		depth = 64
	}
	dm, err := (cbor.DecOptions{MaxNestedLevels: depth}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	if err := c.dec.Unmarshal(b, &v); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}
