package codec

import (
	"encoding/json"
	"errors"
)

// Bytes is an identity codec for []byte values. Encode/Decode return the
// input unchanged.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

var errInvalidJSON = errors.New("codec: invalid JSON document")

// RawJSON stores a json.RawMessage as-is, checking validity both ways so a
// damaged entry is reported at Decode instead of surfacing later in the caller.
type RawJSON struct{}

func (RawJSON) Encode(m json.RawMessage) ([]byte, error) {
	if !json.Valid(m) {
		return nil, errInvalidJSON
	}
	return m, nil
}

func (RawJSON) Decode(b []byte) (json.RawMessage, error) {
	if !json.Valid(b) {
		return nil, errInvalidJSON
	}
	return append(json.RawMessage(nil), b...), nil
}
