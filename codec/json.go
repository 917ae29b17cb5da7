package codec

import "encoding/json"

// JSON uses encoding/json. It is the default: with JSON payloads the stored
// envelope stays plain, inspectable JSON.
type JSON[V any] struct{}

var _ Codec[json.RawMessage] = JSON[json.RawMessage]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
