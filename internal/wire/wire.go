package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrCorrupt = errors.New("gitacache: corrupt entry")

// Entry is the stored envelope:
//
//	{"data": <compact JSON payload>, "timestamp": <unix ms>}
//	{"bin": "<base64 payload>", "timestamp": <unix ms>}
//
// "data" is used whenever the codec produced compact JSON, which keeps entries
// readable and compatible with the browser store the layout comes from.
// Anything else (msgpack, CBOR) goes under "bin" so Decode hands back exactly
// the bytes given to Encode.
type entry struct {
	Data      json.RawMessage `json:"data,omitempty"`
	Bin       string          `json:"bin,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Encode frames payload with its store time in unix milliseconds.
func Encode(timestampMillis int64, payload []byte) ([]byte, error) {
	e := entry{Timestamp: timestampMillis}
	if isCompactJSON(payload) {
		e.Data = payload
	} else {
		e.Bin = base64.StdEncoding.EncodeToString(payload)
	}
	return json.Marshal(e)
}

// Decode validates the envelope and returns the store time and payload.
func Decode(b []byte) (timestampMillis int64, payload []byte, err error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return 0, nil, ErrCorrupt
	}
	if e.Timestamp <= 0 {
		return 0, nil, ErrCorrupt
	}
	hasData := len(e.Data) > 0 && !bytes.Equal(e.Data, []byte("null"))
	switch {
	case hasData && e.Bin != "":
		return 0, nil, ErrCorrupt
	case hasData:
		return e.Timestamp, e.Data, nil
	case e.Bin != "":
		p, err := base64.StdEncoding.DecodeString(e.Bin)
		if err != nil {
			return 0, nil, ErrCorrupt
		}
		return e.Timestamp, p, nil
	default:
		return 0, nil, ErrCorrupt
	}
}

func isCompactJSON(b []byte) bool {
	if len(b) == 0 || !json.Valid(b) {
		return false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return false
	}
	// "null" would read back as an absent field.
	return bytes.Equal(buf.Bytes(), b) && !bytes.Equal(b, []byte("null"))
}
