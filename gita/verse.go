package gita

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Verse is one record of a chapter payload. Only Verse is interpreted for
// lookup; the other fields are decoded for convenience and Raw keeps the
// whole record.
type Verse struct {
	Verse           int          `json:"verse"`
	Text            string       `json:"text"`
	Transliteration string       `json:"transliteration,omitempty"`
	Translation     string       `json:"translation,omitempty"`
	Commentaries    Commentaries `json:"commentaries"`

	raw json.RawMessage
}

// Raw returns the record bytes as cached, in compact JSON form.
func (v Verse) Raw() json.RawMessage { return v.raw }

// verseBody holds the record fields undecoded so a field of an unexpected
// type blanks that field instead of failing the record.
type verseBody struct {
	Text            json.RawMessage `json:"text"`
	Transliteration json.RawMessage `json:"transliteration"`
	Translation     json.RawMessage `json:"translation"`
	Commentaries    json.RawMessage `json:"commentaries"`
}

// UnmarshalJSON decodes a verse record leniently. Verse is set only for an
// integer "verse" field; text fields that are not strings read as "".
func (v *Verse) UnmarshalJSON(b []byte) error {
	var body verseBody
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}
	n, _ := verseNumber(b)
	*v = Verse{
		Verse:           n,
		Text:            stringField(body.Text),
		Transliteration: stringField(body.Transliteration),
		Translation:     stringField(body.Translation),
		raw:             append(json.RawMessage(nil), b...),
	}
	if len(body.Commentaries) > 0 {
		if err := json.Unmarshal(body.Commentaries, &v.Commentaries); err != nil {
			v.Commentaries = Commentaries{}
		}
	}
	return nil
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Commentary is one named commentary.
type Commentary struct {
	Author string
	Text   string
}

// Commentaries holds either a single string or a mapping of author to text.
// Mapping order follows the source document.
type Commentaries struct {
	single  string
	isText  bool
	entries []Commentary
}

// Primary returns the commentary to show: the string form, or the value of
// the first mapping entry. Empty when there is none.
func (c Commentaries) Primary() string {
	if c.isText {
		return c.single
	}
	if len(c.entries) > 0 {
		return c.entries[0].Text
	}
	return ""
}

// Entries returns the named commentaries in source order. A string form is
// reported as a single entry with an empty Author.
func (c Commentaries) Entries() []Commentary {
	if c.isText {
		return []Commentary{{Text: c.single}}
	}
	return append([]Commentary(nil), c.entries...)
}

func (c Commentaries) IsZero() bool { return !c.isText && len(c.entries) == 0 }

func (c *Commentaries) UnmarshalJSON(b []byte) error {
	*c = Commentaries{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.single, c.isText = s, true
		return nil
	case '{':
		entries, err := decodeOrdered(b)
		if err != nil {
			return err
		}
		c.entries = entries
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		for i, it := range items {
			c.entries = append(c.entries, Commentary{Author: strconv.Itoa(i), Text: valueText(it)})
		}
		return nil
	default:
		// null, numbers and booleans carry no commentary
		return nil
	}
}

func (c Commentaries) MarshalJSON() ([]byte, error) {
	if c.isText {
		return json.Marshal(c.single)
	}
	if len(c.entries) == 0 {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(e.Author)
		v, _ := json.Marshal(e.Text)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeOrdered walks a JSON object keeping key order, which map decoding loses.
func decodeOrdered(b []byte) ([]Commentary, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil { // '{'
		return nil, err
	}
	var out []Commentary
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("commentaries: unexpected key token %v", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		out = append(out, Commentary{Author: key, Text: valueText(val)})
	}
	if _, err := dec.Token(); err != nil { // '}'
		return nil, err
	}
	return out, nil
}

// valueText renders a commentary value: strings as-is, null as empty,
// anything else as its compact JSON text.
func valueText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}
