// Package merge combines partial JSON fragments into one lossless document.
// Conflicting scalar leaves are concatenated with a visible separator rather
// than resolved, so no extracted value is ever silently dropped.
package merge

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the Value union.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

// Pair is one key/value entry of a Mapping, held in insertion order.
type Pair struct {
	Key   string
	Value *Value
}

// Value is a JSON document in merge-friendly form. Exactly one of the
// payload fields is meaningful for a given Kind. Mappings keep insertion
// order so merged output is stable across runs.
type Value struct {
	Kind     Kind
	Scalar   json.RawMessage
	Mapping  []Pair
	Sequence []*Value
}

// NewScalar wraps a raw JSON scalar token (string, number, bool or null).
func NewScalar(raw json.RawMessage) *Value {
	return &Value{Kind: KindScalar, Scalar: raw}
}

// NewMapping returns an empty ordered mapping.
func NewMapping() *Value {
	return &Value{Kind: KindMapping}
}

// Get returns the value stored under key, or nil.
func (v *Value) Get(key string) *Value {
	for i := range v.Mapping {
		if v.Mapping[i].Key == key {
			return v.Mapping[i].Value
		}
	}
	return nil
}

// Set inserts or replaces the value under key, preserving first-seen order.
func (v *Value) Set(key string, val *Value) {
	for i := range v.Mapping {
		if v.Mapping[i].Key == key {
			v.Mapping[i].Value = val
			return
		}
	}
	v.Mapping = append(v.Mapping, Pair{Key: key, Value: val})
}

// Decode parses raw JSON into a Value. Numbers are kept as their original
// source text so merging never reformats 1.10 into 1.1.
func Decode(raw []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	val, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fragment: %w", err)
	}
	return val, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		raw, _ := json.Marshal(t)
		return NewScalar(raw), nil
	case json.Number:
		return NewScalar(json.RawMessage(t.String())), nil
	case bool:
		if t {
			return NewScalar(json.RawMessage("true")), nil
		}
		return NewScalar(json.RawMessage("false")), nil
	case nil:
		return NewScalar(json.RawMessage("null")), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeMapping(dec *json.Decoder) (*Value, error) {
	mapping := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}

		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		mapping.Set(key, val)
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return mapping, nil
}

func decodeSequence(dec *json.Decoder) (*Value, error) {
	seq := &Value{Kind: KindSequence}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		seq.Sequence = append(seq.Sequence, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return seq, nil
}

// Encode renders the Value back to JSON, preserving mapping order.
func (v *Value) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v *Value) error {
	switch v.Kind {
	case KindScalar:
		if len(v.Scalar) == 0 {
			buf.WriteString("null")
			return nil
		}
		buf.Write(v.Scalar)
		return nil
	case KindMapping:
		buf.WriteByte('{')
		for i, pair := range v.Mapping {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(pair.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := encodeValue(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.Sequence {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}
	return fmt.Errorf("unknown value kind %d", v.Kind)
}

// scalarText returns the scalar's content as plain text. JSON strings lose
// their quotes; every other scalar keeps its source form.
func (v *Value) scalarText() string {
	var s string
	if err := json.Unmarshal(v.Scalar, &s); err == nil {
		return s
	}
	return string(v.Scalar)
}
