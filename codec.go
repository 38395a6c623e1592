package asmutable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MarshalJSON encodes the enumerable own properties in order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range o.props.keys {
		d := o.props.props[k]
		if !d.Enumerable {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := appendMember(&buf, k, d.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func appendMember(buf *bytes.Buffer, k Key, v interface{}) error {
	name, err := json.Marshal(string(k))
	if err != nil {
		return fmt.Errorf("marshal key %q: %w", k, err)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", k, err)
	}
	buf.Write(name)
	buf.WriteByte(':')
	buf.Write(body)
	return nil
}

// MarshalJSON encodes the elements, with holes as null. Named properties
// are not encoded.
func (a *Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a.Values() {
		if i > 0 {
			buf.WriteByte(',')
		}
		body, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal [%d]: %w", i, err)
		}
		buf.Write(body)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// ParseJSON decodes a JSON document into *Object and *Array containers,
// keeping object members in document order. Numbers decode as float64.
// When a member name repeats, the last value wins at the first position.
func ParseJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeJSONValue(dec, 0)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse json: unexpected data after top-level value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (interface{}, error) {
	if depth > DefaultMaxDepth {
		return nil, ErrTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		o := NewObject()
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, ok := nameTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected member name %v", nameTok)
			}
			v, err := decodeJSONValue(dec, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", name, err)
			}
			o.Set(Key(name), v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return o, nil
	case '[':
		a := NewArray()
		for dec.More() {
			v, err := decodeJSONValue(dec, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", a.Len(), err)
			}
			a.Append(v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}
