package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the default codec. The zero value is ready to use.
// HTML characters are not escaped, so stored entries stay readable.
type JSON[V any] struct {
	// DisallowUnknownFields makes Decode fail on fields V does not declare.
	DisallowUnknownFields bool
}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (c JSON[V]) Decode(b []byte) (V, error) {
	var v V
	dec := json.NewDecoder(bytes.NewReader(b))
	if c.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	err := dec.Decode(&v)
	return v, err
}
