package codec

import "fmt"

// Limit wraps another codec to enforce a maximum payload size in both
// directions. A value of 0 disables the corresponding check.
//
// Typical use: protect against oversized/malicious inputs coming from a
// shared cache, and keep oversized values from being written to it.
type Limit[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	// MaxDecode is the maximum accepted length (in bytes) of a stored entry.
	MaxDecode int
	// MaxEncode is the maximum length of an encoded value.
	MaxEncode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, fmt.Errorf("encoded value too large: %d > %d", len(b), c.MaxEncode)
	}
	return b, nil
}

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
