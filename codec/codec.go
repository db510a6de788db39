// Package codec converts cached values to and from the bytes handed to a
// provider. JSON is the default; the binary codecs trade readability of the
// stored entry for size and speed.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
