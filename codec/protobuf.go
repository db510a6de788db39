package codec

import (
	"errors"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var errNilCtor = errors.New("codec: protobuf constructor is nil")

// Protobuf stores messages in the binary wire format.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *mypb.User { return &mypb.User{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.new == nil {
		var zero T
		return zero, errNilCtor
	}
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// ProtoJSON stores messages in the canonical protobuf JSON mapping, so entries
// stay readable by non-Go consumers of the same cache.
type ProtoJSON[T proto.Message] struct {
	new func() T
	mo  protojson.MarshalOptions
	uo  protojson.UnmarshalOptions
}

func NewProtoJSON[T proto.Message](ctor func() T) ProtoJSON[T] {
	return ProtoJSON[T]{
		new: ctor,
		mo:  protojson.MarshalOptions{UseProtoNames: true},
		uo:  protojson.UnmarshalOptions{DiscardUnknown: true},
	}
}

func (c ProtoJSON[T]) Encode(v T) ([]byte, error) {
	return c.mo.Marshal(v)
}

func (c ProtoJSON[T]) Decode(b []byte) (T, error) {
	if c.new == nil {
		var zero T
		return zero, errNilCtor
	}
	m := c.new()
	err := c.uo.Unmarshal(b, m)
	return m, err
}
