package serialization

import (
	"fmt"

	"github.com/eigerco/extrinsic/pkg/serialization/codec"
)

// Serializer provides methods to encode and decode using a specified codec.
type Serializer struct {
	codec codec.Codec
}

// NewSerializer initializes a new Serializer with the given codec.
func NewSerializer(c codec.Codec) *Serializer {
	return &Serializer{codec: c}
}

// ForFormat returns a serializer for one of "scale", "json" or "cbor".
func ForFormat(format string, indent bool) (*Serializer, error) {
	switch format {
	case "scale":
		return NewSerializer(&codec.SCALECodec{}), nil
	case "json":
		return NewSerializer(&codec.JSONCodec{Indent: indent}), nil
	case "cbor":
		c, err := codec.NewCBORCodec()
		if err != nil {
			return nil, err
		}
		return NewSerializer(c), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Format returns the name of the underlying codec.
func (s *Serializer) Format() string {
	return s.codec.Name()
}

// Encode serializes the given value using the codec.
func (s *Serializer) Encode(v interface{}) ([]byte, error) {
	return s.codec.Marshal(v)
}

// Decode deserializes the given data into the specified value using the codec.
func (s *Serializer) Decode(data []byte, v interface{}) error {
	return s.codec.Unmarshal(data, v)
}
