package codec

import "github.com/eigerco/extrinsic/pkg/serialization/codec/scale"

// SCALECodec implements the Codec interface for SCALE encoding and decoding.
type SCALECodec struct {
	Options scale.DecodeOptions
}

// NewSCALECodec returns a SCALE codec decoding with opts.
func NewSCALECodec(opts scale.DecodeOptions) *SCALECodec {
	return &SCALECodec{Options: opts}
}

func (s *SCALECodec) Name() string { return "scale" }

func (s *SCALECodec) Marshal(v interface{}) ([]byte, error) {
	return scale.Marshal(v)
}

func (s *SCALECodec) Unmarshal(data []byte, v interface{}) error {
	return scale.UnmarshalWithOptions(data, v, s.Options)
}
