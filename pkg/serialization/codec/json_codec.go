package codec

import (
	"encoding/json"
)

// JSONCodec implements the Codec interface for JSON encoding and decoding.
type JSONCodec struct {
	// Indent pretty prints the output when set.
	Indent bool
}

func (j *JSONCodec) Name() string { return "json" }

func (j *JSONCodec) Marshal(v interface{}) ([]byte, error) {
	if j.Indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func (j *JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
