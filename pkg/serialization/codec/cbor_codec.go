package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBORCodec implements the Codec interface using deterministic (core) CBOR.
type CBORCodec struct {
	em cbor.EncMode
}

// NewCBORCodec builds a CBOR codec with canonical map ordering.
func NewCBORCodec() (*CBORCodec, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor enc mode: %w", err)
	}
	return &CBORCodec{em: em}, nil
}

func (c *CBORCodec) Name() string { return "cbor" }

func (c *CBORCodec) Marshal(v interface{}) ([]byte, error) {
	data, err := c.em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal: %w", err)
	}
	return data, nil
}

func (c *CBORCodec) Unmarshal(data []byte, v interface{}) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cbor unmarshal: %w", err)
	}
	return nil
}
