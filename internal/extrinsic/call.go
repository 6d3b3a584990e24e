package extrinsic

import (
	"fmt"

	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

// Call selects a function of a runtime module and carries its arguments.
// An unsigned extrinsic is a Call on its own.
type Call[A any] struct {
	Module   uint8
	Function uint8
	Args     A
}

// NewCall builds a call to function of module.
func NewCall[A any](module, function uint8, args A) Call[A] {
	return Call[A]{Module: module, Function: function, Args: args}
}

// DecodeCall reads the two selector bytes and the arguments at the cursor.
func DecodeCall[A any](d *scale.Decoder) (Call[A], error) {
	var c Call[A]
	if err := d.Decode(&c); err != nil {
		return Call[A]{}, fmt.Errorf("call: %w", err)
	}
	return c, nil
}
