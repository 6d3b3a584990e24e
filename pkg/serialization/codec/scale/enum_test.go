package scale_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/extrinsic/pkg/serialization/codec/scale"
)

type shapeCircle uint32
type shapeLabel string

var shapeVariants = scale.NewVariants("Shape",
	scale.Variant{Index: 0, Name: "Point"},
	scale.Variant{Index: 1, Name: "Circle", Proto: shapeCircle(0)},
	scale.Variant{Index: 4, Name: "Label", Proto: shapeLabel("")},
)

// shape is a small tagged union exercising unit and payload variants.
type shape struct {
	inner any
}

func (s shape) IndexValue() (uint, any, error) {
	if _, ok := s.inner.(uint8); ok || s.inner == nil {
		return 0, nil, nil
	}
	idx, err := shapeVariants.IndexOf(s.inner)
	return idx, s.inner, err
}

func (s shape) ValueAt(index uint) (any, error) {
	return shapeVariants.ValueAt(index)
}

func (s *shape) SetValue(value any) error {
	switch v := value.(type) {
	case uint8:
		s.inner = nil
	case shapeCircle, shapeLabel:
		s.inner = v
	default:
		return fmt.Errorf(scale.ErrUnsupportedType, v)
	}
	return nil
}

func TestEnumRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		value    shape
		expected []byte
	}{
		{"unit variant", shape{}, []byte{0x00}},
		{"circle", shape{inner: shapeCircle(0x01020304)}, []byte{0x01, 0x04, 0x03, 0x02, 0x01}},
		{"label", shape{inner: shapeLabel("ab")}, []byte{0x04, 0x08, 'a', 'b'}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := scale.Marshal(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, encoded)

			var decoded shape
			require.NoError(t, scale.Unmarshal(encoded, &decoded))
			assert.Equal(t, tc.value, decoded)
		})
	}
}

func TestEnumUnknownVariant(t *testing.T) {
	for _, b := range []byte{2, 3, 5, 0xff} {
		var decoded shape
		err := scale.Unmarshal([]byte{b, 0, 0, 0, 0}, &decoded)
		assert.ErrorIs(t, err, scale.ErrUnknownVariant, "discriminant %d", b)
	}
}

func TestEnumInsideStruct(t *testing.T) {
	type wrapper struct {
		Before uint8
		Shape  shape
		After  uint8
	}
	original := wrapper{Before: 7, Shape: shape{inner: shapeCircle(9)}, After: 8}

	encoded, err := scale.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 1, 9, 0, 0, 0, 8}, encoded)

	var decoded wrapper
	require.NoError(t, scale.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)
}

func TestEnumTruncatedPayload(t *testing.T) {
	var decoded shape
	err := scale.Unmarshal([]byte{0x01, 0x04, 0x03}, &decoded)
	assert.ErrorIs(t, err, scale.ErrTruncatedInput)
}

func TestVariantsTable(t *testing.T) {
	assert.Equal(t, "Shape", shapeVariants.Union())
	assert.Equal(t, 3, shapeVariants.Len())
	assert.Equal(t, "Circle", shapeVariants.Name(1))
	assert.Equal(t, "", shapeVariants.Name(2))

	idx, err := shapeVariants.IndexOf(shapeLabel("x"))
	require.NoError(t, err)
	assert.Equal(t, uint(4), idx)

	_, err = shapeVariants.IndexOf(uint64(1))
	assert.ErrorIs(t, err, scale.ErrUnsupportedEnumTypeValue)

	_, err = shapeVariants.Lookup(256)
	assert.ErrorIs(t, err, scale.ErrUnknownVariant)
}

func TestNewVariantsRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		scale.NewVariants("dup", scale.Variant{Index: 0}, scale.Variant{Index: 0})
	})
	assert.Panics(t, func() {
		scale.NewVariants("dup",
			scale.Variant{Index: 0, Proto: uint8(0)},
			scale.Variant{Index: 1, Proto: uint8(0)},
		)
	})
}

func TestEncodeTagged(t *testing.T) {
	assert.Equal(t, []byte{0x02, 0xaa, 0xbb}, scale.EncodeTagged(2, []byte{0xaa, 0xbb}))
	assert.Equal(t, []byte{0x00}, scale.EncodeTagged(0, nil))
}
