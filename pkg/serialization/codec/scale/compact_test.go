package scale

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestEncodeDecodeCompact(t *testing.T) {
	testCases := []struct {
		input    uint128.Uint128
		expected []byte
	}{
		// single byte mode
		{uint128.From64(0), []byte{0x00}},
		{uint128.From64(1), []byte{0x04}},
		{uint128.From64(42), []byte{0xa8}},
		{uint128.From64(63), []byte{0xfc}},
		// two byte mode
		{uint128.From64(64), []byte{0x01, 0x01}},
		{uint128.From64(69), []byte{0x15, 0x01}},
		{uint128.From64(16383), []byte{0xfd, 0xff}},
		// four byte mode
		{uint128.From64(16384), []byte{0x02, 0x00, 0x01, 0x00}},
		{uint128.From64(math.MaxUint16), []byte{0xfe, 0xff, 0x03, 0x00}},
		{uint128.From64(1<<30 - 1), []byte{0xfe, 0xff, 0xff, 0xff}},
		// big integer mode
		{uint128.From64(1 << 30), []byte{0x03, 0x00, 0x00, 0x00, 0x40}},
		{uint128.From64(math.MaxUint32), []byte{0x03, 0xff, 0xff, 0xff, 0xff}},
		{uint128.From64(1 << 32), []byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x01}},
		{uint128.From64(1 << 48), []byte{0x0f, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}},
		{uint128.From64(math.MaxUint64), []byte{0x13, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{uint128.New(0, 1), []byte{0x17, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}},
		{uint128.Max, []byte{0x33,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("compact(%s)", tc.input), func(t *testing.T) {
			serialized := EncodeCompact(tc.input)
			assert.Equal(t, tc.expected, serialized, "serialized output mismatch for %s", tc.input)
			assert.Equal(t, len(tc.expected), CompactLen(tc.input))

			deserialized, n, err := DecodeCompact(serialized, DecodeOptions{})
			require.NoError(t, err, "decode(%x) returned an unexpected error", serialized)
			assert.Equal(t, tc.input, deserialized)
			assert.Equal(t, len(serialized), n)
		})
	}
}

func TestCompactSizeClassBoundaries(t *testing.T) {
	testCases := []struct {
		value uint64
		size  int
		mode  byte
	}{
		{0, 1, compactModeSingle},
		{63, 1, compactModeSingle},
		{64, 2, compactModeTwo},
		{16383, 2, compactModeTwo},
		{16384, 4, compactModeFour},
		{1<<30 - 1, 4, compactModeFour},
		{1 << 30, 5, compactModeBig},
	}

	for _, tc := range testCases {
		encoded := EncodeCompactUint64(tc.value)
		assert.Len(t, encoded, tc.size, "value %d", tc.value)
		assert.Equal(t, tc.mode, encoded[0]&0b11, "value %d", tc.value)

		v, n, err := DecodeCompact(encoded, DecodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, tc.value, v.Lo)
		assert.Equal(t, tc.size, n)
	}
}

func TestAppendCompact(t *testing.T) {
	dst := []byte{0xaa}
	dst = AppendCompact(dst, uint128.From64(64))
	dst = AppendCompact(dst, uint128.From64(1))
	assert.Equal(t, []byte{0xaa, 0x01, 0x01, 0x04}, dst)
}

func TestDecodeCompactConsumesOnlyItsBytes(t *testing.T) {
	v, n, err := DecodeCompact([]byte{0x01, 0x01, 0xff, 0xff}, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, uint64(64), v.Lo)
	assert.Equal(t, 2, n)
}

func TestDecodeCompactTruncated(t *testing.T) {
	for _, value := range []uint128.Uint128{
		uint128.From64(64),
		uint128.From64(16384),
		uint128.From64(1 << 30),
		uint128.From64(math.MaxUint64),
		uint128.Max,
	} {
		encoded := EncodeCompact(value)
		for i := 0; i < len(encoded); i++ {
			_, _, err := DecodeCompact(encoded[:i], DecodeOptions{})
			assert.ErrorIs(t, err, ErrTruncatedInput, "value %s prefix %x", value, encoded[:i])
		}
	}
}

func TestDecodeCompactNonCanonical(t *testing.T) {
	testCases := []struct {
		name    string
		input   []byte
		lenient uint64
	}{
		{"two byte mode holding 1", []byte{0x05, 0x00}, 1},
		{"two byte mode holding 63", []byte{0xfd, 0x00}, 63},
		{"four byte mode holding 64", []byte{0x02, 0x01, 0x00, 0x00}, 64},
		{"four byte mode holding 16383", []byte{0xfe, 0xff, 0x00, 0x00}, 16383},
		{"big mode holding 2^30-1", []byte{0x03, 0xff, 0xff, 0xff, 0x3f}, 1<<30 - 1},
		{"big mode with zero top byte", []byte{0x07, 0x00, 0x00, 0x00, 0x40, 0x00}, 1 << 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeCompact(tc.input, DecodeOptions{})
			assert.ErrorIs(t, err, ErrNonCanonical)

			v, n, err := DecodeCompact(tc.input, DecodeOptions{AllowNonCanonical: true})
			require.NoError(t, err)
			assert.Equal(t, uint128.From64(tc.lenient), v)
			assert.Equal(t, len(tc.input), n)
		})
	}
}

func TestDecodeCompactOverflow(t *testing.T) {
	// 17 byte payload cannot be held in 128 bits.
	input := append([]byte{0x37}, make([]byte, 17)...)
	input[17] = 0x01
	_, _, err := DecodeCompact(input, DecodeOptions{})
	assert.ErrorIs(t, err, ErrValueOverflow)

	d := NewDecoderBytes(EncodeCompact(uint128.New(0, 1)), DecodeOptions{})
	_, err = d.DecodeCompactUint64()
	assert.ErrorIs(t, err, ErrValueOverflow)

	d = NewDecoderBytes(EncodeCompactUint64(math.MaxUint32+1), DecodeOptions{})
	_, err = d.DecodeCompactUint32()
	assert.ErrorIs(t, err, ErrValueOverflow)

	d = NewDecoderBytes(EncodeCompactUint64(math.MaxUint32), DecodeOptions{})
	v, err := d.DecodeCompactUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), v)
}
