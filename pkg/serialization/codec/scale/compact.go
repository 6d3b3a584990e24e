package scale

import (
	"fmt"
	"math"
	"math/bits"

	"lukechampine.com/uint128"
)

// Compact size class boundaries.
const (
	compactSingleByteMax = 1<<6 - 1  // 63
	compactTwoByteMax    = 1<<14 - 1 // 16383
	compactFourByteMax   = 1<<30 - 1 // 2^30 - 1

	compactModeSingle = 0b00
	compactModeTwo    = 0b01
	compactModeFour   = 0b10
	compactModeBig    = 0b11

	// compactBigMaxBytes is the widest big-integer payload this codec accepts (u128).
	compactBigMaxBytes = 16
)

// CompactLen returns the number of bytes the compact encoding of v occupies.
func CompactLen(v uint128.Uint128) int {
	switch {
	case v.Cmp64(compactSingleByteMax) <= 0:
		return 1
	case v.Cmp64(compactTwoByteMax) <= 0:
		return 2
	case v.Cmp64(compactFourByteMax) <= 0:
		return 4
	default:
		return 1 + bigModeLen(v)
	}
}

// bigModeLen is the minimal number of little-endian bytes holding v, never less than 4.
func bigModeLen(v uint128.Uint128) int {
	bitLen := bits.Len64(v.Lo)
	if v.Hi != 0 {
		bitLen = 64 + bits.Len64(v.Hi)
	}
	n := (bitLen + 7) / 8
	if n < 4 {
		n = 4
	}
	return n
}

// EncodeCompact encodes v in its minimal compact size class.
func EncodeCompact(v uint128.Uint128) []byte {
	return AppendCompact(make([]byte, 0, CompactLen(v)), v)
}

// EncodeCompactUint64 is EncodeCompact for values that fit 64 bits.
func EncodeCompactUint64(v uint64) []byte {
	return EncodeCompact(uint128.From64(v))
}

// AppendCompact appends the compact encoding of v to dst.
func AppendCompact(dst []byte, v uint128.Uint128) []byte {
	switch {
	case v.Cmp64(compactSingleByteMax) <= 0:
		return append(dst, byte(v.Lo<<2)|compactModeSingle)
	case v.Cmp64(compactTwoByteMax) <= 0:
		x := uint16(v.Lo<<2) | compactModeTwo
		return append(dst, byte(x), byte(x>>8))
	case v.Cmp64(compactFourByteMax) <= 0:
		x := uint32(v.Lo<<2) | compactModeFour
		return append(dst, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
	}

	n := bigModeLen(v)
	dst = append(dst, byte((n-4)<<2)|compactModeBig)
	var le [16]byte
	v.PutBytes(le[:])
	return append(dst, le[:n]...)
}

// DecodeCompact decodes one compact integer from the start of data and reports
// how many bytes it consumed.
func DecodeCompact(data []byte, opts DecodeOptions) (uint128.Uint128, int, error) {
	d := NewDecoderBytes(data, opts)
	v, err := d.DecodeCompact()
	if err != nil {
		return uint128.Zero, 0, err
	}
	return v, d.Offset(), nil
}

// DecodeCompact reads one compact integer at the cursor.
func (d *Decoder) DecodeCompact() (uint128.Uint128, error) {
	start := d.offset
	prefix, err := d.ReadOctet()
	if err != nil {
		return uint128.Zero, err
	}

	switch prefix & 0b11 {
	case compactModeSingle:
		return uint128.From64(uint64(prefix >> 2)), nil
	case compactModeTwo:
		b, err := d.readN(1)
		if err != nil {
			return uint128.Zero, err
		}
		x := (uint64(prefix) | uint64(b[0])<<8) >> 2
		if x <= compactSingleByteMax {
			if err := d.nonCanonical(start, x); err != nil {
				return uint128.Zero, err
			}
		}
		return uint128.From64(x), nil
	case compactModeFour:
		b, err := d.readN(3)
		if err != nil {
			return uint128.Zero, err
		}
		x := (uint64(prefix) | uint64(b[0])<<8 | uint64(b[1])<<16 | uint64(b[2])<<24) >> 2
		if x <= compactTwoByteMax {
			if err := d.nonCanonical(start, x); err != nil {
				return uint128.Zero, err
			}
		}
		return uint128.From64(x), nil
	}

	n := int(prefix>>2) + 4
	if n > compactBigMaxBytes {
		return uint128.Zero, fmt.Errorf("%w: compact declares %d bytes at offset %d", ErrValueOverflow, n, start)
	}
	b, err := d.readN(n)
	if err != nil {
		return uint128.Zero, err
	}
	var le [16]byte
	copy(le[:], b)
	v := uint128.FromBytes(le[:])

	// The big-integer form must hold a value above 2^30-1 in exactly n bytes.
	if v.Cmp64(compactFourByteMax) <= 0 || b[n-1] == 0 {
		if !d.opts.AllowNonCanonical {
			return uint128.Zero, fmt.Errorf("%w: value %s in %d-byte form at offset %d", ErrNonCanonical, v, n, start)
		}
	}
	return v, nil
}

// DecodeCompactUint64 reads a compact integer that must fit 64 bits.
func (d *Decoder) DecodeCompactUint64() (uint64, error) {
	start := d.offset
	v, err := d.DecodeCompact()
	if err != nil {
		return 0, err
	}
	if v.Hi != 0 {
		return 0, fmt.Errorf("%w: compact %s at offset %d exceeds 64 bits", ErrValueOverflow, v, start)
	}
	return v.Lo, nil
}

// DecodeCompactUint32 reads a compact integer that must fit 32 bits.
func (d *Decoder) DecodeCompactUint32() (uint32, error) {
	start := d.offset
	v, err := d.DecodeCompactUint64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: compact %d at offset %d exceeds 32 bits", ErrValueOverflow, v, start)
	}
	return uint32(v), nil
}

func (d *Decoder) nonCanonical(offset int, v uint64) error {
	if d.opts.AllowNonCanonical {
		return nil
	}
	return fmt.Errorf("%w: value %d at offset %d fits a smaller size class", ErrNonCanonical, v, offset)
}
