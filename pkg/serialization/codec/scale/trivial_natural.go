package scale

import (
	"math"
)

// EncodeUint16 encodes a fixed-width little-endian u16.
func EncodeUint16(x uint16) []byte {
	return serializeTrivialNatural(x, 2)
}

// EncodeUint32 encodes a fixed-width little-endian u32.
func EncodeUint32(x uint32) []byte {
	return serializeTrivialNatural(x, 4)
}

// DecodeUint16 decodes a fixed-width little-endian u16 from the first two bytes of b.
func DecodeUint16(b []byte) uint16 {
	var v uint16
	deserializeTrivialNatural(b[:2], &v)
	return v
}

// DecodeUint32 decodes a fixed-width little-endian u32 from the first four bytes of b.
func DecodeUint32(b []byte) uint32 {
	var v uint32
	deserializeTrivialNatural(b[:4], &v)
	return v
}

// serializeTrivialNatural writes the low l bytes of x in little-endian order.
func serializeTrivialNatural[T uint8 | uint16 | uint32 | uint64](x T, l uint) []byte {
	bytes := make([]byte, 0, l)
	for i := uint(0); i < l; i++ {
		bytes = append(bytes, byte((x>>(8*i))&T(math.MaxUint8)))
	}
	return bytes
}

// deserializeTrivialNatural reads a little-endian natural of len(serialized) bytes.
func deserializeTrivialNatural[T uint8 | uint16 | uint32 | uint64](serialized []byte, u *T) {
	*u = 0
	for i := 0; i < len(serialized); i++ {
		*u |= T(serialized[i]) << (8 * i)
	}
}

// signExtend interprets the low l bytes of x as a two's complement integer.
func signExtend(x uint64, l uint) int64 {
	if l == 0 || l >= 8 {
		return int64(x)
	}
	shift := 64 - 8*l
	return int64(x<<shift) >> shift
}
