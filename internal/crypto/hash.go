package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var ErrHexTooLong = errors.New("hex input too long")

type Hash [HashSize]byte

// HashData hashes the input data using blake2b-256
func HashData(data []byte) Hash {
	hash := blake2b.Sum256(data)
	return hash
}

// Blake2b512 hashes the concatenation of parts using blake2b-512
func Blake2b512(parts ...[]byte) [Blake2b512Size]byte {
	h, _ := blake2b.New512(nil)
	for _, p := range parts {
		h.Write(p)
	}
	var out [Blake2b512Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// ParseHex converts a hex string, with or without 0x prefix, to a byte slice
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) > maxHexInputSize {
		return nil, ErrHexTooLong
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding hex string %q: %w", s, err)
	}
	return b, nil
}

// ParseHash decodes a 32-byte hash from hex
func ParseHash(s string) (Hash, error) {
	b, err := ParseHex(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
