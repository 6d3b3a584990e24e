// Package ss58 encodes account ids as SS58 address strings.
package ss58

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
)

const (
	// MaxPrefix is the largest network prefix that fits the two byte form.
	MaxPrefix uint16 = 1<<14 - 1

	checksumSize     = 2
	simplePrefixMax  = 63
	reservedTopBit   = 0x80
	twoBytePrefixTag = 0x40
)

var (
	ErrInvalidEncoding = errors.New("invalid base58 encoding")
	ErrInvalidLength   = errors.New("invalid address length")
	ErrInvalidPrefix   = errors.New("invalid network prefix")
	ErrBadChecksum     = errors.New("bad checksum")

	checksumPrefix = []byte("SS58PRE")
)

// Encode returns the SS58 address of id on the network with the given prefix.
func Encode(prefix uint16, id extrinsic.AccountID) (string, error) {
	p, err := encodePrefix(prefix)
	if err != nil {
		return "", err
	}
	payload := append(p, id[:]...)
	sum := checksum(payload)
	return base58.Encode(append(payload, sum[:]...)), nil
}

// Decode parses an SS58 address into its network prefix and account id.
func Decode(address string) (uint16, extrinsic.AccountID, error) {
	data := base58.Decode(address)
	if len(data) == 0 {
		return 0, extrinsic.AccountID{}, ErrInvalidEncoding
	}

	prefix, prefixLen, err := decodePrefix(data)
	if err != nil {
		return 0, extrinsic.AccountID{}, err
	}
	if len(data) != prefixLen+len(extrinsic.AccountID{})+checksumSize {
		return 0, extrinsic.AccountID{}, fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(data))
	}

	payload := data[:len(data)-checksumSize]
	sum := checksum(payload)
	if !bytes.Equal(sum[:], data[len(payload):]) {
		return 0, extrinsic.AccountID{}, ErrBadChecksum
	}

	var id extrinsic.AccountID
	copy(id[:], payload[prefixLen:])
	return prefix, id, nil
}

func encodePrefix(prefix uint16) ([]byte, error) {
	switch {
	case prefix <= simplePrefixMax:
		return []byte{byte(prefix)}, nil
	case prefix <= MaxPrefix:
		first := byte((prefix&0xfc)>>2) | twoBytePrefixTag
		second := byte(prefix>>8) | byte(prefix&0x03)<<6
		return []byte{first, second}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidPrefix, prefix)
	}
}

func decodePrefix(data []byte) (uint16, int, error) {
	b0 := data[0]
	switch {
	case b0 <= simplePrefixMax:
		return uint16(b0), 1, nil
	case b0&reservedTopBit == 0:
		if len(data) < 2 {
			return 0, 0, fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(data))
		}
		b1 := data[1]
		lower := uint16(b0&0x3f)<<2 | uint16(b1>>6)
		upper := uint16(b1 & 0x3f)
		return lower | upper<<8, 2, nil
	default:
		return 0, 0, fmt.Errorf("%w: reserved first byte %#x", ErrInvalidPrefix, b0)
	}
}

func checksum(payload []byte) [checksumSize]byte {
	h := crypto.Blake2b512(checksumPrefix, payload)
	var sum [checksumSize]byte
	copy(sum[:], h[:checksumSize])
	return sum
}
