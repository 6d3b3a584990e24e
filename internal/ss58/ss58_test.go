package ss58

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/internal/testutils"
)

func alice(t *testing.T) extrinsic.AccountID {
	b, err := hex.DecodeString("d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	require.NoError(t, err)
	var id extrinsic.AccountID
	copy(id[:], b)
	return id
}

func TestEncodeKnownAddresses(t *testing.T) {
	testCases := []struct {
		prefix   uint16
		expected string
	}{
		{42, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"},
		{0, "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5"},
	}

	for _, tc := range testCases {
		address, err := Encode(tc.prefix, alice(t))
		require.NoError(t, err)
		assert.Equal(t, tc.expected, address)

		prefix, id, err := Decode(address)
		require.NoError(t, err)
		assert.Equal(t, tc.prefix, prefix)
		assert.Equal(t, alice(t), id)
	}
}

func TestRoundTripFullPrefixes(t *testing.T) {
	for _, prefix := range []uint16{63, 64, 255, 256, 1284, 7391, MaxPrefix} {
		address, err := Encode(prefix, alice(t))
		require.NoError(t, err)

		decoded, id, err := Decode(address)
		require.NoError(t, err, "prefix %d", prefix)
		assert.Equal(t, prefix, decoded)
		assert.Equal(t, alice(t), id)
	}
}

func TestRoundTripRandomAccounts(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := testutils.RandomAccountID(t)
		prefix := uint16(i * 300)

		address, err := Encode(prefix, id)
		require.NoError(t, err)
		decodedPrefix, decoded, err := Decode(address)
		require.NoError(t, err, "prefix %d", prefix)
		assert.Equal(t, prefix, decodedPrefix)
		assert.Equal(t, id, decoded)
	}
}

func TestEncodeRejectsLargePrefix(t *testing.T) {
	_, err := Encode(MaxPrefix+1, alice(t))
	assert.ErrorIs(t, err, ErrInvalidPrefix)
}

func TestDecodeErrors(t *testing.T) {
	valid, err := Encode(42, alice(t))
	require.NoError(t, err)

	// flip the last character to break the checksum
	last := valid[len(valid)-1]
	replacement := byte('Z')
	if last == replacement {
		replacement = 'Y'
	}
	corrupted := valid[:len(valid)-1] + string(replacement)

	testCases := []struct {
		name     string
		input    string
		expected error
	}{
		{"empty", "", ErrInvalidEncoding},
		{"not base58", "0OIl", ErrInvalidEncoding},
		{"too short", base58.Encode([]byte{42, 1, 2, 3}), ErrInvalidLength},
		{"reserved prefix", base58.Encode(append([]byte{0x80, 0x00}, make([]byte, 34)...)), ErrInvalidPrefix},
		{"bad checksum", corrupted, ErrBadChecksum},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.input)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}
