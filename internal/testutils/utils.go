package testutils

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
)

func RandomHash(t *testing.T) crypto.Hash {
	return crypto.Hash(RandomBytes(t, crypto.HashSize))
}

func RandomAccountID(t *testing.T) extrinsic.AccountID {
	return extrinsic.AccountID(RandomBytes(t, len(extrinsic.AccountID{})))
}

func RandomBytes(t *testing.T, n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}
