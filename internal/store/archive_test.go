package store

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/internal/testutils"
	"github.com/eigerco/extrinsic/pkg/db/pebble"
)

func newTestArchive(t *testing.T) *Archive {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	a, err := NewArchive(kv)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() {
		assert.NoError(t, a.Close())
	})
	return a
}

func TestArchivePutGet(t *testing.T) {
	a := newTestArchive(t)
	encoded := []byte{0x00, 0x00, 0x08, 'g', 'm'}

	rec, err := a.Put(encoded, Metadata{Label: "gm", Kind: "remark"})
	require.NoError(t, err)
	assert.Equal(t, extrinsic.Hash(encoded), rec.Hash)
	assert.Equal(t, "gm", rec.Label)
	assert.Equal(t, "remark", rec.Kind)
	assert.False(t, rec.Signed)
	assert.Equal(t, len(encoded), rec.Size)
	assert.Equal(t, int64(1700000000), rec.StoredAt)

	got, gotRec, err := a.Get(rec.Hash)
	require.NoError(t, err)
	assert.Equal(t, encoded, got)
	assert.Equal(t, rec, gotRec)

	got, gotRec, err = a.GetByLabel("gm")
	require.NoError(t, err)
	assert.Equal(t, encoded, got)
	assert.Equal(t, rec, gotRec)
}

func TestArchivePutIsIdempotent(t *testing.T) {
	a := newTestArchive(t)
	encoded := []byte{0x01, 0x02}

	first, err := a.Put(encoded, Metadata{Label: "one"})
	require.NoError(t, err)
	second, err := a.Put(encoded, Metadata{Label: "two"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, _, err = a.GetByLabel("two")
	assert.ErrorIs(t, err, ErrExtrinsicNotFound)
}

func TestArchiveLabelTaken(t *testing.T) {
	a := newTestArchive(t)
	_, err := a.Put([]byte{0x01}, Metadata{Label: "dup"})
	require.NoError(t, err)

	_, err = a.Put([]byte{0x02}, Metadata{Label: "dup"})
	assert.ErrorIs(t, err, ErrLabelTaken)
}

func TestArchiveConcurrentPutSameLabel(t *testing.T) {
	a := newTestArchive(t)

	const writers = 16
	var stored, taken atomic.Int32
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			_, err := a.Put([]byte{0xaa, byte(i)}, Metadata{Label: "shared"})
			switch {
			case err == nil:
				stored.Add(1)
			case errors.Is(err, ErrLabelTaken):
				taken.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), stored.Load())
	assert.Equal(t, int32(writers-1), taken.Load())

	records, err := a.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestArchiveListAndDelete(t *testing.T) {
	a := newTestArchive(t)

	var hashes []crypto.Hash
	for i, body := range [][]byte{{0x01}, {0x02}, {0x03}} {
		rec, err := a.Put(body, Metadata{Label: string(rune('a' + i)), Signed: i%2 == 0})
		require.NoError(t, err)
		hashes = append(hashes, rec.Hash)
	}

	records, err := a.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.Less(t, string(records[i-1].Hash[:]), string(records[i].Hash[:]), "records come back in hash order")
	}

	require.NoError(t, a.Delete(hashes[0]))
	_, _, err = a.Get(hashes[0])
	assert.ErrorIs(t, err, ErrExtrinsicNotFound)
	_, _, err = a.GetByLabel("a")
	assert.ErrorIs(t, err, ErrExtrinsicNotFound)

	records, err = a.List()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	assert.ErrorIs(t, a.Delete(hashes[0]), ErrExtrinsicNotFound)
}

func TestArchiveManyExtrinsics(t *testing.T) {
	a := newTestArchive(t)

	stored := make(map[crypto.Hash][]byte)
	for i := 0; i < 100; i++ {
		encoded := testutils.RandomBytes(t, 1+i)
		rec, err := a.Put(encoded, Metadata{Kind: "remark"})
		require.NoError(t, err)
		stored[rec.Hash] = encoded
	}

	records, err := a.List()
	require.NoError(t, err)
	require.Len(t, records, len(stored))
	for _, rec := range records {
		got, _, err := a.Get(rec.Hash)
		require.NoError(t, err)
		assert.Equal(t, stored[rec.Hash], got)
	}

	_, _, err = a.Get(testutils.RandomHash(t))
	assert.ErrorIs(t, err, ErrExtrinsicNotFound)
}

func TestArchiveClosed(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.Close())

	_, err := a.Put([]byte{0x01}, Metadata{})
	assert.ErrorIs(t, err, ErrArchiveClosed)
	_, _, err = a.Get(crypto.Hash{})
	assert.ErrorIs(t, err, ErrArchiveClosed)
	_, _, err = a.GetByLabel("x")
	assert.ErrorIs(t, err, ErrArchiveClosed)
	_, err = a.List()
	assert.ErrorIs(t, err, ErrArchiveClosed)
	assert.ErrorIs(t, a.Delete(crypto.Hash{}), ErrArchiveClosed)
}

func TestPrefixToString(t *testing.T) {
	assert.Equal(t, "extrinsic", PrefixToString(prefixExtrinsic))
	assert.Equal(t, "record", PrefixToString(prefixRecord))
	assert.Equal(t, "label", PrefixToString(prefixLabel))
	assert.Equal(t, "unknown", PrefixToString(0xff))
}
