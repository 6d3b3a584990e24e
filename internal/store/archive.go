package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jinzhu/copier"

	"github.com/eigerco/extrinsic/internal/crypto"
	"github.com/eigerco/extrinsic/internal/extrinsic"
	"github.com/eigerco/extrinsic/pkg/db"
	"github.com/eigerco/extrinsic/pkg/db/pebble"
	"github.com/eigerco/extrinsic/pkg/log"
	"github.com/eigerco/extrinsic/pkg/serialization"
	"github.com/eigerco/extrinsic/pkg/serialization/codec"
)

var (
	ErrExtrinsicNotFound = errors.New("extrinsic not found")
	ErrArchiveClosed     = errors.New("archive is closed")
	ErrLabelTaken        = errors.New("label already in use")
)

// Metadata is what the caller knows about an extrinsic when archiving it.
type Metadata struct {
	Label  string
	Kind   string
	Signed bool
}

// Record is the index entry kept next to every archived extrinsic.
type Record struct {
	_        struct{} `cbor:",toarray"`
	Hash     crypto.Hash
	Label    string
	Kind     string
	Signed   bool
	Size     int
	StoredAt int64
}

// Archive stores encoded extrinsics by hash together with an index record
// and an optional unique label.
type Archive struct {
	db     db.KVStore
	cbor   *serialization.Serializer
	now    func() time.Time
	closed atomic.Bool
	// mu serialises writers so the label check and the label write are atomic.
	mu sync.Mutex
}

// NewArchive creates an archive on top of a key-value store.
func NewArchive(kv db.KVStore) (*Archive, error) {
	c, err := codec.NewCBORCodec()
	if err != nil {
		return nil, err
	}
	return &Archive{db: kv, cbor: serialization.NewSerializer(c), now: time.Now}, nil
}

// Put stores encoded under its hash. Storing the same bytes twice keeps the
// first record.
func (a *Archive) Put(encoded []byte, meta Metadata) (Record, error) {
	if a.closed.Load() {
		return Record{}, ErrArchiveClosed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	hash := extrinsic.Hash(encoded)
	if existing, err := a.record(hash); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrExtrinsicNotFound) {
		return Record{}, err
	}

	if meta.Label != "" {
		taken, err := a.db.Has(makeKey(prefixLabel, []byte(meta.Label)))
		if err != nil {
			return Record{}, fmt.Errorf("check label: %w", err)
		}
		if taken {
			return Record{}, fmt.Errorf("%w: %q", ErrLabelTaken, meta.Label)
		}
	}

	var rec Record
	if err := copier.Copy(&rec, &meta); err != nil {
		return Record{}, fmt.Errorf("copy metadata: %w", err)
	}
	rec.Hash = hash
	rec.Size = len(encoded)
	rec.StoredAt = a.now().Unix()

	recBytes, err := a.cbor.Encode(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}

	batch := a.db.NewBatch()
	defer func() {
		if err := batch.Close(); err != nil {
			log.Store.Warn().Err(err).Msg("closing batch")
		}
	}()

	if err := batch.Put(makeKey(prefixExtrinsic, hash[:]), encoded); err != nil {
		return Record{}, fmt.Errorf("store extrinsic: %w", err)
	}
	if err := batch.Put(makeKey(prefixRecord, hash[:]), recBytes); err != nil {
		return Record{}, fmt.Errorf("store record: %w", err)
	}
	if meta.Label != "" {
		if err := batch.Put(makeKey(prefixLabel, []byte(meta.Label)), hash[:]); err != nil {
			return Record{}, fmt.Errorf("store label: %w", err)
		}
	}
	if err := batch.Commit(); err != nil {
		return Record{}, fmt.Errorf(ErrFailedBatchCommit, err)
	}

	log.Store.Debug().Stringer("hash", hash).Str("label", meta.Label).Int("size", rec.Size).Msg("archived extrinsic")
	return rec, nil
}

// Get returns the encoded extrinsic and its record.
func (a *Archive) Get(hash crypto.Hash) ([]byte, Record, error) {
	if a.closed.Load() {
		return nil, Record{}, ErrArchiveClosed
	}

	rec, err := a.record(hash)
	if err != nil {
		return nil, Record{}, err
	}
	encoded, err := a.db.Get(makeKey(prefixExtrinsic, hash[:]))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, Record{}, ErrExtrinsicNotFound
		}
		return nil, Record{}, fmt.Errorf("get extrinsic: %w", err)
	}
	return encoded, rec, nil
}

// GetByLabel resolves a label and returns the extrinsic it names.
func (a *Archive) GetByLabel(label string) ([]byte, Record, error) {
	if a.closed.Load() {
		return nil, Record{}, ErrArchiveClosed
	}

	h, err := a.db.Get(makeKey(prefixLabel, []byte(label)))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, Record{}, fmt.Errorf("%w: label %q", ErrExtrinsicNotFound, label)
		}
		return nil, Record{}, fmt.Errorf("get label: %w", err)
	}
	var hash crypto.Hash
	copy(hash[:], h)
	return a.Get(hash)
}

// List returns every record in hash order. Unreadable records are logged and skipped.
func (a *Archive) List() ([]Record, error) {
	if a.closed.Load() {
		return nil, ErrArchiveClosed
	}

	prefix := []byte{prefixRecord}
	iter, err := a.db.NewIterator(prefix, db.PrefixEnd(prefix))
	if err != nil {
		return nil, fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close()

	var records []Record
	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			log.Store.Warn().Err(err).Hex("key", iter.Key()).Msg("read record value from iterator")
			continue
		}
		var rec Record
		if err := a.cbor.Decode(value, &rec); err != nil {
			log.Store.Warn().Err(err).Hex("key", iter.Key()).Msg("decode record")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes an extrinsic, its record and its label.
func (a *Archive) Delete(hash crypto.Hash) error {
	if a.closed.Load() {
		return ErrArchiveClosed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := a.record(hash)
	if err != nil {
		return err
	}

	batch := a.db.NewBatch()
	defer batch.Close()

	if err := batch.Delete(makeKey(prefixExtrinsic, hash[:])); err != nil {
		return err
	}
	if err := batch.Delete(makeKey(prefixRecord, hash[:])); err != nil {
		return err
	}
	if rec.Label != "" {
		if err := batch.Delete(makeKey(prefixLabel, []byte(rec.Label))); err != nil {
			return err
		}
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return nil
}

// Close closes the archive and the underlying store.
func (a *Archive) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	return a.db.Close()
}

func (a *Archive) record(hash crypto.Hash) (Record, error) {
	b, err := a.db.Get(makeKey(prefixRecord, hash[:]))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Record{}, fmt.Errorf("%w: %s", ErrExtrinsicNotFound, hash)
		}
		return Record{}, fmt.Errorf("get record: %w", err)
	}
	var rec Record
	if err := a.cbor.Decode(b, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
