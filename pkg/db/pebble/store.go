package pebble

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/eigerco/extrinsic/pkg/db"
)

var _ db.KVStore = (*KVStore)(nil)

// KVStore is a db.KVStore backed by pebble.
type KVStore struct {
	db     *pebble.DB
	closed bool
	mu     sync.RWMutex
}

// Open opens, or creates, a store in the directory path.
func Open(path string) (*KVStore, error) {
	return open(path, &pebble.Options{
		MemTableSize:                32 * 1024 * 1024, // 32MB
		MemTableStopWritesThreshold: 4,                // 128MB of memtables
	}, 64*1024*1024)
}

// NewKVStore returns a store that lives in memory only.
func NewKVStore() (*KVStore, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()}, 8*1024*1024)
}

func open(path string, opts *pebble.Options, cacheSize int64) (*KVStore, error) {
	cache := pebble.NewCache(cacheSize)
	defer cache.Unref()
	opts.Cache = cache

	pdb, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf(ErrOpening, err)
	}
	return &KVStore{db: pdb}, nil
}

func (p *KVStore) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	value, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *KVStore) Has(key []byte) (bool, error) {
	_, err := p.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *KVStore) Put(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	return p.db.Set(key, value, pebble.Sync)
}

func (p *KVStore) Delete(key []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	return p.db.Delete(key, pebble.Sync)
}

func (p *KVStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}
