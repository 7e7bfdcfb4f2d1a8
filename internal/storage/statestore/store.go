// Package statestore persists engine state in PebbleDB. Pools and deals are
// stored as CBOR-encoded snapshots under prefixed keys, written synchronously
// so a restart resumes from the last committed operation.
package statestore

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/ugorji/go/codec"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/kerlouan/goswapd/internal/core/escrow"
)

const (
	poolPrefix = "pool/"
	dealPrefix = "deal/"
)

// Store is a pebble-backed snapshot store. All writes go through the WAL;
// values are CBOR.
type Store struct {
	db   *pebble.DB
	path string
	open int64
}

var cborHandle codec.Handle = &codec.CborHandle{}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", path, err)
	}

	opts := &pebble.Options{
		Levels: make([]pebble.LevelOptions, 7),
	}
	// Point lookups dominate; bloom filters keep misses cheap.
	for i := range opts.Levels {
		opts.Levels[i] = pebble.LevelOptions{
			FilterPolicy: bloom.FilterPolicy(10),
			FilterType:   pebble.TableFilter,
		}
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	atomic.StoreInt64(&s.open, 1)
	return s, nil
}

// Close flushes and closes the underlying database. Safe to call twice.
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt64(&s.open, 1, 0) {
		return nil
	}
	if err := s.db.Flush(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}

// IsOpen reports whether the store accepts operations.
func (s *Store) IsOpen() bool {
	return atomic.LoadInt64(&s.open) != 0
}

// SavePool writes a pool snapshot, overwriting any previous snapshot of the
// same pair.
func (s *Store) SavePool(snap amm.PoolSnapshot) error {
	return s.put(poolKey(snap.Token0, snap.Token1), &snap)
}

// LoadPools returns every stored pool snapshot in key order.
func (s *Store) LoadPools() ([]amm.PoolSnapshot, error) {
	var pools []amm.PoolSnapshot
	err := s.scan(poolPrefix, func(value []byte) error {
		var snap amm.PoolSnapshot
		if err := decode(value, &snap); err != nil {
			return err
		}
		pools = append(pools, snap)
		return nil
	})
	return pools, err
}

// SaveDeal writes a deal snapshot keyed by its id.
func (s *Store) SaveDeal(snap escrow.DealSnapshot) error {
	return s.put(dealKey(snap.DealID), &snap)
}

// LoadDeals returns every stored deal snapshot in id order.
func (s *Store) LoadDeals() ([]escrow.DealSnapshot, error) {
	var deals []escrow.DealSnapshot
	err := s.scan(dealPrefix, func(value []byte) error {
		var snap escrow.DealSnapshot
		if err := decode(value, &snap); err != nil {
			return err
		}
		deals = append(deals, snap)
		return nil
	})
	return deals, err
}

// Flush forces pending writes to stable storage.
func (s *Store) Flush() error {
	if !s.IsOpen() {
		return fmt.Errorf("store is closed")
	}
	return s.db.Flush()
}

func (s *Store) put(key string, value interface{}) error {
	if !s.IsOpen() {
		return fmt.Errorf("store is closed")
	}
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, cborHandle).Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.db.Set([]byte(key), buf, pebble.Sync); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) scan(prefix string, fn func(value []byte) error) error {
	if !s.IsOpen() {
		return fmt.Errorf("store is closed")
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: append([]byte(prefix), 0xff),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
	}
	return iter.Error()
}

func decode(value []byte, out interface{}) error {
	return codec.NewDecoderBytes(value, cborHandle).Decode(out)
}

func poolKey(token0, token1 string) string {
	return poolPrefix + token0 + "/" + token1
}

func dealKey(id uint64) string {
	return fmt.Sprintf("%s%016x", dealPrefix, id)
}
