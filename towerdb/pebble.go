package towerdb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
)

const (
	towerPrefix     = "t|"
	towerKeySize    = 2 + 2 + 2 + 4 + 8 // prefix, mcc, mnc, area, cid
	valueVersion    = 1
	valueHeaderSize = 1 + 8 + 8 + 4 + 4 + 1
)

const (
	defaultPebbleCacheBytes = int64(32 << 20)
	defaultBloomBitsPerKey  = 10
)

var errInvalidValue = errors.New("towerdb: invalid tower encoding")

// PebbleOptions tunes the Pebble backend. Zero values take defaults.
type PebbleOptions struct {
	CacheSizeBytes        int64
	BloomFilterBitsPerKey int
	ReadOnly              bool
}

// PebbleStore is the Pebble tower backend. Keys are fixed-width big-endian so
// one operator's towers sort together.
type PebbleStore struct {
	db    *pebble.DB
	cache *pebble.Cache

	mu     sync.RWMutex
	closed bool
}

// OpenPebble opens or creates the tower directory at path.
func OpenPebble(path string, opts PebbleOptions) (*PebbleStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("towerdb: pebble path is empty")
	}
	if opts.CacheSizeBytes <= 0 {
		opts.CacheSizeBytes = defaultPebbleCacheBytes
	}
	if opts.BloomFilterBitsPerKey <= 0 {
		opts.BloomFilterBitsPerKey = defaultBloomBitsPerKey
	}
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("towerdb: %s exists and is not a directory", path)
		}
	} else if os.IsNotExist(err) {
		if opts.ReadOnly {
			return nil, fmt.Errorf("%w: %s", ErrNoDatabase, path)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("towerdb: ensure directory: %w", err)
		}
	} else {
		return nil, fmt.Errorf("towerdb: stat path: %w", err)
	}

	cache := pebble.NewCache(opts.CacheSizeBytes)
	level := pebble.LevelOptions{
		FilterPolicy: bloom.FilterPolicy(opts.BloomFilterBitsPerKey),
		FilterType:   pebble.TableFilter,
	}
	pebbleOpts := &pebble.Options{
		Cache:    cache,
		ReadOnly: opts.ReadOnly,
		Levels:   make([]pebble.LevelOptions, 7),
	}
	for i := range pebbleOpts.Levels {
		pebbleOpts.Levels[i] = level
	}
	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		cache.Unref()
		return nil, fmt.Errorf("towerdb: open: %w", err)
	}
	return &PebbleStore{db: db, cache: cache}, nil
}

// Lookup returns the tower for key.
func (s *PebbleStore) Lookup(ctx context.Context, key Key) (Tower, bool, error) {
	if err := ctx.Err(); err != nil {
		return Tower{}, false, err
	}
	if !key.valid() {
		return Tower{}, false, errInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Tower{}, false, errStoreClosed
	}
	value, closer, err := s.db.Get(encodeKey(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Tower{}, false, nil
		}
		return Tower{}, false, fmt.Errorf("towerdb: get %s: %w", key, err)
	}
	defer closer.Close()
	t, err := decodeValue(value)
	if err != nil {
		return Tower{}, false, fmt.Errorf("towerdb: decode %s: %w", key, err)
	}
	t.Key = key
	return t, true, nil
}

// PutBatch writes towers in one synced batch.
func (s *PebbleStore) PutBatch(ctx context.Context, towers []Tower) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errStoreClosed
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, t := range towers {
		if !t.Key.valid() {
			continue
		}
		if err := batch.Set(encodeKey(t.Key), encodeValue(t), nil); err != nil {
			return fmt.Errorf("towerdb: batch set %s: %w", t.Key, err)
		}
	}
	if batch.Empty() {
		return nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("towerdb: commit: %w", err)
	}
	return nil
}

// Count iterates the tower prefix.
func (s *PebbleStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errStoreClosed
	}
	lower := []byte(towerPrefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: prefixUpperBound(lower)})
	if err != nil {
		return 0, fmt.Errorf("towerdb: count iterator: %w", err)
	}
	defer iter.Close()
	var n int64
	for iter.First(); iter.Valid(); iter.Next() {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		n++
	}
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("towerdb: count iterate: %w", err)
	}
	return n, nil
}

// Close closes the database and releases the block cache.
func (s *PebbleStore) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.db.Close()
	s.cache.Unref()
	return err
}

func encodeKey(k Key) []byte {
	buf := make([]byte, towerKeySize)
	copy(buf, towerPrefix)
	binary.BigEndian.PutUint16(buf[2:], uint16(k.MCC))
	binary.BigEndian.PutUint16(buf[4:], uint16(k.MNC))
	binary.BigEndian.PutUint32(buf[6:], uint32(k.Area))
	binary.BigEndian.PutUint64(buf[10:], uint64(k.CellID))
	return buf
}

func encodeValue(t Tower) []byte {
	radio := t.Radio
	if len(radio) > math.MaxUint8 {
		radio = radio[:math.MaxUint8]
	}
	buf := make([]byte, valueHeaderSize+len(radio))
	buf[0] = valueVersion
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(t.Lat))
	binary.BigEndian.PutUint64(buf[9:], math.Float64bits(t.Lon))
	binary.BigEndian.PutUint32(buf[17:], clampUint32(t.RangeM))
	binary.BigEndian.PutUint32(buf[21:], clampUint32(t.Samples))
	buf[25] = byte(len(radio))
	copy(buf[valueHeaderSize:], radio)
	return buf
}

func decodeValue(raw []byte) (Tower, error) {
	if len(raw) < valueHeaderSize || raw[0] != valueVersion {
		return Tower{}, errInvalidValue
	}
	radioLen := int(raw[25])
	if valueHeaderSize+radioLen > len(raw) {
		return Tower{}, errInvalidValue
	}
	return Tower{
		Lat:     math.Float64frombits(binary.BigEndian.Uint64(raw[1:])),
		Lon:     math.Float64frombits(binary.BigEndian.Uint64(raw[9:])),
		RangeM:  int(binary.BigEndian.Uint32(raw[17:])),
		Samples: int(binary.BigEndian.Uint32(raw[21:])),
		Radio:   string(raw[valueHeaderSize : valueHeaderSize+radioLen]),
	}, nil
}

func clampUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

func prefixUpperBound(prefix []byte) []byte {
	upper := append([]byte(nil), prefix...)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] != 0xFF {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}
