package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/ethereum/go-ethereum/common"
)

// PebbleStore keeps the nonce high-water mark of one wallet.
type PebbleStore struct {
	db     *pebble.DB
	wallet common.Address
	mu     sync.Mutex
}

func NewPebbleStore(path string, wallet common.Address) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db, wallet: wallet}, nil
}

// NewMemStore opens a store backed by an in-memory filesystem.
func NewMemStore(wallet common.Address) (*PebbleStore, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db, wallet: wallet}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// LastNonce returns the highest saved nonce, or 0 when none was saved.
func (s *PebbleStore) LastNonce() (uint64, error) {
	val, closer, err := s.db.Get(nonceKey(s.wallet))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce: %w", err)
	}
	defer closer.Close()
	return decodeUint64(val)
}

// SaveNonce records n unless a higher nonce is already stored. Concurrent
// signers may finish out of order; the mark never moves backwards.
func (s *PebbleStore) SaveNonce(n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.LastNonce()
	if err != nil {
		return err
	}
	if n <= last {
		return nil
	}
	if err := s.db.Set(nonceKey(s.wallet), encodeUint64(n), pebble.Sync); err != nil {
		return fmt.Errorf("failed to save nonce: %w", err)
	}
	return nil
}
