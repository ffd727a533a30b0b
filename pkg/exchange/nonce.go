package exchange

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/uhyunpark/hyperarb/pkg/util"
)

// DefaultExpiryWindow is how long a signed action stays valid.
const DefaultExpiryWindow = 10 * time.Second

// NonceStore persists the nonce high-water mark across restarts.
type NonceStore interface {
	LastNonce() (uint64, error)
	SaveNonce(n uint64) error
}

// NonceManager hands out strictly increasing millisecond nonces.
type NonceManager struct {
	clock  util.Clock
	store  NonceStore // optional
	window time.Duration
	prev   atomic.Uint64
}

// NewNonceManager seeds the manager from store when one is given.
func NewNonceManager(clock util.Clock, store NonceStore, window time.Duration) (*NonceManager, error) {
	m := &NonceManager{clock: clock, store: store, window: window}
	if store != nil {
		last, err := store.LastNonce()
		if err != nil {
			return nil, fmt.Errorf("load nonce: %w", err)
		}
		m.prev.Store(last)
	}
	return m, nil
}

// Next returns a nonce above every nonce handed out before, tracking the
// clock in milliseconds.
func (m *NonceManager) Next() (uint64, error) {
	var curr uint64
	for {
		prev := m.prev.Load()
		curr = uint64(m.clock.Now().UnixMilli())
		if curr <= prev {
			curr = prev + 1
		}
		if m.prev.CompareAndSwap(prev, curr) {
			break
		}
	}

	if m.store != nil {
		if err := m.store.SaveNonce(curr); err != nil {
			return 0, fmt.Errorf("persist nonce: %w", err)
		}
	}
	return curr, nil
}

// Expiry returns the expiresAfter value for a nonce.
func (m *NonceManager) Expiry(nonce uint64) uint64 {
	return nonce + uint64(m.window.Milliseconds())
}

// Last returns the most recently issued nonce.
func (m *NonceManager) Last() uint64 {
	return m.prev.Load()
}
