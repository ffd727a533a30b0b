package exchange

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/uhyunpark/hyperarb/pkg/util"
)

type memNonceStore struct {
	mu    sync.Mutex
	last  uint64
	saves int
	err   error
}

func (s *memNonceStore) LastNonce() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.err
}

func (s *memNonceStore) SaveNonce(n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	if n > s.last {
		s.last = n
	}
	return nil
}

var testStart = time.UnixMilli(int64(testNonce))

func TestNonceTracksClock(t *testing.T) {
	clock := util.NewManualClock(testStart)
	m, err := NewNonceManager(clock, nil, DefaultExpiryWindow)
	if err != nil {
		t.Fatalf("NewNonceManager: %v", err)
	}

	n, _ := m.Next()
	if n != testNonce {
		t.Errorf("nonce = %d, want %d", n, testNonce)
	}
	if got := m.Expiry(n); got != testExpiry {
		t.Errorf("expiry = %d, want %d", got, testExpiry)
	}

	clock.Advance(5 * time.Second)
	n, _ = m.Next()
	if n != testNonce+5000 {
		t.Errorf("nonce = %d, want %d", n, testNonce+5000)
	}
}

func TestNonceStrictlyIncreasingOnFrozenClock(t *testing.T) {
	m, _ := NewNonceManager(util.NewManualClock(testStart), nil, DefaultExpiryWindow)

	prev, _ := m.Next()
	for i := 0; i < 100; i++ {
		n, _ := m.Next()
		if n <= prev {
			t.Fatalf("nonce %d not above %d", n, prev)
		}
		prev = n
	}
	if m.Last() != prev {
		t.Errorf("last = %d, want %d", m.Last(), prev)
	}
}

func TestNonceConcurrentUnique(t *testing.T) {
	m, _ := NewNonceManager(util.NewManualClock(testStart), nil, DefaultExpiryWindow)

	const workers, per = 8, 50
	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				n, _ := m.Next()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*per {
		t.Errorf("unique nonces = %d, want %d", len(seen), workers*per)
	}
}

func TestNonceSeededFromStore(t *testing.T) {
	// Stored mark is ahead of the clock, e.g. after a clock step backwards.
	store := &memNonceStore{last: testNonce + 60_000}
	m, err := NewNonceManager(util.NewManualClock(testStart), store, DefaultExpiryWindow)
	if err != nil {
		t.Fatalf("NewNonceManager: %v", err)
	}

	n, err := m.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if n != testNonce+60_001 {
		t.Errorf("nonce = %d, want %d", n, testNonce+60_001)
	}
	if store.last != n || store.saves != 1 {
		t.Errorf("store = %d after %d saves, want %d after 1", store.last, store.saves, n)
	}
}

func TestNonceStoreErrors(t *testing.T) {
	boom := errors.New("disk full")

	if _, err := NewNonceManager(util.RealClock{}, &memNonceStore{err: boom}, DefaultExpiryWindow); !errors.Is(err, boom) {
		t.Errorf("seed err = %v, want %v", err, boom)
	}

	store := &memNonceStore{}
	m, _ := NewNonceManager(util.RealClock{}, store, DefaultExpiryWindow)
	store.err = boom
	if _, err := m.Next(); !errors.Is(err, boom) {
		t.Errorf("next err = %v, want %v", err, boom)
	}
}
