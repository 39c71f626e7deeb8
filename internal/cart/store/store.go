// Package store holds the in-memory cart state container.
//
// A Store is safe for concurrent use. Each mutation is applied atomically and
// produces a Snapshot; subscribers receive every snapshot in version order
// once the mutation has completed. Subscribers may read the store, and a
// mutation issued from inside a callback is delivered after the current one.
package store

import (
	"fmt"
	"math"
	"sync"

	"github.com/ridloal/stationery-storefront/internal/cart/domain"
	catalog "github.com/ridloal/stationery-storefront/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type subscriber struct {
	id int
	fn func(domain.Snapshot)
}

type Store struct {
	mu      sync.Mutex
	entries []domain.Entry
	version uint64
	policy  domain.StockPolicy
	pending []domain.Snapshot

	subMu     sync.Mutex
	subs      []subscriber
	nextSubID int

	notifyMu sync.Mutex
}

func New(policy domain.StockPolicy) *Store {
	if policy == "" {
		policy = domain.StockAllow
	}
	return &Store{policy: policy}
}

// AddToCart increments the quantity of an existing entry in place or appends a new one.
func (s *Store) AddToCart(p catalog.Product, quantity int) (domain.Snapshot, error) {
	if quantity <= 0 {
		return s.Snapshot(), domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	idx := s.indexOf(p.ID)
	current := 0
	if idx >= 0 {
		current = s.entries[idx].Quantity
	}
	if quantity > math.MaxInt-current {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, fmt.Errorf("%w: %s has %d, adding %d", domain.ErrQuantityTooLarge, p.ID, current, quantity)
	}

	next, err := s.applyPolicy(p, current, current+quantity)
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	if next == current {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}

	if idx >= 0 {
		s.entries[idx].Quantity = next
	} else {
		s.entries = append(s.entries, domain.Entry{Product: p, Quantity: next})
	}
	return s.commit(), nil
}

// UpdateQuantity sets the quantity of an entry; zero or less removes it.
// Unknown product ids are ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) (domain.Snapshot, error) {
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if quantity <= 0 {
		s.removeAt(idx)
		return s.commit(), nil
	}

	entry := s.entries[idx]
	next := quantity
	if quantity > entry.Quantity {
		var err error
		next, err = s.applyPolicy(entry.Product, entry.Quantity, quantity)
		if err != nil {
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, err
		}
	}
	if next == entry.Quantity {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	s.entries[idx].Quantity = next
	return s.commit(), nil
}

// RemoveFromCart drops the entry if present; otherwise it is a no-op.
func (s *Store) RemoveFromCart(productID string) domain.Snapshot {
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.removeAt(idx)
	return s.commit()
}

func (s *Store) ClearCart() domain.Snapshot {
	s.mu.Lock()
	s.entries = nil
	return s.commit()
}

// RemoveOrdered subtracts the ordered quantities from the cart. Entries added
// or raised after the order snapshot was taken keep the difference.
func (s *Store) RemoveOrdered(ordered []domain.Entry) domain.Snapshot {
	want := make(map[string]int, len(ordered))
	for _, e := range ordered {
		want[e.Product.ID] += e.Quantity
	}

	s.mu.Lock()
	changed := false
	kept := s.entries[:0]
	for _, e := range s.entries {
		if n, ok := want[e.Product.ID]; ok && n > 0 {
			changed = true
			e.Quantity -= n
			if e.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, e)
	}
	if !changed {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.entries = kept
	return s.commit()
}

// Restore replaces the state with a persisted snapshot without notifying subscribers.
func (s *Store) Restore(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]domain.Entry, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		if e.Quantity > 0 {
			s.entries = append(s.entries, e)
		}
	}
	s.version = snap.Version
}

func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Entries() []domain.Entry {
	return s.Snapshot().Entries
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TotalItems(s.entries)
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TotalPrice(s.entries)
}

// Subscribe registers fn for every future snapshot. The returned function unregisters it.
func (s *Store) Subscribe(fn func(domain.Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) applyPolicy(p catalog.Product, current, requested int) (int, error) {
	switch s.policy {
	case domain.StockClamp:
		if p.Stock <= 0 {
			return current, fmt.Errorf("%w: %s", domain.ErrOutOfStock, p.ID)
		}
		if requested > p.Stock {
			return p.Stock, nil
		}
	case domain.StockReject:
		if p.Stock <= 0 {
			return current, fmt.Errorf("%w: %s", domain.ErrOutOfStock, p.ID)
		}
		if requested > p.Stock {
			return current, fmt.Errorf("%w: %s wants %d, %d available", domain.ErrInsufficientStock, p.ID, requested, p.Stock)
		}
	}
	return requested, nil
}

func (s *Store) indexOf(productID string) int {
	for i, e := range s.entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(idx int) {
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
}

func (s *Store) snapshotLocked() domain.Snapshot {
	return domain.NewSnapshot(s.version, s.entries)
}

// commit must be called with mu held; it releases mu and delivers the snapshot.
func (s *Store) commit() domain.Snapshot {
	s.version++
	snap := s.snapshotLocked()
	s.pending = append(s.pending, snap)
	s.mu.Unlock()

	s.drain()
	return snap
}

// drain delivers queued snapshots in order. Only one goroutine drains at a
// time; a goroutine that loses the race leaves its snapshot to the drainer.
func (s *Store) drain() {
	if !s.notifyMu.TryLock() {
		return
	}
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.notifyMu.Unlock()
			s.mu.Unlock()
			return
		}
		snap := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.subMu.Lock()
		subs := make([]subscriber, len(s.subs))
		copy(subs, s.subs)
		s.subMu.Unlock()

		for _, sub := range subs {
			sub.fn(snap)
		}
	}
}
