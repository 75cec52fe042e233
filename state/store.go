package state

import (
	"fmt"
	"sort"

	"github.com/mintforge/crowdsale-go/sale"
)

// View is a transactional view over the five persistent sale stores. Every
// engine call runs against exactly one View; when the enclosing Update
// callback fails, all mutations made through the View are discarded.
type View interface {
	// Config returns the stored sale config, or ErrConfigNotFound.
	Config() (*sale.Config, error)

	// SetConfig stores the sale config.
	SetConfig(cfg *sale.Config) error

	// SaleConducted reports whether any sale has ever been started.
	SaleConducted() (bool, error)

	// SetSaleConducted sets the sticky sale-conducted flag.
	SetSaleConducted(conducted bool) error

	// SaleState returns the singleton sale state, or ErrSaleStateNotFound
	// when no sale is in progress or unsettled.
	SaleState() (*sale.State, error)

	// SetSaleState stores the singleton sale state.
	SetSaleState(st *sale.State) error

	// DeleteSaleState removes the sale state record. Deleting an absent
	// record is not an error.
	DeleteSaleState() error

	// AddAvailableToken adds a token id to the available set. Returns
	// ErrDuplicateToken when already present.
	AddAvailableToken(id string) error

	// RemoveAvailableToken removes a token id from the available set.
	// Returns ErrTokenNotFound when absent.
	RemoveAvailableToken(id string) error

	// HasAvailableToken reports whether the token id is in the available
	// set.
	HasAvailableToken(id string) (bool, error)

	// AvailableTokens returns up to limit token ids in ascending order,
	// starting after startAfter (exclusive; empty means from the start).
	AvailableTokens(startAfter string, limit int) ([]string, error)

	// TokenCount returns the available-token counter.
	TokenCount() (uint64, error)

	// SetTokenCount sets the available-token counter.
	SetTokenCount(n uint64) error

	// Purchases returns the purchaser's pending purchases in insertion
	// order, or nil when the purchaser has no row.
	Purchases(purchaser string) ([]sale.Purchase, error)

	// SetPurchases stores the purchaser's row. An empty slice deletes the
	// row; no row is ever stored empty.
	SetPurchases(purchaser string, purchases []sale.Purchase) error

	// DeletePurchases removes the purchaser's row. Deleting an absent row
	// is not an error.
	DeletePurchases(purchaser string) error

	// Purchasers returns up to limit purchaser keys in ascending order.
	Purchasers(limit int) ([]string, error)

	// FlattenedPurchases returns up to limit purchases in ascending
	// (purchaser, insertion) order.
	FlattenedPurchases(limit int) ([]sale.Purchase, error)
}

// Store is the persistent repository behind the sale engine. Update runs fn
// in a writable transaction whose mutations are committed only when fn
// returns nil; View runs fn read-only.
type Store interface {
	Update(fn func(View) error) error
	View(fn func(View) error) error
	Close() error
}

// ---------------------------------------------------------------------------
// MemStore is an in-memory implementation of Store for testing.
// ---------------------------------------------------------------------------

// MemStore keeps all five stores in maps. Update takes a snapshot first and
// restores it when the callback fails, mirroring the transactional contract
// of the bolt implementation.
type MemStore struct {
	config        *sale.Config
	saleState     *sale.State
	saleConducted bool
	tokenCount    uint64
	available     map[string]bool
	purchases     map[string][]sale.Purchase
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		available: make(map[string]bool),
		purchases: make(map[string][]sale.Purchase),
	}
}

// Compile-time interface checks.
var (
	_ Store = (*MemStore)(nil)
	_ View  = (*memView)(nil)
)

func (s *MemStore) snapshot() *MemStore {
	snap := &MemStore{
		saleConducted: s.saleConducted,
		tokenCount:    s.tokenCount,
		available:     make(map[string]bool, len(s.available)),
		purchases:     make(map[string][]sale.Purchase, len(s.purchases)),
	}
	if s.config != nil {
		cfg := *s.config
		snap.config = &cfg
	}
	if s.saleState != nil {
		st := *s.saleState
		snap.saleState = &st
	}
	for id := range s.available {
		snap.available[id] = true
	}
	for purchaser, row := range s.purchases {
		snap.purchases[purchaser] = append([]sale.Purchase(nil), row...)
	}
	return snap
}

func (s *MemStore) restore(snap *MemStore) {
	s.config = snap.config
	s.saleState = snap.saleState
	s.saleConducted = snap.saleConducted
	s.tokenCount = snap.tokenCount
	s.available = snap.available
	s.purchases = snap.purchases
}

// Update runs fn against a writable view, rolling back on error.
func (s *MemStore) Update(fn func(View) error) error {
	snap := s.snapshot()
	if err := fn(&memView{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// View runs fn against a read-only view. Mutations made by fn are rolled
// back unconditionally.
func (s *MemStore) View(fn func(View) error) error {
	snap := s.snapshot()
	err := fn(&memView{store: s})
	s.restore(snap)
	return err
}

// Close releases nothing; it exists to satisfy Store.
func (s *MemStore) Close() error { return nil }

type memView struct {
	store *MemStore
}

func (v *memView) Config() (*sale.Config, error) {
	if v.store.config == nil {
		return nil, ErrConfigNotFound
	}
	cfg := *v.store.config
	return &cfg, nil
}

func (v *memView) SetConfig(cfg *sale.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config", ErrNilParam)
	}
	c := *cfg
	v.store.config = &c
	return nil
}

func (v *memView) SaleConducted() (bool, error) {
	return v.store.saleConducted, nil
}

func (v *memView) SetSaleConducted(conducted bool) error {
	v.store.saleConducted = conducted
	return nil
}

func (v *memView) SaleState() (*sale.State, error) {
	if v.store.saleState == nil {
		return nil, ErrSaleStateNotFound
	}
	st := *v.store.saleState
	return &st, nil
}

func (v *memView) SetSaleState(st *sale.State) error {
	if st == nil {
		return fmt.Errorf("%w: sale state", ErrNilParam)
	}
	c := *st
	v.store.saleState = &c
	return nil
}

func (v *memView) DeleteSaleState() error {
	v.store.saleState = nil
	return nil
}

func (v *memView) AddAvailableToken(id string) error {
	if id == "" {
		return ErrEmptyKey
	}
	if v.store.available[id] {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, id)
	}
	v.store.available[id] = true
	return nil
}

func (v *memView) RemoveAvailableToken(id string) error {
	if !v.store.available[id] {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	delete(v.store.available, id)
	return nil
}

func (v *memView) HasAvailableToken(id string) (bool, error) {
	return v.store.available[id], nil
}

func (v *memView) AvailableTokens(startAfter string, limit int) ([]string, error) {
	ids := make([]string, 0, len(v.store.available))
	for id := range v.store.available {
		if startAfter == "" || id > startAfter {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (v *memView) TokenCount() (uint64, error) {
	return v.store.tokenCount, nil
}

func (v *memView) SetTokenCount(n uint64) error {
	v.store.tokenCount = n
	return nil
}

func (v *memView) Purchases(purchaser string) ([]sale.Purchase, error) {
	row, ok := v.store.purchases[purchaser]
	if !ok {
		return nil, nil
	}
	return append([]sale.Purchase(nil), row...), nil
}

func (v *memView) SetPurchases(purchaser string, purchases []sale.Purchase) error {
	if purchaser == "" {
		return ErrEmptyKey
	}
	if len(purchases) == 0 {
		delete(v.store.purchases, purchaser)
		return nil
	}
	v.store.purchases[purchaser] = append([]sale.Purchase(nil), purchases...)
	return nil
}

func (v *memView) DeletePurchases(purchaser string) error {
	delete(v.store.purchases, purchaser)
	return nil
}

func (v *memView) Purchasers(limit int) ([]string, error) {
	keys := make([]string, 0, len(v.store.purchases))
	for purchaser := range v.store.purchases {
		keys = append(keys, purchaser)
	}
	sort.Strings(keys)
	if limit >= 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func (v *memView) FlattenedPurchases(limit int) ([]sale.Purchase, error) {
	keys, err := v.Purchasers(-1)
	if err != nil {
		return nil, err
	}
	var out []sale.Purchase
	for _, purchaser := range keys {
		for _, p := range v.store.purchases[purchaser] {
			out = append(out, p)
			if limit >= 0 && len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}
