package registry

import (
	"fmt"
	"sort"
	"sync"
)

// MemRegistry is an in-memory TokenRegistry for testing and embedding.
type MemRegistry struct {
	mu     sync.RWMutex
	info   Info
	owners map[string]string // token id -> owner
	uris   map[string]string
}

// Compile-time interface check.
var _ TokenRegistry = (*MemRegistry)(nil)

// NewMemRegistry creates an empty in-memory registry.
func NewMemRegistry(info Info) *MemRegistry {
	return &MemRegistry{
		info:   info,
		owners: make(map[string]string),
		uris:   make(map[string]string),
	}
}

// Mint creates a token owned by owner.
func (r *MemRegistry) Mint(tokenID, owner, tokenURI string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[tokenID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, tokenID)
	}
	r.owners[tokenID] = owner
	r.uris[tokenID] = tokenURI
	return nil
}

// Transfer moves a token to a new owner.
func (r *MemRegistry) Transfer(tokenID, newOwner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[tokenID]; !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}
	r.owners[tokenID] = newOwner
	return nil
}

// Burn destroys a token.
func (r *MemRegistry) Burn(tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[tokenID]; !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}
	delete(r.owners, tokenID)
	delete(r.uris, tokenID)
	return nil
}

// OwnerOf returns the current owner of a token.
func (r *MemRegistry) OwnerOf(tokenID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[tokenID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}
	return owner, nil
}

// OwnedBy returns up to limit token ids owned by owner in ascending order.
func (r *MemRegistry) OwnedBy(owner, startAfter string, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, o := range r.owners {
		if o == owner && (startAfter == "" || id > startAfter) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Info returns collection metadata.
func (r *MemRegistry) Info() (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info, nil
}
