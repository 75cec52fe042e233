// Package registry defines the boundary to the external asset registry that
// actually holds the non-fungible items offered for sale. The sale engine
// only queries it; mutations are emitted as instructions for the host to
// dispatch.
package registry

// Info describes an asset registry collection.
type Info struct {
	Name   string
	Symbol string
}

// TokenRegistry is the interface an asset registry exposes to the sale
// engine.
type TokenRegistry interface {
	// Mint creates a token owned by owner.
	Mint(tokenID, owner, tokenURI string) error

	// Transfer moves a token to a new owner.
	Transfer(tokenID, newOwner string) error

	// Burn destroys a token.
	Burn(tokenID string) error

	// OwnerOf returns the current owner of a token.
	OwnerOf(tokenID string) (string, error)

	// OwnedBy returns up to limit token ids owned by owner in ascending
	// order, starting after startAfter (exclusive; empty means from the
	// start).
	OwnedBy(owner, startAfter string, limit int) ([]string, error)

	// Info returns collection metadata. Used to vet that an address hosts
	// a live registry.
	Info() (Info, error)
}

// Resolver resolves a configured registry address to a reachable registry.
// Address resolution policy lives outside the engine.
type Resolver interface {
	Resolve(address string) (TokenRegistry, error)
}

// MapResolver resolves addresses from a fixed map.
type MapResolver map[string]TokenRegistry

// Resolve returns the registry registered under address, or
// ErrRegistryNotFound.
func (m MapResolver) Resolve(address string) (TokenRegistry, error) {
	reg, ok := m[address]
	if !ok {
		return nil, ErrRegistryNotFound
	}
	return reg, nil
}
