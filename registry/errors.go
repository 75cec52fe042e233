package registry

import "errors"

var (
	// ErrTokenNotFound indicates the token id does not exist.
	ErrTokenNotFound = errors.New("registry: token not found")

	// ErrDuplicateToken indicates the token id has already been minted.
	ErrDuplicateToken = errors.New("registry: token already minted")

	// ErrRegistryNotFound indicates no registry is reachable at the
	// address.
	ErrRegistryNotFound = errors.New("registry: no registry at address")
)
