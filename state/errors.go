package state

import "errors"

var (
	// ErrConfigNotFound indicates the sale config has not been stored yet.
	ErrConfigNotFound = errors.New("state: config not found")

	// ErrSaleStateNotFound indicates no sale state record exists.
	ErrSaleStateNotFound = errors.New("state: sale state not found")

	// ErrTokenNotFound indicates the token id is not in the available set.
	ErrTokenNotFound = errors.New("state: token not available")

	// ErrDuplicateToken indicates the token id is already in the available
	// set.
	ErrDuplicateToken = errors.New("state: token already available")

	// ErrNilParam indicates a required parameter was nil.
	ErrNilParam = errors.New("state: nil parameter")

	// ErrEmptyKey indicates an empty token id or purchaser key.
	ErrEmptyKey = errors.New("state: empty key")
)
