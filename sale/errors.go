package sale

import "errors"

var (
	// ErrInvalidZeroAmount indicates a coin amount of zero where a positive
	// amount is required.
	ErrInvalidZeroAmount = errors.New("sale: amount must be greater than zero")

	// ErrInvalidDenom indicates an empty or malformed coin denomination.
	ErrInvalidDenom = errors.New("sale: invalid denomination")

	// ErrInvalidAddress indicates an empty or malformed address.
	ErrInvalidAddress = errors.New("sale: invalid address")

	// ErrInvalidTokenID indicates an empty or malformed token id.
	ErrInvalidTokenID = errors.New("sale: invalid token id")

	// ErrInvalidRecipient indicates a recipient with neither a valid address
	// nor a routed message.
	ErrInvalidRecipient = errors.New("sale: invalid recipient")

	// ErrStartTimeAfterEndTime indicates a sale schedule that ends before it
	// starts.
	ErrStartTimeAfterEndTime = errors.New("sale: start time must be before end time")

	// ErrStartTimeInPast indicates an explicit start time earlier than the
	// current block time.
	ErrStartTimeInPast = errors.New("sale: start time is in the past")

	// ErrOverflow indicates an arithmetic overflow on a coin amount.
	ErrOverflow = errors.New("sale: amount overflow")

	// ErrMismatchedDenom indicates arithmetic between coins of different
	// denominations.
	ErrMismatchedDenom = errors.New("sale: mismatched denominations")
)
