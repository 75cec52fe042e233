package sale

import (
	"fmt"
	"strings"
	"time"
)

// ValidateAddress checks that addr is usable as a store key and message
// destination. Addresses are opaque to the engine apart from these checks.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if strings.ContainsRune(addr, 0) {
		return fmt.Errorf("%w: contains NUL", ErrInvalidAddress)
	}
	return nil
}

// ValidateTokenID checks that id is usable as a store key.
func ValidateTokenID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTokenID)
	}
	if strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: contains NUL", ErrInvalidTokenID)
	}
	return nil
}

// ValidateCoin checks that c has a denomination and a positive amount.
func ValidateCoin(c Coin) error {
	if c.Denom == "" {
		return fmt.Errorf("%w: empty denom", ErrInvalidDenom)
	}
	if c.Amount == 0 {
		return ErrInvalidZeroAmount
	}
	return nil
}

// Validate checks that exactly one recipient variant is set and is well
// formed.
func (r Recipient) Validate() error {
	if r.Msg != nil {
		if r.Msg.Path == "" {
			return fmt.Errorf("%w: empty routed path", ErrInvalidRecipient)
		}
		return nil
	}
	if err := ValidateAddress(r.Address); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipient, err)
	}
	return nil
}

// ValidateSchedule resolves and checks a sale schedule. A zero start time
// defaults to now. It returns the resolved start time.
func ValidateSchedule(start, end Milliseconds, now time.Time) (Milliseconds, error) {
	current := MillisecondsFromTime(now)
	if start.IsZero() {
		start = current
	} else if start < current {
		return 0, fmt.Errorf("%w: start %s, now %s", ErrStartTimeInPast, start, current)
	}
	if end <= start {
		return 0, fmt.Errorf("%w: start %s, end %s", ErrStartTimeAfterEndTime, start, end)
	}
	return start, nil
}
