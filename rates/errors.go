package rates

import "errors"

var (
	// ErrInvalidRate indicates a percentage rate above 100%.
	ErrInvalidRate = errors.New("rates: invalid rate")

	// ErrNoCollector indicates a non-zero fee with no collector address.
	ErrNoCollector = errors.New("rates: no fee collector configured")

	// ErrFeeExceedsPayment indicates a deducted fee larger than the
	// payment.
	ErrFeeExceedsPayment = errors.New("rates: fee exceeds payment")
)
