package crowdfund

import "errors"

var (
	// ErrUnauthorized indicates an owner-only operation by a non-owner.
	ErrUnauthorized = errors.New("crowdfund: unauthorized")

	// ErrNonPayable indicates funds were sent to an operation that takes
	// none.
	ErrNonPayable = errors.New("crowdfund: operation does not accept funds")

	// ErrSaleStarted indicates minting or starting while a sale state
	// exists.
	ErrSaleStarted = errors.New("crowdfund: sale has already started")

	// ErrSaleNotEnded indicates EndSale or ClaimRefund preconditions are
	// unmet.
	ErrSaleNotEnded = errors.New("crowdfund: sale has not ended")

	// ErrNoOngoingSale indicates no sale state exists or the sale is
	// time-expired.
	ErrNoOngoingSale = errors.New("crowdfund: no ongoing sale")

	// ErrTokenNotAvailable indicates the requested token is not offered.
	ErrTokenNotAvailable = errors.New("crowdfund: token not available")

	// ErrPurchaseLimitReached indicates the wallet quota is exhausted.
	ErrPurchaseLimitReached = errors.New("crowdfund: purchase limit reached")

	// ErrInsufficientFunds indicates sent funds do not cover the price
	// plus taxes.
	ErrInsufficientFunds = errors.New("crowdfund: insufficient funds")

	// ErrAllTokensPurchased indicates no tokens remain for sale.
	ErrAllTokensPurchased = errors.New("crowdfund: all tokens purchased")

	// ErrLimitMustNotBeZero indicates an explicit zero settlement limit.
	ErrLimitMustNotBeZero = errors.New("crowdfund: limit must not be zero")

	// ErrMinSalesExceeded indicates a refund claim on a successful sale.
	ErrMinSalesExceeded = errors.New("crowdfund: minimum sales threshold was met")

	// ErrNoPurchases indicates the caller has no pending purchases.
	ErrNoPurchases = errors.New("crowdfund: no purchases")

	// ErrCannotMintAfterSaleConducted indicates minting is closed for good.
	ErrCannotMintAfterSaleConducted = errors.New("crowdfund: cannot mint after a sale has been conducted")

	// ErrTooManyMintItems indicates a mint batch above the per-call cap.
	ErrTooManyMintItems = errors.New("crowdfund: too many mint items")

	// ErrInvalidRegistry indicates the configured address does not host a
	// usable asset registry.
	ErrInvalidRegistry = errors.New("crowdfund: invalid asset registry")

	// ErrUnknownMsg indicates a message the dispatcher does not handle.
	ErrUnknownMsg = errors.New("crowdfund: unknown message")
)
