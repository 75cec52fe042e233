package sale

import (
	"fmt"
	"time"
)

// Milliseconds is a point in time expressed as milliseconds since the Unix
// epoch. The zero value means "unset".
type Milliseconds uint64

// MillisecondsFromTime converts a time.Time to Milliseconds.
func MillisecondsFromTime(t time.Time) Milliseconds {
	return Milliseconds(t.UnixMilli())
}

// Time converts m back to a time.Time in UTC.
func (m Milliseconds) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// IsExpired reports whether m is at or before now.
func (m Milliseconds) IsExpired(now time.Time) bool {
	return m <= MillisecondsFromTime(now)
}

// IsZero reports whether m is unset.
func (m Milliseconds) IsZero() bool { return m == 0 }

func (m Milliseconds) String() string {
	return m.Time().Format(time.RFC3339)
}

// Coin is an amount of a single native denomination, in base units.
type Coin struct {
	Denom  string
	Amount uint64
}

// NewCoin constructs a Coin.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// IsZero reports whether the coin has a zero amount.
func (c Coin) IsZero() bool { return c.Amount == 0 }

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// Add returns c plus other. Fails on denom mismatch or overflow.
func (c Coin) Add(other Coin) (Coin, error) {
	if c.Denom != other.Denom {
		return Coin{}, fmt.Errorf("%w: %s vs %s", ErrMismatchedDenom, c.Denom, other.Denom)
	}
	amount, err := CheckedAdd(c.Amount, other.Amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Denom: c.Denom, Amount: amount}, nil
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrOverflow when b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, a, b)
	}
	return a - b, nil
}

// CheckedMul returns a*b or ErrOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return product, nil
}

// HasCoins reports whether funds contain at least the given coin.
func HasCoins(funds []Coin, required Coin) bool {
	for _, c := range funds {
		if c.Denom == required.Denom && c.Amount >= required.Amount {
			return true
		}
	}
	return required.Amount == 0
}

// DeductFunds subtracts required from the matching entry in funds, returning
// the remaining funds. Fails when funds do not cover the required coin.
func DeductFunds(funds []Coin, required Coin) ([]Coin, error) {
	if required.Amount == 0 {
		return funds, nil
	}
	remaining := make([]Coin, 0, len(funds))
	deducted := false
	for _, c := range funds {
		if !deducted && c.Denom == required.Denom {
			if c.Amount < required.Amount {
				return nil, fmt.Errorf("%w: have %s, need %s", ErrOverflow, c, required)
			}
			deducted = true
			c.Amount -= required.Amount
		}
		if c.Amount > 0 {
			remaining = append(remaining, c)
		}
	}
	if !deducted {
		return nil, fmt.Errorf("%w: no %s in funds", ErrMismatchedDenom, required.Denom)
	}
	return remaining, nil
}

// Config holds the rarely-changed sale settings.
type Config struct {
	// TokenAddress is the address of the external asset registry holding the
	// items offered for sale.
	TokenAddress string

	// CanMintAfterSale permits minting new items once a sale has been
	// conducted.
	CanMintAfterSale bool
}

// State is the singleton record of the active-or-unsettled sale. Its
// presence in the store is the "sale in progress" signal.
type State struct {
	// EndTime is when the sale stops accepting purchases.
	EndTime Milliseconds

	// Price is the fixed unit price per item.
	Price Coin

	// MinTokensSold is the threshold below which the sale fails and every
	// purchase is refunded.
	MinTokensSold uint64

	// MaxAmountPerWallet caps the undrained purchases a single buyer may
	// hold.
	MaxAmountPerWallet uint32

	// AmountSold counts items purchased so far.
	AmountSold uint64

	// AmountToSend is the seller's net proceeds still owed.
	AmountToSend uint64

	// AmountTransferred counts purchased items already delivered by
	// settlement. Never exceeds AmountSold.
	AmountTransferred uint64

	// Recipient receives the proceeds on successful settlement.
	Recipient Recipient
}

// Purchase is a single pending purchase commitment awaiting settlement.
type Purchase struct {
	// TokenID is the item being purchased.
	TokenID string

	// TaxAmount is the tax paid on top of the unit price.
	TaxAmount uint64

	// Msgs are the fee side-effect instructions recorded at purchase time
	// and forwarded during settlement.
	Msgs []Instruction

	// Purchaser is the buyer's address.
	Purchaser string
}

// MintItem describes one item to mint and optionally reserve for sale.
type MintItem struct {
	TokenID  string
	TokenURI string

	// Owner defaults to the engine's own address when empty. Items minted
	// to a third party are excluded from the sale.
	Owner string
}
