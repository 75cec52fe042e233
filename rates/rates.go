// Package rates defines the boundary to the fee/rate collaborator consulted
// once per purchased item. A fee engine splits a payment into side-effect
// transfers (taxes, royalties) and the remainder credited to the seller.
package rates

import (
	"fmt"

	"github.com/mintforge/crowdsale-go/sale"
)

// FeeEngine computes the fee effects for a payment made by payer. The
// returned remainder is what the seller keeps; effects are dispatched by the
// host alongside settlement.
type FeeEngine interface {
	ComputeFee(payer string, payment sale.Coin) (effects []sale.Instruction, remainder sale.Coin, err error)
}

// Nop is a FeeEngine that charges nothing.
type Nop struct{}

// ComputeFee returns the payment untouched with no effects.
func (Nop) ComputeFee(_ string, payment sale.Coin) ([]sale.Instruction, sale.Coin, error) {
	return nil, payment, nil
}

// FlatFee charges a fixed amount per payment, sent to Collector. When
// Deducted is true the fee comes out of the payment; otherwise the payer
// owes it on top.
type FlatFee struct {
	Amount    uint64
	Collector string
	Deducted  bool
}

// Compile-time interface checks.
var (
	_ FeeEngine = Nop{}
	_ FeeEngine = FlatFee{}
	_ FeeEngine = PercentFee{}
)

// ComputeFee applies the flat fee to payment.
func (f FlatFee) ComputeFee(_ string, payment sale.Coin) ([]sale.Instruction, sale.Coin, error) {
	return feeEffects(payment, f.Amount, f.Collector, f.Deducted)
}

// PercentFee charges a percentage of the payment in basis points (1/100th
// of a percent), sent to Collector.
type PercentFee struct {
	BasisPoints uint64
	Collector   string
	Deducted    bool
}

// ComputeFee applies the percentage fee to payment. The fee rounds down.
func (f PercentFee) ComputeFee(_ string, payment sale.Coin) ([]sale.Instruction, sale.Coin, error) {
	if f.BasisPoints > 10000 {
		return nil, sale.Coin{}, fmt.Errorf("%w: %d basis points", ErrInvalidRate, f.BasisPoints)
	}
	scaled, err := sale.CheckedMul(payment.Amount, f.BasisPoints)
	if err != nil {
		return nil, sale.Coin{}, err
	}
	return feeEffects(payment, scaled/10000, f.Collector, f.Deducted)
}

func feeEffects(payment sale.Coin, fee uint64, collector string, deducted bool) ([]sale.Instruction, sale.Coin, error) {
	if fee == 0 {
		return nil, payment, nil
	}
	if collector == "" {
		return nil, sale.Coin{}, ErrNoCollector
	}
	remainder := payment
	if deducted {
		amount, err := sale.CheckedSub(payment.Amount, fee)
		if err != nil {
			return nil, sale.Coin{}, fmt.Errorf("%w: fee %d exceeds payment %s", ErrFeeExceedsPayment, fee, payment)
		}
		remainder.Amount = amount
	}
	effect := sale.NewBankSend(collector, sale.NewCoin(fee, payment.Denom))
	return []sale.Instruction{effect}, remainder, nil
}

// TaxAmount derives the tax paid on top of a unit price from the fee
// effects and the remainder: total effect funds minus the part deducted
// from the price itself.
func TaxAmount(effects []sale.Instruction, price, remainder sale.Coin) uint64 {
	var total uint64
	for _, effect := range effects {
		for _, c := range effect.Amount {
			if c.Denom == price.Denom {
				total += c.Amount
			}
		}
	}
	deducted := price.Amount - remainder.Amount
	if total < deducted {
		return 0
	}
	return total - deducted
}
