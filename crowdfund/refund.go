package crowdfund

import (
	"go.uber.org/zap"

	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

// ClaimRefund lets a buyer reclaim their own commitments once the sale has
// expired below its threshold, without waiting for the settlement sweep.
func (e *Engine) ClaimRefund(ctx Context) (*Response, error) {
	if err := ctx.requireNonPayable(); err != nil {
		return nil, err
	}

	resp := &Response{}
	err := e.store.Update(func(v state.View) error {
		st, ok, err := loadSaleState(v)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoOngoingSale
		}
		if !st.EndTime.IsExpired(ctx.Now) {
			return ErrSaleNotEnded
		}
		if st.AmountSold >= st.MinTokensSold {
			return ErrMinSalesExceeded
		}

		row, err := v.Purchases(ctx.Sender)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			return ErrNoPurchases
		}

		refund, err := consolidatedRefund(v, ctx.Sender, row, st.Price)
		if err != nil {
			return err
		}
		if refund != nil {
			resp.addInstructions(*refund)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("refund claimed", zap.String("purchaser", ctx.Sender))
	return resp.addAttribute("action", "claim_refund"), nil
}

// consolidatedRefund merges a purchaser's pending purchases into a single
// refund of price plus tax per item and deletes their ledger row. Returns
// nil when the amount is zero. The tax paid on each item can differ when
// the rate collaborator changed mid-sale, so each record's own tax is used.
func consolidatedRefund(v state.View, purchaser string, row []sale.Purchase, price sale.Coin) (*sale.Instruction, error) {
	if err := v.DeletePurchases(purchaser); err != nil {
		return nil, err
	}
	var amount uint64
	for _, p := range row {
		item, err := sale.CheckedAdd(price.Amount, p.TaxAmount)
		if err != nil {
			return nil, err
		}
		if amount, err = sale.CheckedAdd(amount, item); err != nil {
			return nil, err
		}
	}
	if amount == 0 {
		return nil, nil
	}
	instr := sale.NewBankSend(purchaser, sale.NewCoin(amount, price.Denom))
	return &instr, nil
}
