package crowdfund

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

// EndSale performs one bounded settlement step. Depending on whether the
// minimum-sold threshold was met, it either refunds purchasers and burns
// the unsold stock, or delivers purchased items and pays the proceeds to
// the recipient. Each call processes at most limit units of work; callers
// repeat the call until the sale state disappears. Every step is safe to
// retry: a purchaser or item already processed does not reappear in the
// next batch.
func (e *Engine) EndSale(ctx Context, limit *uint32) (*Response, error) {
	if err := ctx.requireNonPayable(); err != nil {
		return nil, err
	}
	if limit != nil && *limit == 0 {
		return nil, ErrLimitMustNotBeZero
	}
	lim := DefaultSettleLimit
	if limit != nil {
		lim = int(*limit)
	}
	if lim > MaxSettleLimit {
		lim = MaxSettleLimit
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
		count, err := v.TokenCount()
		if err != nil {
			return err
		}

		// The sale can be ended early when everything sold out, or by the
		// owner once the threshold is met.
		thresholdMet := st.AmountSold >= st.MinTokensSold
		if !st.EndTime.IsExpired(ctx.Now) && count != 0 && !(thresholdMet && e.auth.IsOwner(ctx.Sender)) {
			return ErrSaleNotEnded
		}

		if !thresholdMet {
			return e.refundAndBurn(v, st, lim, resp)
		}
		return e.transferAndPayout(v, st, lim, resp)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("settlement step",
		zap.Int("limit", lim),
		zap.Int("instructions", len(resp.Instructions)))
	return resp, nil
}

// refundAndBurn handles the failed-sale branch: one consolidated refund per
// purchaser row for up to lim rows in ascending key order, then burn
// instructions for up to lim unsold items. When both batches come up empty
// the sale is fully settled and the state is cleared.
func (e *Engine) refundAndBurn(v state.View, st *sale.State, lim int, resp *Response) error {
	purchasers, err := v.Purchasers(lim)
	if err != nil {
		return err
	}
	for _, purchaser := range purchasers {
		row, err := v.Purchases(purchaser)
		if err != nil {
			return err
		}
		refund, err := consolidatedRefund(v, purchaser, row, st.Price)
		if err != nil {
			return err
		}
		if refund != nil {
			resp.addInstructions(*refund)
		}
	}

	burns, err := e.burnUnsold(v, lim)
	if err != nil {
		return err
	}
	resp.addInstructions(burns...)

	if len(purchasers) == 0 && len(burns) == 0 {
		if err := clearSaleState(v); err != nil {
			return err
		}
	}
	resp.addAttribute("action", "issue_refunds_and_burn_tokens")
	return nil
}

// transferAndPayout handles the successful-sale branch. Phase one delivers
// purchased items in ascending (purchaser, insertion) order, lim entries
// per call, using a one-entry lookahead to decide whether the boundary
// purchaser's row is drained or truncated. Phase two, once every sold item
// has been delivered, pays the proceeds to the recipient exactly once and
// burns the unsold stock in lim-sized batches until nothing remains.
func (e *Engine) transferAndPayout(v state.View, st *sale.State, lim int, resp *Response) error {
	resp.addAttribute("action", "transfer_tokens_and_send_funds")

	if st.AmountTransferred == st.AmountSold {
		if st.AmountToSend > 0 {
			funds := []sale.Coin{sale.NewCoin(st.AmountToSend, st.Price.Denom)}
			resp.addInstructions(st.Recipient.PayoutInstruction(funds))
			st.AmountToSend = 0
			if err := v.SetSaleState(st); err != nil {
				return err
			}
		}
		burns, err := e.burnUnsold(v, lim)
		if err != nil {
			return err
		}
		if len(burns) == 0 {
			return clearSaleState(v)
		}
		resp.addInstructions(burns...)
		return nil
	}

	// Read one entry beyond the batch: if the lookahead entry belongs to
	// the same purchaser as the last processed entry, their row has
	// unprocessed purchases left and must be truncated, not deleted.
	entries, err := v.FlattenedPurchases(lim + 1)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("crowdfund: %d undelivered purchases but ledger is empty", st.AmountSold-st.AmountTransferred)
	}
	var lookahead *sale.Purchase
	if len(entries) == lim+1 {
		lookahead = &entries[lim]
		entries = entries[:lim]
	}
	boundary := entries[len(entries)-1].Purchaser
	dropBoundaryRow := lookahead == nil || lookahead.Purchaser != boundary

	tokenAddr, _, err := e.tokenRegistry(v)
	if err != nil {
		return err
	}

	consumedFromBoundary := 0
	for _, p := range entries {
		// Forward the fee side-effects recorded at purchase time, then
		// deliver the item.
		resp.addInstructions(p.Msgs...)
		resp.addInstructions(sale.NewTransferToken(tokenAddr, p.TokenID, p.Purchaser))
		if st.AmountTransferred, err = sale.CheckedAdd(st.AmountTransferred, 1); err != nil {
			return err
		}
		if p.Purchaser == boundary {
			consumedFromBoundary++
			continue
		}
		// Entries are grouped by purchaser in ascending order, so any
		// purchaser before the boundary is fully consumed by this batch.
		if err := v.DeletePurchases(p.Purchaser); err != nil {
			return err
		}
	}

	if dropBoundaryRow {
		if err := v.DeletePurchases(boundary); err != nil {
			return err
		}
	} else {
		row, err := v.Purchases(boundary)
		if err != nil {
			return err
		}
		if err := v.SetPurchases(boundary, row[consumedFromBoundary:]); err != nil {
			return err
		}
	}

	return v.SetSaleState(st)
}

// burnUnsold asks the registry which items still belong to the engine and
// turns up to lim of them into burn instructions, dropping each from the
// available set and the counter.
func (e *Engine) burnUnsold(v state.View, lim int) ([]sale.Instruction, error) {
	tokenAddr, reg, err := e.tokenRegistry(v)
	if err != nil {
		return nil, err
	}
	tokenIDs, err := reg.OwnedBy(e.self, "", lim)
	if err != nil {
		return nil, err
	}
	if len(tokenIDs) == 0 {
		return nil, nil
	}

	count, err := v.TokenCount()
	if err != nil {
		return nil, err
	}
	burns := make([]sale.Instruction, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		available, err := v.HasAvailableToken(tokenID)
		if err != nil {
			return nil, err
		}
		if available {
			if err := v.RemoveAvailableToken(tokenID); err != nil {
				return nil, err
			}
			if count, err = sale.CheckedSub(count, 1); err != nil {
				return nil, err
			}
		}
		burns = append(burns, sale.NewBurnToken(tokenAddr, tokenID))
	}
	if err := v.SetTokenCount(count); err != nil {
		return nil, err
	}
	return burns, nil
}

// clearSaleState marks settlement complete: no sale state, zero counter.
func clearSaleState(v state.View) error {
	if err := v.DeleteSaleState(); err != nil {
		return err
	}
	return v.SetTokenCount(0)
}
