package crowdfund

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mintforge/crowdsale-go/rates"
	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

// Purchase buys up to numberOfTokens items (nil means the caller's full
// remaining wallet quota), taking available items in ascending id order.
// The actual count is clamped to the quota and to the available stock, so a
// caller may receive fewer items than requested; any surplus funds beyond
// the exact price plus taxes are returned.
func (e *Engine) Purchase(ctx Context, numberOfTokens *uint32) (*Response, error) {
	if err := sale.ValidateAddress(ctx.Sender); err != nil {
		return nil, err
	}

	resp := &Response{}
	var wanted, purchased int
	err := e.store.Update(func(v state.View) error {
		st, ok, err := loadSaleState(v)
		if err != nil {
			return err
		}
		if !ok || st.EndTime.IsExpired(ctx.Now) {
			return ErrNoOngoingSale
		}

		row, err := v.Purchases(ctx.Sender)
		if err != nil {
			return err
		}
		quota := int(st.MaxAmountPerWallet) - len(row)
		if quota <= 0 {
			return ErrPurchaseLimitReached
		}

		wanted = quota
		if numberOfTokens != nil && int(*numberOfTokens) < quota {
			wanted = int(*numberOfTokens)
		}

		tokenIDs, err := v.AvailableTokens("", wanted)
		if err != nil {
			return err
		}
		purchased = len(tokenIDs)

		required, err := e.purchaseTokens(v, ctx, st, &row, tokenIDs)
		if err != nil {
			return err
		}
		if err := v.SetPurchases(ctx.Sender, row); err != nil {
			return err
		}
		if err := v.SetSaleState(st); err != nil {
			return err
		}

		// Refund surplus funds; buyers near the end of the sale may get
		// fewer items than they paid for.
		leftover, err := sale.DeductFunds(ctx.Funds, required)
		if err != nil {
			return err
		}
		if sale.HasCoins(leftover, sale.NewCoin(1, st.Price.Denom)) {
			resp.addInstructions(sale.NewBankSend(ctx.Sender, leftover...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("purchase",
		zap.String("purchaser", ctx.Sender),
		zap.Int("wanted", wanted),
		zap.Int("purchased", purchased))

	return resp.addAttribute("action", "purchase").
		addAttribute("number_of_tokens_wanted", fmt.Sprintf("%d", wanted)).
		addAttribute("number_of_tokens_purchased", fmt.Sprintf("%d", purchased)), nil
}

// PurchaseByTokenID buys one specific available item with the same
// accounting as Purchase.
func (e *Engine) PurchaseByTokenID(ctx Context, tokenID string) (*Response, error) {
	if err := sale.ValidateAddress(ctx.Sender); err != nil {
		return nil, err
	}
	if err := sale.ValidateTokenID(tokenID); err != nil {
		return nil, err
	}

	err := e.store.Update(func(v state.View) error {
		st, ok, err := loadSaleState(v)
		if err != nil {
			return err
		}
		if !ok || st.EndTime.IsExpired(ctx.Now) {
			return ErrNoOngoingSale
		}

		row, err := v.Purchases(ctx.Sender)
		if err != nil {
			return err
		}
		available, err := v.HasAvailableToken(tokenID)
		if err != nil {
			return err
		}
		if !available {
			return fmt.Errorf("%w: %s", ErrTokenNotAvailable, tokenID)
		}
		if int(st.MaxAmountPerWallet)-len(row) <= 0 {
			return ErrPurchaseLimitReached
		}

		if _, err := e.purchaseTokens(v, ctx, st, &row, []string{tokenID}); err != nil {
			return err
		}
		if err := v.SetPurchases(ctx.Sender, row); err != nil {
			return err
		}
		return v.SetSaleState(st)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("purchase",
		zap.String("purchaser", ctx.Sender),
		zap.String("token_id", tokenID))

	resp := &Response{}
	return resp.addAttribute("action", "purchase").
		addAttribute("token_id", tokenID), nil
}

// purchaseTokens records one purchase per token id, moving each id from the
// available set into the caller's ledger row and updating the running
// totals. It returns the exact payment required (price per item plus
// taxes) after verifying the attached funds cover it.
func (e *Engine) purchaseTokens(v state.View, ctx Context, st *sale.State, row *[]sale.Purchase, tokenIDs []string) (sale.Coin, error) {
	if len(tokenIDs) == 0 {
		return sale.Coin{}, ErrAllTokensPurchased
	}

	baseCost, err := sale.CheckedMul(st.Price.Amount, uint64(len(tokenIDs)))
	if err != nil {
		return sale.Coin{}, err
	}
	if !sale.HasCoins(ctx.Funds, sale.NewCoin(baseCost, st.Price.Denom)) {
		return sale.Coin{}, fmt.Errorf("%w: need %s", ErrInsufficientFunds, sale.NewCoin(baseCost, st.Price.Denom))
	}

	// The fee outcome is identical for every token at the fixed unit
	// price, so compute it once.
	effects, remainder, err := e.fees.ComputeFee(ctx.Sender, st.Price)
	if err != nil {
		return sale.Coin{}, err
	}
	taxAmount := rates.TaxAmount(effects, st.Price, remainder)

	count, err := v.TokenCount()
	if err != nil {
		return sale.Coin{}, err
	}
	var totalTax uint64
	for _, tokenID := range tokenIDs {
		*row = append(*row, sale.Purchase{
			TokenID:   tokenID,
			TaxAmount: taxAmount,
			Msgs:      effects,
			Purchaser: ctx.Sender,
		})
		if totalTax, err = sale.CheckedAdd(totalTax, taxAmount); err != nil {
			return sale.Coin{}, err
		}
		if st.AmountToSend, err = sale.CheckedAdd(st.AmountToSend, remainder.Amount); err != nil {
			return sale.Coin{}, err
		}
		if st.AmountSold, err = sale.CheckedAdd(st.AmountSold, 1); err != nil {
			return sale.Coin{}, err
		}
		if err := v.RemoveAvailableToken(tokenID); err != nil {
			return sale.Coin{}, err
		}
		if count, err = sale.CheckedSub(count, 1); err != nil {
			return sale.Coin{}, err
		}
	}
	if err := v.SetTokenCount(count); err != nil {
		return sale.Coin{}, err
	}

	requiredAmount, err := sale.CheckedAdd(baseCost, totalTax)
	if err != nil {
		return sale.Coin{}, err
	}
	required := sale.NewCoin(requiredAmount, st.Price.Denom)
	if !sale.HasCoins(ctx.Funds, required) {
		return sale.Coin{}, fmt.Errorf("%w: need %s including taxes", ErrInsufficientFunds, required)
	}
	return required, nil
}
