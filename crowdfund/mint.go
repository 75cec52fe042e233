package crowdfund

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

// Mint mints items on the asset registry. Only items owned by the engine
// itself join the available set; the owner may mint to third parties to set
// stock aside (team allocations, airdrops) without offering it for sale.
// Minting and selling are mutually exclusive phases.
func (e *Engine) Mint(ctx Context, items []sale.MintItem) (*Response, error) {
	if err := ctx.requireNonPayable(); err != nil {
		return nil, err
	}
	if len(items) > MaxMintItems {
		return nil, fmt.Errorf("%w: %d items, limit %d", ErrTooManyMintItems, len(items), MaxMintItems)
	}
	if !e.auth.IsOwner(ctx.Sender) {
		return nil, fmt.Errorf("%w: mint by %s", ErrUnauthorized, ctx.Sender)
	}

	resp := &Response{}
	err := e.store.Update(func(v state.View) error {
		_, ok, err := loadSaleState(v)
		if err != nil {
			return err
		}
		if ok {
			return ErrSaleStarted
		}
		conducted, err := v.SaleConducted()
		if err != nil {
			return err
		}
		cfg, err := v.Config()
		if err != nil {
			return err
		}
		if conducted && !cfg.CanMintAfterSale {
			return ErrCannotMintAfterSaleConducted
		}

		count, err := v.TokenCount()
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := sale.ValidateTokenID(item.TokenID); err != nil {
				return err
			}
			owner := item.Owner
			if owner == "" {
				owner = e.self
			}
			if owner == e.self {
				if err := v.AddAvailableToken(item.TokenID); err != nil {
					return err
				}
				count, err = sale.CheckedAdd(count, 1)
				if err != nil {
					return err
				}
			}
			resp.addAttribute("action", "mint").
				addInstructions(sale.NewMintToken(cfg.TokenAddress, item.TokenID, owner, item.TokenURI))
		}
		return v.SetTokenCount(count)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("minted items", zap.Int("count", len(items)))
	return resp, nil
}
