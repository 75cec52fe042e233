package crowdfund

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

// StartSale begins a sale over the currently available items. Owner-only.
// The start time defaults to the call time; the sticky sale-conducted flag
// is set even if the sale later fails.
func (e *Engine) StartSale(ctx Context, msg StartSaleMsg) (*Response, error) {
	if err := ctx.requireNonPayable(); err != nil {
		return nil, err
	}
	if !e.auth.IsOwner(ctx.Sender) {
		return nil, fmt.Errorf("%w: start_sale by %s", ErrUnauthorized, ctx.Sender)
	}
	if err := msg.Recipient.Validate(); err != nil {
		return nil, err
	}
	if err := sale.ValidateCoin(msg.Price); err != nil {
		return nil, err
	}
	if msg.MinTokensSold == 0 {
		return nil, fmt.Errorf("%w: min tokens sold", sale.ErrInvalidZeroAmount)
	}

	start, err := sale.ValidateSchedule(msg.StartTime, msg.EndTime, ctx.Now)
	if err != nil {
		return nil, err
	}

	maxPerWallet := msg.MaxAmountPerWallet
	if maxPerWallet == 0 {
		maxPerWallet = 1
	}

	err = e.store.Update(func(v state.View) error {
		_, ok, err := loadSaleState(v)
		if err != nil {
			return err
		}
		if ok {
			return ErrSaleStarted
		}
		if err := v.SetSaleConducted(true); err != nil {
			return err
		}
		return v.SetSaleState(&sale.State{
			EndTime:            msg.EndTime,
			Price:              msg.Price,
			MinTokensSold:      msg.MinTokensSold,
			MaxAmountPerWallet: maxPerWallet,
			Recipient:          msg.Recipient,
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("sale started",
		zap.String("price", msg.Price.String()),
		zap.Uint64("min_tokens_sold", msg.MinTokensSold),
		zap.String("end_time", msg.EndTime.String()))

	resp := &Response{}
	return resp.addAttribute("action", "start_sale").
		addAttribute("start_time", start.String()).
		addAttribute("end_time", msg.EndTime.String()).
		addAttribute("price", msg.Price.String()).
		addAttribute("min_tokens_sold", strconv.FormatUint(msg.MinTokensSold, 10)).
		addAttribute("max_amount_per_wallet", strconv.FormatUint(uint64(maxPerWallet), 10)), nil
}

// UpdateAssetRegistry points the engine at a different asset registry.
// Owner-only, and refused once any token has been minted against the
// current one.
func (e *Engine) UpdateAssetRegistry(ctx Context, address string) (*Response, error) {
	if err := ctx.requireNonPayable(); err != nil {
		return nil, err
	}
	if !e.auth.IsOwner(ctx.Sender) {
		return nil, fmt.Errorf("%w: update_asset_registry by %s", ErrUnauthorized, ctx.Sender)
	}
	if err := sale.ValidateAddress(address); err != nil {
		return nil, err
	}

	reg, err := e.registries.Resolve(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRegistry, address, err)
	}
	if _, err := reg.Info(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRegistry, address, err)
	}

	err = e.store.Update(func(v state.View) error {
		count, err := v.TokenCount()
		if err != nil {
			return err
		}
		if count != 0 {
			return fmt.Errorf("%w: tokens already minted", ErrUnauthorized)
		}
		cfg, err := v.Config()
		if err != nil {
			return err
		}
		cfg.TokenAddress = address
		return v.SetConfig(cfg)
	})
	if err != nil {
		return nil, err
	}

	resp := &Response{}
	return resp.addAttribute("action", "update_asset_registry"), nil
}
