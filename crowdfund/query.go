package crowdfund

import (
	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

// GetSaleState returns the current sale state, or ErrNoOngoingSale when no
// sale is in progress or left unsettled.
func (e *Engine) GetSaleState() (*sale.State, error) {
	var st *sale.State
	err := e.store.View(func(v state.View) error {
		loaded, ok, err := loadSaleState(v)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoOngoingSale
		}
		st = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// GetSaleConfig returns the sale config.
func (e *Engine) GetSaleConfig() (*sale.Config, error) {
	var cfg *sale.Config
	err := e.store.View(func(v state.View) error {
		loaded, err := v.Config()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListAvailableTokens pages through the unsold token ids in ascending
// order, starting after startAfter (exclusive; empty means from the
// start). A nil limit means DefaultQueryLimit; limits above MaxQueryLimit
// are clamped.
func (e *Engine) ListAvailableTokens(startAfter string, limit *uint32) ([]string, error) {
	lim := DefaultQueryLimit
	if limit != nil {
		lim = int(*limit)
	}
	if lim > MaxQueryLimit {
		lim = MaxQueryLimit
	}

	var ids []string
	err := e.store.View(func(v state.View) error {
		loaded, err := v.AvailableTokens(startAfter, lim)
		if err != nil {
			return err
		}
		ids = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IsTokenAvailable reports whether the token id is currently offered for
// sale.
func (e *Engine) IsTokenAvailable(id string) (bool, error) {
	var available bool
	err := e.store.View(func(v state.View) error {
		has, err := v.HasAvailableToken(id)
		if err != nil {
			return err
		}
		available = has
		return nil
	})
	if err != nil {
		return false, err
	}
	return available, nil
}
