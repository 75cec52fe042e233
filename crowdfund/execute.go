package crowdfund

import (
	"fmt"

	"github.com/mintforge/crowdsale-go/sale"
)

// Msg is a typed request handled by Execute.
type Msg interface {
	action() string
}

// MintMsg mints up to MaxMintItems items.
type MintMsg struct {
	Items []sale.MintItem
}

// StartSaleMsg begins a sale.
type StartSaleMsg struct {
	// StartTime defaults to the call time when zero.
	StartTime sale.Milliseconds
	EndTime   sale.Milliseconds
	Price     sale.Coin
	// MinTokensSold is the success threshold.
	MinTokensSold uint64
	// MaxAmountPerWallet defaults to 1 when zero.
	MaxAmountPerWallet uint32
	Recipient          sale.Recipient
}

// PurchaseMsg buys up to NumberOfTokens items (nil means the caller's full
// remaining quota).
type PurchaseMsg struct {
	NumberOfTokens *uint32
}

// PurchaseByTokenIDMsg buys one specific item.
type PurchaseByTokenIDMsg struct {
	TokenID string
}

// ClaimRefundMsg refunds the caller's purchases after a failed sale.
type ClaimRefundMsg struct{}

// EndSaleMsg performs one bounded settlement step (nil limit means
// DefaultSettleLimit).
type EndSaleMsg struct {
	Limit *uint32
}

// UpdateAssetRegistryMsg points the engine at a different asset registry.
type UpdateAssetRegistryMsg struct {
	Address string
}

func (MintMsg) action() string                { return "mint" }
func (StartSaleMsg) action() string           { return "start_sale" }
func (PurchaseMsg) action() string            { return "purchase" }
func (PurchaseByTokenIDMsg) action() string   { return "purchase" }
func (ClaimRefundMsg) action() string         { return "claim_refund" }
func (EndSaleMsg) action() string             { return "end_sale" }
func (UpdateAssetRegistryMsg) action() string { return "update_asset_registry" }

// Execute is the single request/response entry point. It runs the authority
// hook, then routes the message to its handler.
func (e *Engine) Execute(ctx Context, msg Msg) (*Response, error) {
	if err := e.auth.OnBeforeExecute(msg.action(), ctx.Sender); err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case MintMsg:
		return e.Mint(ctx, m.Items)
	case StartSaleMsg:
		return e.StartSale(ctx, m)
	case PurchaseMsg:
		return e.Purchase(ctx, m.NumberOfTokens)
	case PurchaseByTokenIDMsg:
		return e.PurchaseByTokenID(ctx, m.TokenID)
	case ClaimRefundMsg:
		return e.ClaimRefund(ctx)
	case EndSaleMsg:
		return e.EndSale(ctx, m.Limit)
	case UpdateAssetRegistryMsg:
		return e.UpdateAssetRegistry(ctx, m.Address)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMsg, msg)
	}
}
