// Package crowdfund implements a threshold-crowdfunding sale over
// non-fungible items: an owner mints items into an available set, starts a
// time-bounded sale at a fixed unit price, buyers commit funds against the
// available items, and a resumable batched settlement either delivers every
// item and pays out the proceeds or refunds every buyer and burns the
// unsold stock, depending on whether the minimum-sold threshold was met.
//
// The engine performs no I/O beyond its store: every call returns a
// Response carrying the instructions (fund transfers, registry mints,
// transfers, burns) for the host environment to dispatch. Each call runs in
// a single store transaction, so a failed call commits nothing.
package crowdfund

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mintforge/crowdsale-go/auth"
	"github.com/mintforge/crowdsale-go/rates"
	"github.com/mintforge/crowdsale-go/registry"
	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

const (
	// MaxMintItems caps the items minted in one call.
	MaxMintItems = 100

	// DefaultSettleLimit is the settlement batch size when the caller
	// omits one.
	DefaultSettleLimit = 50

	// MaxSettleLimit caps the settlement batch size.
	MaxSettleLimit = 100

	// DefaultQueryLimit is the available-token page size when the caller
	// omits one.
	DefaultQueryLimit = 20

	// MaxQueryLimit caps the available-token page size.
	MaxQueryLimit = 50
)

// Context carries the per-call environment: who is calling, what funds they
// attached, and the current block time.
type Context struct {
	Sender string
	Funds  []sale.Coin
	Now    time.Time
}

// requireNonPayable rejects calls that attached funds.
func (c Context) requireNonPayable() error {
	for _, coin := range c.Funds {
		if coin.Amount > 0 {
			return fmt.Errorf("%w: got %s", ErrNonPayable, coin)
		}
	}
	return nil
}

// Attribute is one key/value pair describing what a call did.
type Attribute struct {
	Key   string
	Value string
}

// Response is the result of a successful call: attributes for observers and
// instructions for the host to dispatch.
type Response struct {
	Attributes   []Attribute
	Instructions []sale.Instruction
}

func (r *Response) addAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) addInstructions(instrs ...sale.Instruction) *Response {
	r.Instructions = append(r.Instructions, instrs...)
	return r
}

// Options configures a new Engine.
type Options struct {
	// Store is the persistent repository for the five sale stores.
	Store state.Store

	// Registries resolves the configured asset-registry address.
	Registries registry.Resolver

	// Fees is the fee/rate collaborator consulted per purchased item.
	// Nil means no fees.
	Fees rates.FeeEngine

	// Auth is the injected ownership capability.
	Auth auth.Authority

	// SelfAddress is the engine's own address; items minted to it are
	// offered for sale.
	SelfAddress string

	// Logger is optional; nil means no logging.
	Logger *zap.Logger
}

// Engine is the sale lifecycle manager and settlement engine.
type Engine struct {
	store      state.Store
	registries registry.Resolver
	fees       rates.FeeEngine
	auth       auth.Authority
	self       string
	logger     *zap.Logger
}

// New creates an Engine from opts.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store", state.ErrNilParam)
	}
	if opts.Registries == nil {
		return nil, fmt.Errorf("%w: registry resolver", state.ErrNilParam)
	}
	if opts.Auth == nil {
		return nil, fmt.Errorf("%w: authority", state.ErrNilParam)
	}
	if err := sale.ValidateAddress(opts.SelfAddress); err != nil {
		return nil, err
	}
	fees := opts.Fees
	if fees == nil {
		fees = rates.Nop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      opts.Store,
		registries: opts.Registries,
		fees:       fees,
		auth:       opts.Auth,
		self:       opts.SelfAddress,
		logger:     logger,
	}, nil
}

// Setup stores the initial sale config and zeroes the counters. It must be
// called once before any other operation.
func (e *Engine) Setup(cfg sale.Config) error {
	if err := sale.ValidateAddress(cfg.TokenAddress); err != nil {
		return err
	}
	return e.store.Update(func(v state.View) error {
		if err := v.SetConfig(&cfg); err != nil {
			return err
		}
		if err := v.SetSaleConducted(false); err != nil {
			return err
		}
		return v.SetTokenCount(0)
	})
}

// loadSaleState returns the sale state and whether one exists.
func loadSaleState(v state.View) (*sale.State, bool, error) {
	st, err := v.SaleState()
	if err != nil {
		if errors.Is(err, state.ErrSaleStateNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return st, true, nil
}

// tokenRegistry resolves the configured asset registry.
func (e *Engine) tokenRegistry(v state.View) (string, registry.TokenRegistry, error) {
	cfg, err := v.Config()
	if err != nil {
		return "", nil, err
	}
	reg, err := e.registries.Resolve(cfg.TokenAddress)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrInvalidRegistry, cfg.TokenAddress, err)
	}
	return cfg.TokenAddress, reg, nil
}
