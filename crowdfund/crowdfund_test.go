package crowdfund

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mintforge/crowdsale-go/auth"
	"github.com/mintforge/crowdsale-go/rates"
	"github.com/mintforge/crowdsale-go/registry"
	"github.com/mintforge/crowdsale-go/sale"
	"github.com/mintforge/crowdsale-go/state"
)

const (
	ownerAddr = "owner"
	selfAddr  = "crowdfund"
	regAddr   = "registry0"
	denom     = "uandr"
)

func u32(n uint32) *uint32 { return &n }

// testEnv wires an Engine to in-memory collaborators and plays the host: it
// applies every returned instruction to the registry and a bank tally, so
// successive settlement calls observe the effects of earlier batches.
type testEnv struct {
	t      *testing.T
	engine *Engine
	store  state.Store
	reg    *registry.MemRegistry
	now    time.Time

	received uint64            // funds attached to successful purchases
	bank     map[string]uint64 // address -> funds paid out, test denom only
	routed   map[string]uint64 // routed path -> funds paid out
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	store := state.NewMemStore()
	reg := registry.NewMemRegistry(registry.Info{Name: "Test Collection", Symbol: "TEST"})

	o := Options{
		Store:       store,
		Registries:  registry.MapResolver{regAddr: reg},
		Auth:        auth.Static{Owner: ownerAddr},
		SelfAddress: selfAddr,
	}
	for _, opt := range opts {
		opt(&o)
	}

	engine, err := New(o)
	require.NoError(t, err)
	require.NoError(t, engine.Setup(sale.Config{TokenAddress: regAddr}))

	return &testEnv{
		t:      t,
		engine: engine,
		store:  store,
		reg:    reg,
		now:    time.Unix(1_700_000_000, 0).UTC(),
		bank:   make(map[string]uint64),
		routed: make(map[string]uint64),
	}
}

func withFees(f rates.FeeEngine) func(*Options) {
	return func(o *Options) { o.Fees = f }
}

func (env *testEnv) ctx(sender string, funds ...sale.Coin) Context {
	return Context{Sender: sender, Funds: funds, Now: env.now}
}

func (env *testEnv) advance(d time.Duration) { env.now = env.now.Add(d) }

func (env *testEnv) endIn(d time.Duration) sale.Milliseconds {
	return sale.MillisecondsFromTime(env.now.Add(d))
}

// dispatch applies a response's instructions the way the host environment
// would.
func (env *testEnv) dispatch(resp *Response) {
	env.t.Helper()
	for _, instr := range resp.Instructions {
		switch instr.Kind {
		case sale.InstrBankSend:
			for _, c := range instr.Amount {
				if c.Denom == denom {
					env.bank[instr.To] += c.Amount
				}
			}
		case sale.InstrRoutedPayout:
			for _, c := range instr.Amount {
				if c.Denom == denom {
					env.routed[instr.Path] += c.Amount
				}
			}
		case sale.InstrMintToken:
			require.NoError(env.t, env.reg.Mint(instr.TokenID, instr.Owner, instr.TokenURI))
		case sale.InstrTransferToken:
			require.NoError(env.t, env.reg.Transfer(instr.TokenID, instr.Recipient))
		case sale.InstrBurnToken:
			require.NoError(env.t, env.reg.Burn(instr.TokenID))
		default:
			env.t.Fatalf("unexpected instruction kind %v", instr.Kind)
		}
	}
}

// disbursed sums every payout the engine has issued so far.
func (env *testEnv) disbursed() uint64 {
	var total uint64
	for _, amount := range env.bank {
		total += amount
	}
	for _, amount := range env.routed {
		total += amount
	}
	return total
}

// mint mints token ids owned by the engine and dispatches the registry
// instructions.
func (env *testEnv) mint(ids ...string) {
	env.t.Helper()
	items := make([]sale.MintItem, len(ids))
	for i, id := range ids {
		items[i] = sale.MintItem{TokenID: id, TokenURI: "ipfs://" + id}
	}
	resp, err := env.engine.Mint(env.ctx(ownerAddr), items)
	require.NoError(env.t, err)
	env.dispatch(resp)
}

// startSale starts a sale at 100 denom per item ending an hour from now.
func (env *testEnv) startSale(minSold uint64, maxPerWallet uint32) {
	env.t.Helper()
	resp, err := env.engine.StartSale(env.ctx(ownerAddr), StartSaleMsg{
		EndTime:            env.endIn(time.Hour),
		Price:              sale.NewCoin(100, denom),
		MinTokensSold:      minSold,
		MaxAmountPerWallet: maxPerWallet,
		Recipient:          sale.NewDirectRecipient("seller"),
	})
	require.NoError(env.t, err)
	env.dispatch(resp)
}

// buy purchases n tokens for buyer, attaching exactly the given funds.
func (env *testEnv) buy(buyer string, n uint32, funds uint64) *Response {
	env.t.Helper()
	resp, err := env.engine.Purchase(env.ctx(buyer, sale.NewCoin(funds, denom)), u32(n))
	require.NoError(env.t, err)
	env.received += funds
	env.dispatch(resp)
	return resp
}

// endSale runs one settlement step as the owner and dispatches its
// instructions.
func (env *testEnv) endSale(limit *uint32) *Response {
	env.t.Helper()
	resp, err := env.engine.EndSale(env.ctx(ownerAddr), limit)
	require.NoError(env.t, err)
	env.dispatch(resp)
	return resp
}

// settle drives EndSale with the given limit until the sale state is gone.
func (env *testEnv) settle(limit *uint32) {
	env.t.Helper()
	for i := 0; ; i++ {
		require.Less(env.t, i, 100, "settlement did not converge")
		env.endSale(limit)
		if _, err := env.engine.GetSaleState(); err != nil {
			require.ErrorIs(env.t, err, ErrNoOngoingSale)
			return
		}
	}
}

// purchasers lists the ledger rows, ascending.
func (env *testEnv) purchasers() []string {
	env.t.Helper()
	var keys []string
	require.NoError(env.t, env.store.View(func(v state.View) error {
		var err error
		keys, err = v.Purchasers(-1)
		return err
	}))
	return keys
}

// row returns one purchaser's pending purchases.
func (env *testEnv) row(purchaser string) []sale.Purchase {
	env.t.Helper()
	var row []sale.Purchase
	require.NoError(env.t, env.store.View(func(v state.View) error {
		var err error
		row, err = v.Purchases(purchaser)
		return err
	}))
	return row
}

func (env *testEnv) tokenCount() uint64 {
	env.t.Helper()
	var n uint64
	require.NoError(env.t, env.store.View(func(v state.View) error {
		var err error
		n, err = v.TokenCount()
		return err
	}))
	return n
}

// seqIDs returns n zero-padded token ids so lexicographic order matches
// numeric order.
func seqIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%03d", i)
	}
	return ids
}
