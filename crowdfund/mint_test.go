package crowdfund

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintforge/crowdsale-go/sale"
)

func TestMintUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.Mint(env.ctx("anyone"), []sale.MintItem{{TokenID: "0"}})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMintNonPayable(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.Mint(env.ctx(ownerAddr, sale.NewCoin(1, denom)), []sale.MintItem{{TokenID: "0"}})
	assert.ErrorIs(t, err, ErrNonPayable)
}

func TestMintTooManyItems(t *testing.T) {
	env := newTestEnv(t)
	ids := seqIDs(MaxMintItems + 1)
	items := make([]sale.MintItem, len(ids))
	for i, id := range ids {
		items[i] = sale.MintItem{TokenID: id}
	}
	_, err := env.engine.Mint(env.ctx(ownerAddr), items)
	assert.ErrorIs(t, err, ErrTooManyMintItems)
}

func TestMintSuccessful(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.engine.Mint(env.ctx(ownerAddr), []sale.MintItem{{TokenID: "0", TokenURI: "ipfs://0"}})
	require.NoError(t, err)
	env.dispatch(resp)

	require.Len(t, resp.Instructions, 1)
	instr := resp.Instructions[0]
	assert.Equal(t, sale.InstrMintToken, instr.Kind)
	assert.Equal(t, regAddr, instr.Registry)
	// Owner defaults to the engine itself.
	assert.Equal(t, selfAddr, instr.Owner)

	available, err := env.engine.IsTokenAvailable("0")
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, uint64(1), env.tokenCount())
}

func TestMintToThirdPartyExcludedFromSale(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.engine.Mint(env.ctx(ownerAddr), []sale.MintItem{
		{TokenID: "0"},
		{TokenID: "1", Owner: "team"},
	})
	require.NoError(t, err)
	env.dispatch(resp)

	available, err := env.engine.IsTokenAvailable("1")
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, uint64(1), env.tokenCount())

	owner, err := env.reg.OwnerOf("1")
	require.NoError(t, err)
	assert.Equal(t, "team", owner)
}

func TestMintMultiple(t *testing.T) {
	env := newTestEnv(t)
	env.mint(seqIDs(4)...)

	ids, err := env.engine.ListAvailableTokens("", nil)
	require.NoError(t, err)
	assert.Equal(t, seqIDs(4), ids)
	assert.Equal(t, uint64(4), env.tokenCount())
}

func TestMintDuplicateTokenID(t *testing.T) {
	env := newTestEnv(t)
	env.mint("0")
	_, err := env.engine.Mint(env.ctx(ownerAddr), []sale.MintItem{{TokenID: "0"}})
	assert.Error(t, err)
}

func TestMintDuringSale(t *testing.T) {
	env := newTestEnv(t)
	env.mint("0")
	env.startSale(1, 1)

	_, err := env.engine.Mint(env.ctx(ownerAddr), []sale.MintItem{{TokenID: "1"}})
	assert.ErrorIs(t, err, ErrSaleStarted)
}

func TestMintAfterSaleConducted(t *testing.T) {
	run := func(t *testing.T, canMintAfterSale bool) error {
		env := newTestEnv(t)
		require.NoError(t, env.engine.Setup(sale.Config{
			TokenAddress:     regAddr,
			CanMintAfterSale: canMintAfterSale,
		}))

		env.mint("0")
		env.startSale(1, 1)
		env.buy("buyer", 1, 100)
		env.advance(2 * time.Hour)
		env.settle(nil)

		_, err := env.engine.Mint(env.ctx(ownerAddr), []sale.MintItem{{TokenID: "1"}})
		return err
	}

	t.Run("disallowed", func(t *testing.T) {
		assert.ErrorIs(t, run(t, false), ErrCannotMintAfterSaleConducted)
	})
	t.Run("allowed", func(t *testing.T) {
		assert.NoError(t, run(t, true))
	})
}

func TestUpdateAssetRegistry(t *testing.T) {
	env := newTestEnv(t)

	t.Run("unauthorized", func(t *testing.T) {
		_, err := env.engine.UpdateAssetRegistry(env.ctx("anyone"), regAddr)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown registry", func(t *testing.T) {
		_, err := env.engine.UpdateAssetRegistry(env.ctx(ownerAddr), "nowhere")
		assert.ErrorIs(t, err, ErrInvalidRegistry)
	})

	t.Run("successful", func(t *testing.T) {
		_, err := env.engine.UpdateAssetRegistry(env.ctx(ownerAddr), regAddr)
		require.NoError(t, err)
		cfg, err := env.engine.GetSaleConfig()
		require.NoError(t, err)
		assert.Equal(t, regAddr, cfg.TokenAddress)
	})

	t.Run("refused after minting", func(t *testing.T) {
		env.mint("0")
		_, err := env.engine.UpdateAssetRegistry(env.ctx(ownerAddr), regAddr)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
