package state

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintforge/crowdsale-go/sale"
)

// openStores returns all Store implementations under test.
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	bolt, err := OpenBoltStore(filepath.Join(t.TempDir(), "sale.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]Store{
		"mem":  NewMemStore(),
		"bolt": bolt,
	}
}

func purchase(id, purchaser string, tax uint64) sale.Purchase {
	return sale.Purchase{TokenID: id, TaxAmount: tax, Purchaser: purchaser}
}

func TestConfigRoundTrip(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.View(func(v View) error {
				_, err := v.Config()
				assert.ErrorIs(t, err, ErrConfigNotFound)
				return nil
			})
			require.NoError(t, err)

			cfg := &sale.Config{TokenAddress: "registry0", CanMintAfterSale: true}
			require.NoError(t, store.Update(func(v View) error {
				return v.SetConfig(cfg)
			}))

			require.NoError(t, store.View(func(v View) error {
				got, err := v.Config()
				require.NoError(t, err)
				assert.Equal(t, cfg, got)
				return nil
			}))
		})
	}
}

func TestSaleStateLifecycle(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.View(func(v View) error {
				_, err := v.SaleState()
				assert.ErrorIs(t, err, ErrSaleStateNotFound)
				return nil
			}))

			st := &sale.State{
				EndTime:            sale.Milliseconds(1000),
				Price:              sale.NewCoin(100, "uandr"),
				MinTokensSold:      2,
				MaxAmountPerWallet: 3,
				AmountSold:         1,
				AmountToSend:       90,
				Recipient:          sale.NewDirectRecipient("seller"),
			}
			require.NoError(t, store.Update(func(v View) error {
				return v.SetSaleState(st)
			}))

			require.NoError(t, store.View(func(v View) error {
				got, err := v.SaleState()
				require.NoError(t, err)
				assert.Equal(t, st, got)
				return nil
			}))

			require.NoError(t, store.Update(func(v View) error {
				return v.DeleteSaleState()
			}))
			require.NoError(t, store.View(func(v View) error {
				_, err := v.SaleState()
				assert.ErrorIs(t, err, ErrSaleStateNotFound)
				return nil
			}))
		})
	}
}

func TestSaleConductedFlag(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.View(func(v View) error {
				conducted, err := v.SaleConducted()
				require.NoError(t, err)
				assert.False(t, conducted)
				return nil
			}))

			require.NoError(t, store.Update(func(v View) error {
				return v.SetSaleConducted(true)
			}))
			require.NoError(t, store.View(func(v View) error {
				conducted, err := v.SaleConducted()
				require.NoError(t, err)
				assert.True(t, conducted)
				return nil
			}))
		})
	}
}

func TestAvailableTokens(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Update(func(v View) error {
				for _, id := range []string{"c", "a", "b", "d"} {
					require.NoError(t, v.AddAvailableToken(id))
				}
				assert.ErrorIs(t, v.AddAvailableToken("a"), ErrDuplicateToken)
				assert.ErrorIs(t, v.AddAvailableToken(""), ErrEmptyKey)
				return nil
			}))

			require.NoError(t, store.View(func(v View) error {
				has, err := v.HasAvailableToken("b")
				require.NoError(t, err)
				assert.True(t, has)

				// Ascending regardless of insertion order.
				ids, err := v.AvailableTokens("", -1)
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b", "c", "d"}, ids)

				ids, err = v.AvailableTokens("", 2)
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b"}, ids)

				// startAfter is exclusive and restartable.
				ids, err = v.AvailableTokens("b", 2)
				require.NoError(t, err)
				assert.Equal(t, []string{"c", "d"}, ids)
				return nil
			}))

			require.NoError(t, store.Update(func(v View) error {
				require.NoError(t, v.RemoveAvailableToken("b"))
				assert.ErrorIs(t, v.RemoveAvailableToken("b"), ErrTokenNotFound)
				return nil
			}))
		})
	}
}

func TestTokenCount(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.View(func(v View) error {
				n, err := v.TokenCount()
				require.NoError(t, err)
				assert.Zero(t, n)
				return nil
			}))
			require.NoError(t, store.Update(func(v View) error {
				return v.SetTokenCount(7)
			}))
			require.NoError(t, store.View(func(v View) error {
				n, err := v.TokenCount()
				require.NoError(t, err)
				assert.Equal(t, uint64(7), n)
				return nil
			}))
		})
	}
}

func TestPurchases(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Update(func(v View) error {
				require.NoError(t, v.SetPurchases("buyerB", []sale.Purchase{
					purchase("3", "buyerB", 50),
					purchase("4", "buyerB", 50),
				}))
				require.NoError(t, v.SetPurchases("buyerA", []sale.Purchase{
					purchase("1", "buyerA", 0),
				}))
				require.NoError(t, v.SetPurchases("buyerC", []sale.Purchase{
					purchase("5", "buyerC", 0),
				}))
				return nil
			}))

			require.NoError(t, store.View(func(v View) error {
				row, err := v.Purchases("buyerB")
				require.NoError(t, err)
				require.Len(t, row, 2)
				// Insertion order preserved.
				assert.Equal(t, "3", row[0].TokenID)
				assert.Equal(t, "4", row[1].TokenID)

				row, err = v.Purchases("unknown")
				require.NoError(t, err)
				assert.Nil(t, row)

				keys, err := v.Purchasers(-1)
				require.NoError(t, err)
				assert.Equal(t, []string{"buyerA", "buyerB", "buyerC"}, keys)

				keys, err = v.Purchasers(2)
				require.NoError(t, err)
				assert.Equal(t, []string{"buyerA", "buyerB"}, keys)

				flat, err := v.FlattenedPurchases(-1)
				require.NoError(t, err)
				require.Len(t, flat, 4)
				assert.Equal(t, []string{"1", "3", "4", "5"}, tokenIDs(flat))

				flat, err = v.FlattenedPurchases(3)
				require.NoError(t, err)
				assert.Equal(t, []string{"1", "3", "4"}, tokenIDs(flat))
				return nil
			}))

			// Storing an empty row deletes it.
			require.NoError(t, store.Update(func(v View) error {
				return v.SetPurchases("buyerB", nil)
			}))
			require.NoError(t, store.View(func(v View) error {
				keys, err := v.Purchasers(-1)
				require.NoError(t, err)
				assert.Equal(t, []string{"buyerA", "buyerC"}, keys)
				return nil
			}))

			require.NoError(t, store.Update(func(v View) error {
				return v.DeletePurchases("buyerA")
			}))
			require.NoError(t, store.View(func(v View) error {
				keys, err := v.Purchasers(-1)
				require.NoError(t, err)
				assert.Equal(t, []string{"buyerC"}, keys)
				return nil
			}))
		})
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	boom := errors.New("boom")
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Update(func(v View) error {
				return v.SetTokenCount(3)
			}))

			err := store.Update(func(v View) error {
				require.NoError(t, v.SetTokenCount(99))
				require.NoError(t, v.AddAvailableToken("x"))
				require.NoError(t, v.SetSaleConducted(true))
				return boom
			})
			assert.ErrorIs(t, err, boom)

			require.NoError(t, store.View(func(v View) error {
				n, err := v.TokenCount()
				require.NoError(t, err)
				assert.Equal(t, uint64(3), n)

				has, err := v.HasAvailableToken("x")
				require.NoError(t, err)
				assert.False(t, has)

				conducted, err := v.SaleConducted()
				require.NoError(t, err)
				assert.False(t, conducted)
				return nil
			}))
		})
	}
}

func tokenIDs(purchases []sale.Purchase) []string {
	ids := make([]string, len(purchases))
	for i, p := range purchases {
		ids[i] = p.TokenID
	}
	return ids
}
