package state

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/mintforge/crowdsale-go/sale"
)

var (
	bucketMeta      = []byte("meta")
	bucketAvailable = []byte("available_tokens")
	bucketPurchases = []byte("purchases")
)

var (
	keyConfig        = []byte("config")
	keySaleState     = []byte("sale_state")
	keySaleConducted = []byte("sale_conducted")
	keyTokenCount    = []byte("token_count")
)

// BoltStore wraps a bbolt database holding the five sale stores. Each
// Update call maps to one bolt write transaction, so a failed engine call
// commits nothing.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface checks.
var (
	_ Store = (*BoltStore)(nil)
	_ View  = (*boltView)(nil)
)

// OpenBoltStore opens or creates the bbolt database at dbPath. The parent
// directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("state: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("state: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketAvailable, bucketPurchases} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Update runs fn in a writable bolt transaction.
func (s *BoltStore) Update(fn func(View) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltView{tx: tx})
	})
}

// View runs fn in a read-only bolt transaction.
func (s *BoltStore) View(fn func(View) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltView{tx: tx})
	})
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

type boltView struct {
	tx *bbolt.Tx
}

func (v *boltView) Config() (*sale.Config, error) {
	data := v.tx.Bucket(bucketMeta).Get(keyConfig)
	if data == nil {
		return nil, ErrConfigNotFound
	}
	var cfg sale.Config
	if err := decodeGob(data, &cfg); err != nil {
		return nil, fmt.Errorf("boltstore: decode config: %w", err)
	}
	return &cfg, nil
}

func (v *boltView) SetConfig(cfg *sale.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config", ErrNilParam)
	}
	data, err := encodeGob(cfg)
	if err != nil {
		return fmt.Errorf("boltstore: encode config: %w", err)
	}
	return v.tx.Bucket(bucketMeta).Put(keyConfig, data)
}

func (v *boltView) SaleConducted() (bool, error) {
	data := v.tx.Bucket(bucketMeta).Get(keySaleConducted)
	if data == nil {
		return false, nil
	}
	return len(data) == 1 && data[0] == 1, nil
}

func (v *boltView) SetSaleConducted(conducted bool) error {
	val := []byte{0}
	if conducted {
		val[0] = 1
	}
	return v.tx.Bucket(bucketMeta).Put(keySaleConducted, val)
}

func (v *boltView) SaleState() (*sale.State, error) {
	data := v.tx.Bucket(bucketMeta).Get(keySaleState)
	if data == nil {
		return nil, ErrSaleStateNotFound
	}
	var st sale.State
	if err := decodeGob(data, &st); err != nil {
		return nil, fmt.Errorf("boltstore: decode sale state: %w", err)
	}
	return &st, nil
}

func (v *boltView) SetSaleState(st *sale.State) error {
	if st == nil {
		return fmt.Errorf("%w: sale state", ErrNilParam)
	}
	data, err := encodeGob(st)
	if err != nil {
		return fmt.Errorf("boltstore: encode sale state: %w", err)
	}
	return v.tx.Bucket(bucketMeta).Put(keySaleState, data)
}

func (v *boltView) DeleteSaleState() error {
	return v.tx.Bucket(bucketMeta).Delete(keySaleState)
}

func (v *boltView) AddAvailableToken(id string) error {
	if id == "" {
		return ErrEmptyKey
	}
	b := v.tx.Bucket(bucketAvailable)
	if b.Get([]byte(id)) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, id)
	}
	return b.Put([]byte(id), []byte{1})
}

func (v *boltView) RemoveAvailableToken(id string) error {
	b := v.tx.Bucket(bucketAvailable)
	if b.Get([]byte(id)) == nil {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	return b.Delete([]byte(id))
}

func (v *boltView) HasAvailableToken(id string) (bool, error) {
	return v.tx.Bucket(bucketAvailable).Get([]byte(id)) != nil, nil
}

func (v *boltView) AvailableTokens(startAfter string, limit int) ([]string, error) {
	var ids []string
	c := v.tx.Bucket(bucketAvailable).Cursor()
	var k []byte
	if startAfter == "" {
		k, _ = c.First()
	} else {
		k, _ = c.Seek([]byte(startAfter))
		if k != nil && bytes.Equal(k, []byte(startAfter)) {
			k, _ = c.Next()
		}
	}
	for ; k != nil; k, _ = c.Next() {
		if limit >= 0 && len(ids) == limit {
			break
		}
		ids = append(ids, string(k))
	}
	return ids, nil
}

func (v *boltView) TokenCount() (uint64, error) {
	data := v.tx.Bucket(bucketMeta).Get(keyTokenCount)
	if data == nil {
		return 0, nil
	}
	var n uint64
	if err := decodeGob(data, &n); err != nil {
		return 0, fmt.Errorf("boltstore: decode token count: %w", err)
	}
	return n, nil
}

func (v *boltView) SetTokenCount(n uint64) error {
	data, err := encodeGob(n)
	if err != nil {
		return fmt.Errorf("boltstore: encode token count: %w", err)
	}
	return v.tx.Bucket(bucketMeta).Put(keyTokenCount, data)
}

func (v *boltView) Purchases(purchaser string) ([]sale.Purchase, error) {
	data := v.tx.Bucket(bucketPurchases).Get([]byte(purchaser))
	if data == nil {
		return nil, nil
	}
	var row []sale.Purchase
	if err := decodeGob(data, &row); err != nil {
		return nil, fmt.Errorf("boltstore: decode purchases: %w", err)
	}
	return row, nil
}

func (v *boltView) SetPurchases(purchaser string, purchases []sale.Purchase) error {
	if purchaser == "" {
		return ErrEmptyKey
	}
	b := v.tx.Bucket(bucketPurchases)
	if len(purchases) == 0 {
		return b.Delete([]byte(purchaser))
	}
	data, err := encodeGob(purchases)
	if err != nil {
		return fmt.Errorf("boltstore: encode purchases: %w", err)
	}
	return b.Put([]byte(purchaser), data)
}

func (v *boltView) DeletePurchases(purchaser string) error {
	return v.tx.Bucket(bucketPurchases).Delete([]byte(purchaser))
}

func (v *boltView) Purchasers(limit int) ([]string, error) {
	var keys []string
	c := v.tx.Bucket(bucketPurchases).Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if limit >= 0 && len(keys) == limit {
			break
		}
		keys = append(keys, string(k))
	}
	return keys, nil
}

func (v *boltView) FlattenedPurchases(limit int) ([]sale.Purchase, error) {
	var out []sale.Purchase
	c := v.tx.Bucket(bucketPurchases).Cursor()
	for k, data := c.First(); k != nil; k, data = c.Next() {
		var row []sale.Purchase
		if err := decodeGob(data, &row); err != nil {
			return nil, fmt.Errorf("boltstore: decode purchases for %q: %w", k, err)
		}
		for _, p := range row {
			out = append(out, p)
			if limit >= 0 && len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}
