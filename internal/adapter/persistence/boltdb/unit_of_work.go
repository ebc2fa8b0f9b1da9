package boltdb

import (
	"context"
	"errors"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	bolt "github.com/boltdb/bolt"
)

var errSaleExists = errors.New("sale already exists")

// UnitOfWork runs each closure inside one bolt read-write transaction. Returning an error from
// the closure rolls every write back.
type UnitOfWork struct {
	db *bolt.DB
}

var _ interfaces.IUnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(s *Store) *UnitOfWork {
	return &UnitOfWork{db: s.db}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.ITx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return u.db.Update(func(btx *bolt.Tx) error {
		if err := fn(ctx, &boltTx{tx: btx}); err != nil {
			return err
		}
		// a deadline hit while the closure ran still aborts the commit
		return ctx.Err()
	})
}

type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) GetProduct(_ context.Context, id string) (entities.Product, error) {
	var p entities.Product
	if _, err := getJSON(t.tx.Bucket(productsBucket), id, &p); err != nil {
		return entities.Product{}, err
	}
	return p, nil
}

func (t *boltTx) GetClient(_ context.Context, id string) (entities.Client, error) {
	var c entities.Client
	if _, err := getJSON(t.tx.Bucket(clientsBucket), id, &c); err != nil {
		return entities.Client{}, err
	}
	return c, nil
}

func (t *boltTx) SetProductQuantity(_ context.Context, id string, expected, next int) error {
	b := t.tx.Bucket(productsBucket)
	var p entities.Product
	found, err := getJSON(b, id, &p)
	if err != nil {
		return err
	}
	if !found {
		return entities.ErrProductNotFound
	}
	if p.Quantity != expected {
		return entities.ErrConcurrentUpdate
	}
	p.Quantity = next
	p.UpdatedAt = time.Now().UTC()
	return putJSON(b, id, p)
}

func (t *boltTx) GetSale(_ context.Context, id string) (entities.Sale, error) {
	var s entities.Sale
	if _, err := getJSON(t.tx.Bucket(salesBucket), id, &s); err != nil {
		return entities.Sale{}, err
	}
	return s, nil
}

func (t *boltTx) InsertSale(_ context.Context, s entities.Sale) error {
	b := t.tx.Bucket(salesBucket)
	if b.Get([]byte(s.ID)) != nil {
		return errSaleExists
	}
	return putJSON(b, s.ID, s)
}

func (t *boltTx) UpdateSale(_ context.Context, s entities.Sale, expectedVersion int64) error {
	b := t.tx.Bucket(salesBucket)
	var current entities.Sale
	found, err := getJSON(b, s.ID, &current)
	if err != nil {
		return err
	}
	if !found {
		return entities.ErrSaleNotFound
	}
	if current.Version != expectedVersion {
		return entities.ErrConcurrentUpdate
	}
	return putJSON(b, s.ID, s)
}
