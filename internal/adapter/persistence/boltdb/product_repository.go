package boltdb

import (
	"context"
	"encoding/json"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	bolt "github.com/boltdb/bolt"
)

type ProductRepository struct {
	db *bolt.DB
}

var _ interfaces.IProductRepository = (*ProductRepository)(nil)

func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{db: s.db}
}

func (r *ProductRepository) Create(ctx context.Context, p entities.Product) (entities.Product, error) {
	if err := ctx.Err(); err != nil {
		return entities.Product{}, err
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productsBucket)
		if b.Get([]byte(p.ID)) != nil {
			return entities.ErrProductExists
		}
		return putJSON(b, p.ID, p)
	})
	if err != nil {
		return entities.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	if err := ctx.Err(); err != nil {
		return entities.Product{}, err
	}
	var p entities.Product
	err := r.db.View(func(tx *bolt.Tx) error {
		_, err := getJSON(tx.Bucket(productsBucket), id, &p)
		return err
	})
	if err != nil {
		return entities.Product{}, err
	}
	return p, nil
}

// List scans the bucket and filters in memory.
func (r *ProductRepository) List(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products := []entities.Product{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(productsBucket).ForEach(func(_, v []byte) error {
			var p entities.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			if filter.Matches(p) {
				products = append(products, p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	entities.SortProducts(products, filter.Sort)
	return products, nil
}

func (r *ProductRepository) UpdateDetails(ctx context.Context, id string, d entities.ProductDetails, now time.Time) (entities.Product, error) {
	if err := ctx.Err(); err != nil {
		return entities.Product{}, err
	}
	var p entities.Product
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productsBucket)
		found, err := getJSON(b, id, &p)
		if err != nil || !found {
			return err
		}
		d.Apply(&p)
		p.UpdatedAt = now
		return putJSON(b, id, p)
	})
	if err != nil {
		return entities.Product{}, err
	}
	return p, nil
}
