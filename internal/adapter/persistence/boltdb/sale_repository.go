package boltdb

import (
	"context"
	"encoding/json"
	"sort"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	bolt "github.com/boltdb/bolt"
)

type SaleRepository struct {
	db *bolt.DB
}

var _ interfaces.ISaleRepository = (*SaleRepository)(nil)

func NewSaleRepository(s *Store) *SaleRepository {
	return &SaleRepository{db: s.db}
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (entities.Sale, error) {
	if err := ctx.Err(); err != nil {
		return entities.Sale{}, err
	}
	var s entities.Sale
	err := r.db.View(func(tx *bolt.Tx) error {
		_, err := getJSON(tx.Bucket(salesBucket), id, &s)
		return err
	})
	if err != nil {
		return entities.Sale{}, err
	}
	return s, nil
}

// List returns the sales matching filter, newest first.
func (r *SaleRepository) List(ctx context.Context, filter entities.SaleFilter) ([]entities.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sales := []entities.Sale{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(salesBucket).ForEach(func(_, v []byte) error {
			var s entities.Sale
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			if filter.Matches(s) {
				sales = append(sales, s)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].CreatedAt.After(sales[j].CreatedAt) })
	return sales, nil
}
