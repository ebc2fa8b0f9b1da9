package boltdb

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	bolt "github.com/boltdb/bolt"
)

// ClientRepository keeps clients by id and a cpf -> id index for uniqueness.
type ClientRepository struct {
	db *bolt.DB
}

var _ interfaces.IClientRepository = (*ClientRepository)(nil)

func NewClientRepository(s *Store) *ClientRepository {
	return &ClientRepository{db: s.db}
}

func (r *ClientRepository) Create(ctx context.Context, c entities.Client) (entities.Client, error) {
	if err := ctx.Err(); err != nil {
		return entities.Client{}, err
	}
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(clientsBucket)
		if b.Get([]byte(c.ID)) != nil {
			return entities.ErrClientExists
		}
		if c.CPF != "" {
			idx := tx.Bucket(clientCPFsBucket)
			if idx.Get([]byte(c.CPF)) != nil {
				return entities.ErrClientExists
			}
			if err := idx.Put([]byte(c.CPF), []byte(c.ID)); err != nil {
				return err
			}
		}
		return putJSON(b, c.ID, c)
	})
	if err != nil {
		return entities.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (entities.Client, error) {
	if err := ctx.Err(); err != nil {
		return entities.Client{}, err
	}
	var c entities.Client
	err := r.db.View(func(tx *bolt.Tx) error {
		_, err := getJSON(tx.Bucket(clientsBucket), id, &c)
		return err
	})
	if err != nil {
		return entities.Client{}, err
	}
	return c, nil
}

// List returns the matching clients ordered by name.
func (r *ClientRepository) List(ctx context.Context, filter entities.ClientFilter) ([]entities.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clients := []entities.Client{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(clientsBucket).ForEach(func(_, v []byte) error {
			var c entities.Client
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if filter.Matches(c) {
				clients = append(clients, c)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (r *ClientRepository) UpdateDetails(ctx context.Context, id string, d entities.ClientDetails, now time.Time) (entities.Client, error) {
	if err := ctx.Err(); err != nil {
		return entities.Client{}, err
	}
	var c entities.Client
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(clientsBucket)
		found, err := getJSON(b, id, &c)
		if err != nil || !found {
			return err
		}
		d.Apply(&c)
		c.UpdatedAt = now
		return putJSON(b, id, c)
	})
	if err != nil {
		return entities.Client{}, err
	}
	return c, nil
}
