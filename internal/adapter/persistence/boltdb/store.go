// Package boltdb keeps products, clients and sales in an embedded BoltDB file. Bolt allows a single
// writer at a time, so every unit of work is naturally serialized; it is meant for local runs,
// single-terminal installs and tests.
package boltdb

import (
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"
)

var (
	productsBucket   = []byte("products")
	salesBucket      = []byte("sales")
	clientsBucket    = []byte("clients")
	clientCPFsBucket = []byte("client_cpfs")
)

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database file at path and ensures the buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{productsBucket, salesBucket, clientsBucket, clientCPFsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func getJSON(b *bolt.Bucket, id string, out any) (bool, error) {
	v := b.Get([]byte(id))
	if v == nil {
		return false, nil
	}
	return true, json.Unmarshal(v, out)
}

func putJSON(b *bolt.Bucket, id string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return b.Put([]byte(id), data)
}
