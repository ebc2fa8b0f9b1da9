package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCents(t *testing.T) {
	cases := map[string]int64{
		"0":      0,
		"0.10":   10,
		"25.00":  2500,
		"50.30":  5030,
		"199.99": 19999,
	}
	for in, want := range cases {
		d := decimal.RequireFromString(in)
		assert.Equal(t, want, toCents(d), in)
		assert.True(t, fromCents(want).Equal(d), in)
	}
}

func TestErrorCodes(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isRetryable(errors.New("connection reset")))
}

func TestProductListQuery(t *testing.T) {
	q, args := productListQuery(entities.ProductFilter{})
	assert.Empty(t, args)
	assert.NotContains(t, q, "WHERE")
	assert.True(t, strings.HasSuffix(q, "ORDER BY name ASC, name, id"), q)

	q, args = productListQuery(entities.ProductFilter{Search: "catan", Sort: "-unit_price"})
	assert.Equal(t, []any{"catan"}, args)
	assert.Contains(t, q, "strpos(lower(category), lower($1))")
	assert.True(t, strings.HasSuffix(q, "ORDER BY unit_price_cents DESC, name, id"), q)

	q, _ = productListQuery(entities.ProductFilter{Sort: "name; DROP TABLE products"})
	assert.NotContains(t, q, "DROP")
}

type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (f *fakeTx) Commit(context.Context) error {
	f.commits++
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rollbacks++
	return nil
}

type fakeBeginner struct {
	tx     *fakeTx
	begins int
}

func (f *fakeBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	f.begins++
	return f.tx, nil
}

func TestUnitOfWork_RetriesDeadlocks(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	runs := 0
	err := newUnitOfWork(db, 3).WithinTx(context.Background(), func(context.Context, interfaces.ITx) error {
		runs++
		if runs == 1 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, db.begins)
	assert.Equal(t, 1, db.tx.commits)
}

func TestUnitOfWork_GivesUp(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	err := newUnitOfWork(db, 2).WithinTx(context.Background(), func(context.Context, interfaces.ITx) error {
		return &pgconn.PgError{Code: "40001"}
	})
	assert.ErrorIs(t, err, entities.ErrConcurrentUpdate)
	assert.Equal(t, 2, db.begins)
	assert.Equal(t, 0, db.tx.commits)
	assert.Equal(t, 2, db.tx.rollbacks)
}

func TestUnitOfWork_DomainErrorRollsBack(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	err := newUnitOfWork(db, 3).WithinTx(context.Background(), func(context.Context, interfaces.ITx) error {
		return entities.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, entities.ErrInsufficientStock)
	assert.Equal(t, 1, db.begins)
	assert.Equal(t, 1, db.tx.rollbacks)
}
