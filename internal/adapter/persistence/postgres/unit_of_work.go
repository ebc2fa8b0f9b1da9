package postgres

import (
	"context"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5"
)

const defaultMaxAttempts = 3

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// UnitOfWork runs each closure in a READ COMMITTED transaction with row locks.
// Deadlocks and serialization failures re-run the closure up to maxAttempts times.
type UnitOfWork struct {
	db          txBeginner
	maxAttempts int
}

var _ interfaces.IUnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(s *Store, maxAttempts int) *UnitOfWork {
	return newUnitOfWork(s.pool, maxAttempts)
}

func newUnitOfWork(db txBeginner, maxAttempts int) *UnitOfWork {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &UnitOfWork{db: db, maxAttempts: maxAttempts}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.ITx) error) error {
	for attempt := 1; ; attempt++ {
		err := u.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt >= u.maxAttempts {
			return entities.ErrConcurrentUpdate
		}
	}
}

func (u *UnitOfWork) runOnce(ctx context.Context, fn func(ctx context.Context, tx interfaces.ITx) error) error {
	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

var _ interfaces.ITx = (*pgTx)(nil)

func (t *pgTx) GetProduct(ctx context.Context, id string) (entities.Product, error) {
	return selectProduct(ctx, t.tx, id, true)
}

// GetClient holds a KEY SHARE lock on the client until the sale commits.
func (t *pgTx) GetClient(ctx context.Context, id string) (entities.Client, error) {
	return selectClient(ctx, t.tx, id, true)
}

func (t *pgTx) SetProductQuantity(ctx context.Context, id string, expected, next int) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE products SET quantity = $3, updated_at = NOW()
		WHERE id = $1 AND quantity = $2
	`, id, expected, next)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrConcurrentUpdate
	}
	return nil
}

func (t *pgTx) GetSale(ctx context.Context, id string) (entities.Sale, error) {
	return selectSale(ctx, t.tx, id, true)
}

func (t *pgTx) InsertSale(ctx context.Context, s entities.Sale) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, s.ID, s.ClientID, s.SellerID, string(s.PaymentMethod), string(s.PaymentStatus), string(s.Status), toCents(s.Total),
		s.PaymentReference, s.IdempotencyKey, s.CreatedAt, s.UpdatedAt, s.CancelledAt, s.CancelledBy, s.CancelNote, s.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return errSaleExists
		}
		return err
	}
	return t.insertItems(ctx, s)
}

func (t *pgTx) UpdateSale(ctx context.Context, s entities.Sale, expectedVersion int64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE sales SET
			payment_status = $2, status = $3, total_cents = $4, updated_at = $5,
			cancelled_at = $6, cancelled_by = $7, cancel_note = $8, version = $9
		WHERE id = $1 AND version = $10
	`, s.ID, string(s.PaymentStatus), string(s.Status), toCents(s.Total), s.UpdatedAt,
		s.CancelledAt, s.CancelledBy, s.CancelNote, s.Version, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return entities.ErrSaleNotFound
		}
		return entities.ErrConcurrentUpdate
	}

	if _, err := t.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, s.ID); err != nil {
		return err
	}
	return t.insertItems(ctx, s)
}

func (t *pgTx) insertItems(ctx context.Context, s entities.Sale) error {
	for i, it := range s.Items {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, position, product_id, product_name, quantity, unit_price_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, it.ID, s.ID, i, it.ProductID, it.ProductName, it.Quantity, toCents(it.UnitPrice))
		if err != nil {
			return err
		}
	}
	return nil
}
