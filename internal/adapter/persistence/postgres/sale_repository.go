package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5"
)

const saleColumns = `id, client_id, seller_id, payment_method, payment_status, status, total_cents,
	payment_reference, idempotency_key, created_at, updated_at, cancelled_at, cancelled_by, cancel_note, version`

type SaleRepository struct {
	db querier
}

var _ interfaces.ISaleRepository = (*SaleRepository)(nil)

func NewSaleRepository(s *Store) *SaleRepository {
	return &SaleRepository{db: s.pool}
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (entities.Sale, error) {
	return selectSale(ctx, r.db, id, false)
}

// List returns sales newest first, optionally filtered by seller and status.
func (r *SaleRepository) List(ctx context.Context, filter entities.SaleFilter) ([]entities.Sale, error) {
	var (
		where []string
		args  []any
	)
	if filter.SellerID != "" {
		args = append(args, filter.SellerID)
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	q := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	sales := []entities.Sale{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[s.ID] = len(sales)
		ids = append(ids, s.ID)
		sales = append(sales, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return sales, nil
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT sale_id, id, product_id, product_name, quantity, unit_price_cents
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			saleID string
			it     entities.SaleItem
			cents  int64
		)
		if err := itemRows.Scan(&saleID, &it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &cents); err != nil {
			return nil, err
		}
		it.UnitPrice = fromCents(cents)
		i := index[saleID]
		sales[i].Items = append(sales[i].Items, it)
	}
	return sales, itemRows.Err()
}

func selectSale(ctx context.Context, db querier, id string, lock bool) (entities.Sale, error) {
	q := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	if lock {
		q += ` FOR UPDATE`
	}
	s, err := scanSale(db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Sale{}, nil
	}
	if err != nil {
		return entities.Sale{}, err
	}

	rows, err := db.Query(ctx, `
		SELECT id, product_id, product_name, quantity, unit_price_cents
		FROM sale_items WHERE sale_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return entities.Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it    entities.SaleItem
			cents int64
		)
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &cents); err != nil {
			return entities.Sale{}, err
		}
		it.UnitPrice = fromCents(cents)
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

func scanSale(row pgx.Row) (entities.Sale, error) {
	var (
		s          entities.Sale
		totalCents int64
		method     string
		payStatus  string
		status     string
	)
	err := row.Scan(&s.ID, &s.ClientID, &s.SellerID, &method, &payStatus, &status, &totalCents,
		&s.PaymentReference, &s.IdempotencyKey, &s.CreatedAt, &s.UpdatedAt, &s.CancelledAt, &s.CancelledBy, &s.CancelNote, &s.Version)
	if err != nil {
		return entities.Sale{}, err
	}
	s.PaymentMethod = entities.PaymentMethod(method)
	s.PaymentStatus = entities.PaymentStatus(payStatus)
	s.Status = entities.SaleStatus(status)
	s.Total = fromCents(totalCents)
	return s, nil
}
