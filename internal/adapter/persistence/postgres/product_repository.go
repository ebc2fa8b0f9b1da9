package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5"
)

const productColumns = `id, name, barcode, description, category, unit_price_cents, quantity, created_at, updated_at`

type ProductRepository struct {
	db querier
}

var _ interfaces.IProductRepository = (*ProductRepository)(nil)

func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{db: s.pool}
}

func (r *ProductRepository) Create(ctx context.Context, p entities.Product) (entities.Product, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, p.ID, p.Name, p.Barcode, p.Description, p.Category, toCents(p.UnitPrice), p.Quantity, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.Product{}, entities.ErrProductExists
		}
		return entities.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	return selectProduct(ctx, r.db, id, false)
}

func (r *ProductRepository) List(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error) {
	q, args := productListQuery(filter)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []entities.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) UpdateDetails(ctx context.Context, id string, d entities.ProductDetails, now time.Time) (entities.Product, error) {
	var price *int64
	if d.UnitPrice != nil {
		c := toCents(*d.UnitPrice)
		price = &c
	}
	row := r.db.QueryRow(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			barcode = COALESCE($3, barcode),
			description = COALESCE($4, description),
			category = COALESCE($5, category),
			unit_price_cents = COALESCE($6, unit_price_cents),
			updated_at = $7
		WHERE id = $1
		RETURNING `+productColumns,
		id, d.Name, d.Barcode, d.Description, d.Category, price, now)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Product{}, nil
	}
	return p, err
}

var productOrderColumns = map[string]string{
	"":                            "name",
	entities.ProductSortName:      "name",
	entities.ProductSortUnitPrice: "unit_price_cents",
	entities.ProductSortQuantity:  "quantity",
	entities.ProductSortCategory:  "category",
}

// productListQuery builds the catalog listing. The ORDER BY column comes from a fixed set, never
// from the caller; unknown orderings fall back to name.
func productListQuery(filter entities.ProductFilter) (string, []any) {
	q := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if filter.Search != "" {
		args = append(args, filter.Search)
		q += ` WHERE strpos(lower(name), lower($1)) > 0
			OR strpos(lower(barcode), lower($1)) > 0
			OR strpos(lower(description), lower($1)) > 0
			OR strpos(lower(category), lower($1)) > 0`
	}
	col, ok := productOrderColumns[strings.TrimPrefix(filter.Sort, "-")]
	if !ok {
		col = "name"
	}
	dir := "ASC"
	if strings.HasPrefix(filter.Sort, "-") {
		dir = "DESC"
	}
	q += ` ORDER BY ` + col + ` ` + dir + `, name, id`
	return q, args
}

func selectProduct(ctx context.Context, db querier, id string, lock bool) (entities.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if lock {
		q += ` FOR UPDATE`
	}
	p, err := scanProduct(db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Product{}, nil
	}
	return p, err
}

func scanProduct(row pgx.Row) (entities.Product, error) {
	var (
		p     entities.Product
		cents int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Barcode, &p.Description, &p.Category, &cents, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return entities.Product{}, err
	}
	p.UnitPrice = fromCents(cents)
	return p, nil
}
