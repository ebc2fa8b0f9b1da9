package postgres

import (
	"context"
	"errors"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, name, COALESCE(cpf, ''), email, phone, city, created_at, updated_at`

type ClientRepository struct {
	db querier
}

var _ interfaces.IClientRepository = (*ClientRepository)(nil)

func NewClientRepository(s *Store) *ClientRepository {
	return &ClientRepository{db: s.pool}
}

func (r *ClientRepository) Create(ctx context.Context, c entities.Client) (entities.Client, error) {
	var cpf *string
	if c.CPF != "" {
		cpf = &c.CPF
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO clients (id, name, cpf, email, phone, city, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, c.ID, c.Name, cpf, c.Email, c.Phone, c.City, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.Client{}, entities.ErrClientExists
		}
		return entities.Client{}, err
	}
	return c, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (entities.Client, error) {
	return selectClient(ctx, r.db, id, false)
}

func (r *ClientRepository) List(ctx context.Context, filter entities.ClientFilter) ([]entities.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients`
	var args []any
	if filter.Search != "" {
		args = append(args, filter.Search)
		q += ` WHERE strpos(lower(name), lower($1)) > 0
			OR strpos(COALESCE(cpf, ''), $1) > 0
			OR strpos(lower(email), lower($1)) > 0
			OR strpos(lower(city), lower($1)) > 0`
	}
	q += ` ORDER BY name, id`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []entities.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) UpdateDetails(ctx context.Context, id string, d entities.ClientDetails, now time.Time) (entities.Client, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE clients SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			city = COALESCE($5, city),
			updated_at = $6
		WHERE id = $1
		RETURNING `+clientColumns,
		id, d.Name, d.Email, d.Phone, d.City, now)
	c, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Client{}, nil
	}
	return c, err
}

func selectClient(ctx context.Context, db querier, id string, lock bool) (entities.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	if lock {
		q += ` FOR KEY SHARE`
	}
	c, err := scanClient(db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.Client{}, nil
	}
	return c, err
}

func scanClient(row pgx.Row) (entities.Client, error) {
	var c entities.Client
	if err := row.Scan(&c.ID, &c.Name, &c.CPF, &c.Email, &c.Phone, &c.City, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return entities.Client{}, err
	}
	return c, nil
}
