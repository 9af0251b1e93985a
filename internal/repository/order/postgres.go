package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const uniqueViolation = "23505"

func (r *postgresRepo) Create(ctx context.Context, userID, cartID string, total decimal.Decimal) (*domain.Order, error) {
	const q = `
INSERT INTO orders (user_id, cart_id, total_price)
VALUES ($1, $2, $3)
RETURNING id::text, user_id::text, cart_id::text, total_price, created_at, updated_at
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, userID, cartID, total).Scan(
		&o.ID,
		&o.UserID,
		&o.CartID,
		&o.TotalPrice,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return &o, nil
}

const orderSelect = `
SELECT o.id::text, o.user_id::text, o.cart_id::text, o.total_price, o.created_at, o.updated_at,
       d.id::text, d.mode, d.fee, d.created_at, d.updated_at
FROM orders o
LEFT JOIN delivery_choices d ON d.order_id = o.id
`

func (r *postgresRepo) GetForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, orderSelect+`WHERE o.id = $1 AND o.user_id = $2`, id, userID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, orderSelect+`WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var choiceID, mode *string
	var fee *decimal.Decimal
	var choiceCreated, choiceUpdated *time.Time
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.CartID,
		&o.TotalPrice,
		&o.CreatedAt,
		&o.UpdatedAt,
		&choiceID,
		&mode,
		&fee,
		&choiceCreated,
		&choiceUpdated,
	); err != nil {
		return nil, err
	}
	if choiceID != nil {
		o.Delivery = &domain.DeliveryChoice{
			ID:        *choiceID,
			OrderID:   &o.ID,
			Mode:      domain.DeliveryMode(*mode),
			Fee:       *fee,
			CreatedAt: *choiceCreated,
			UpdatedAt: *choiceUpdated,
		}
	}
	return &o, nil
}
