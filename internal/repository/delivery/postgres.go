package delivery

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
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

const choiceColumns = `id::text, cart_id::text, order_id::text, mode, fee, created_at, updated_at`

func (r *postgresRepo) UpsertForCart(ctx context.Context, cartID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, error) {
	const q = `
INSERT INTO delivery_choices (cart_id, mode, fee)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id) WHERE cart_id IS NOT NULL
DO UPDATE SET mode = EXCLUDED.mode, fee = EXCLUDED.fee, updated_at = now()
RETURNING ` + choiceColumns
	return scanChoice(r.pool.QueryRow(ctx, q, cartID, mode, fee))
}

func (r *postgresRepo) GetForCart(ctx context.Context, cartID string) (*domain.DeliveryChoice, error) {
	const q = `
SELECT ` + choiceColumns + `
FROM delivery_choices
WHERE cart_id = $1
`
	choice, err := scanChoice(r.pool.QueryRow(ctx, q, cartID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return choice, nil
}

// ApplyToOrder is a single read-modify-write: the order row is locked, the
// choice upserted, and the total recomputed from the cart rows before the
// transaction commits. Concurrent applies to the same order serialize on
// the row lock, so the persisted mode and total always belong together.
func (r *postgresRepo) ApplyToOrder(ctx context.Context, orderID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, decimal.Decimal, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	var cartID string
	err = tx.QueryRow(ctx, `
SELECT cart_id::text
FROM orders
WHERE id = $1
FOR UPDATE
`, orderID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, decimal.Zero, domain.ErrNotFound
		}
		return nil, decimal.Zero, err
	}

	const upsert = `
INSERT INTO delivery_choices (order_id, mode, fee)
VALUES ($1, $2, $3)
ON CONFLICT (order_id) WHERE order_id IS NOT NULL
DO UPDATE SET mode = EXCLUDED.mode, fee = EXCLUDED.fee, updated_at = now()
RETURNING ` + choiceColumns
	choice, err := scanChoice(tx.QueryRow(ctx, upsert, orderID, mode, fee))
	if err != nil {
		return nil, decimal.Zero, err
	}

	subtotal, err := cartSubtotal(ctx, tx, cartID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := subtotal.Add(fee).Round(2)
	if err := setOrderTotal(ctx, tx, orderID, total); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, decimal.Zero, err
	}
	return choice, total, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.DeliveryChoice, error) {
	const q = `
SELECT d.id::text, d.cart_id::text, d.order_id::text, d.mode, d.fee, d.created_at, d.updated_at
FROM delivery_choices d
JOIN orders o ON o.id = d.order_id
WHERE o.user_id = $1
ORDER BY d.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var choices []domain.DeliveryChoice
	for rows.Next() {
		choice, err := scanChoice(rows)
		if err != nil {
			return nil, err
		}
		choices = append(choices, *choice)
	}
	return choices, rows.Err()
}

// DeleteForUser removes the choice and resets the owning order's total to
// the bare cart subtotal in one transaction, so the order never keeps a fee
// for a choice that no longer exists.
func (r *postgresRepo) DeleteForUser(ctx context.Context, id, userID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var orderID, cartID string
	err = tx.QueryRow(ctx, `
SELECT o.id::text, o.cart_id::text
FROM delivery_choices d
JOIN orders o ON o.id = d.order_id
WHERE d.id = $1 AND o.user_id = $2
FOR UPDATE OF o
`, id, userID).Scan(&orderID, &cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM delivery_choices
WHERE id = $1
`, id); err != nil {
		return err
	}

	subtotal, err := cartSubtotal(ctx, tx, cartID)
	if err != nil {
		return err
	}
	if err := setOrderTotal(ctx, tx, orderID, subtotal); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func cartSubtotal(ctx context.Context, tx pgx.Tx, cartID string) (decimal.Decimal, error) {
	var subtotal decimal.Decimal
	err := tx.QueryRow(ctx, `
SELECT COALESCE(SUM(unit_price * quantity), 0)
FROM cart_items
WHERE cart_id = $1
`, cartID).Scan(&subtotal)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Round(2), nil
}

func setOrderTotal(ctx context.Context, tx pgx.Tx, orderID string, total decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
UPDATE orders
SET total_price = $2, updated_at = now()
WHERE id = $1
`, orderID, total)
	return err
}

func scanChoice(row pgx.Row) (*domain.DeliveryChoice, error) {
	var choice domain.DeliveryChoice
	if err := row.Scan(
		&choice.ID,
		&choice.CartID,
		&choice.OrderID,
		&choice.Mode,
		&choice.Fee,
		&choice.CreatedAt,
		&choice.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &choice, nil
}
