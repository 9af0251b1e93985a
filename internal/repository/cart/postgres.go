package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nature-animaux/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, user_id::text, session_id, created_at, updated_at`

const itemColumns = `id::text, cart_id::text, product_id, variant_id, title, unit_price, quantity, unit_weight, image_url, created_at`

func (r *postgresRepo) GetOrCreate(ctx context.Context, owner OwnerKey) (*domain.Cart, error) {
	// The partial unique indexes on user_id and session_id make this a
	// single-statement get-or-create; the no-op DO UPDATE is what lets
	// RETURNING yield the existing row.
	var q string
	var key string
	switch {
	case owner.UserID != nil:
		q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) WHERE user_id IS NOT NULL
DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING ` + cartColumns
		key = *owner.UserID
	case owner.SessionID != nil:
		q = `
INSERT INTO carts (session_id)
VALUES ($1)
ON CONFLICT (session_id) WHERE session_id IS NOT NULL
DO UPDATE SET session_id = EXCLUDED.session_id
RETURNING ` + cartColumns
		key = *owner.SessionID
	default:
		return nil, domain.Validation("owner", "user or session required")
	}

	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, key).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
`
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.SessionID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, cartID string, in AddItemInput) (*domain.CartItem, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Upsert-with-increment: two concurrent adds of the same variant both
	// land as quantity increments instead of one clobbering the other.
	// Attributes of an existing row are left untouched.
	const q = `
INSERT INTO cart_items (cart_id, product_id, variant_id, title, unit_price, quantity, unit_weight, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (cart_id, product_id, variant_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING ` + itemColumns
	var item domain.CartItem
	if err := tx.QueryRow(ctx, q,
		cartID,
		in.ProductID,
		in.VariantID,
		in.Title,
		in.UnitPrice,
		in.Quantity,
		in.UnitWeight,
		in.ImageURL,
	).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.VariantID,
		&item.Title,
		&item.UnitPrice,
		&item.Quantity,
		&item.UnitWeight,
		&item.ImageURL,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartItem, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Requested values below 1 are clamped, not rejected.
	const q = `
UPDATE cart_items
SET quantity = GREATEST(1, $3)
WHERE id = $2 AND cart_id = $1
RETURNING ` + itemColumns
	var item domain.CartItem
	err = tx.QueryRow(ctx, q, cartID, itemID, quantity).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.VariantID,
		&item.Title,
		&item.UnitPrice,
		&item.Quantity,
		&item.UnitWeight,
		&item.ImageURL,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE id = $2 AND cart_id = $1
`, cartID, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := touchCart(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) loadItems(ctx context.Context, cart *domain.Cart) error {
	const q = `
SELECT ` + itemColumns + `
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q, cart.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.VariantID,
			&item.Title,
			&item.UnitPrice,
			&item.Quantity,
			&item.UnitWeight,
			&item.ImageURL,
			&item.CreatedAt,
		); err != nil {
			return err
		}
		cart.Items = append(cart.Items, item)
	}
	return rows.Err()
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET updated_at = now()
WHERE id = $1
`, cartID)
	return err
}
