package order

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

// Repository is the persistence gateway for orders plus the cart reads and
// deletes the order lifecycle needs. WithinTx scopes all of it to one
// transaction.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Repository) error) error

	ByID(ctx context.Context, id string) (*Order, error)
	ByCartID(ctx context.Context, cartID string) (*Order, error)
	List(ctx context.Context, page pagination.Page) ([]Order, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	MarkPaid(ctx context.Context, orderID, paidBy string) error
	Delete(ctx context.Context, id string) error

	CartByID(ctx context.Context, cartID string) (*CartSnapshot, error)
	CartForUpdate(ctx context.Context, cartID string) (*CartSnapshot, error)
	SetCartPlaced(ctx context.Context, cartID string) error
	CartLines(ctx context.Context, cartID string) ([]Item, error)
	DeleteCartItems(ctx context.Context, cartID string) error
	DeleteCart(ctx context.Context, cartID string) error
}

type PostgresRepository struct {
	db db.TxBeginner
}

func NewPostgresRepository(conn db.TxBeginner) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	return db.WithinTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&PostgresRepository{db: tx})
	})
}

const orderColumns = `id, cart_id, discount, final_price, items_in_order, created_at, paid_by`

func (r *PostgresRepository) scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CartID, &o.Discount, &o.FinalPrice, &o.Items, &o.CreatedAt, &o.PaidBy)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &o, nil
}

func (r *PostgresRepository) ByID(ctx context.Context, id string) (*Order, error) {
	return r.scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *PostgresRepository) ByCartID(ctx context.Context, cartID string) (*Order, error) {
	return r.scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE cart_id = $1`, cartID))
}

func (r *PostgresRepository) List(ctx context.Context, page pagination.Page) ([]Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CartID, &o.Discount, &o.FinalPrice, &o.Items, &o.CreatedAt, &o.PaidBy); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO orders (id, cart_id, discount, final_price, items_in_order, created_at, paid_by)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.CartID, o.Discount, o.FinalPrice, o.Items, o.CreatedAt, o.PaidBy,
	)
	return db.MapError(err)
}

func (r *PostgresRepository) Update(ctx context.Context, o *Order) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET discount = $2, final_price = $3, items_in_order = $4 WHERE id = $1`,
		o.ID, o.Discount, o.FinalPrice, o.Items,
	)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// MarkPaid clears the cart reference and records who paid, the terminal
// transition.
func (r *PostgresRepository) MarkPaid(ctx context.Context, orderID, paidBy string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET cart_id = NULL, paid_by = $2 WHERE id = $1`,
		orderID, paidBy,
	)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanCartSnapshot(row pgx.Row) (*CartSnapshot, error) {
	var snap CartSnapshot
	if err := row.Scan(&snap.ID, &snap.UserID, &snap.Total); err != nil {
		return nil, db.MapError(err)
	}
	return &snap, nil
}

func (r *PostgresRepository) CartByID(ctx context.Context, cartID string) (*CartSnapshot, error) {
	return r.scanCartSnapshot(r.db.QueryRow(ctx,
		`SELECT id, user_id, total FROM carts WHERE id = $1`, cartID))
}

func (r *PostgresRepository) CartForUpdate(ctx context.Context, cartID string) (*CartSnapshot, error) {
	return r.scanCartSnapshot(r.db.QueryRow(ctx,
		`SELECT id, user_id, total FROM carts WHERE id = $1 FOR UPDATE`, cartID))
}

func (r *PostgresRepository) SetCartPlaced(ctx context.Context, cartID string) error {
	_, err := r.db.Exec(ctx, `UPDATE carts SET place_order = TRUE WHERE id = $1`, cartID)
	return db.MapError(err)
}

// CartLines snapshots the cart contents as {name, quantity} pairs.
func (r *PostgresRepository) CartLines(ctx context.Context, cartID string) ([]Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.name, ci.quantity
         FROM cart_items ci
         JOIN products p ON p.id = ci.product_id
         WHERE ci.cart_id = $1`,
		cartID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Name, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) DeleteCartItems(ctx context.Context, cartID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return db.MapError(err)
}

func (r *PostgresRepository) DeleteCart(ctx context.Context, cartID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	return db.MapError(err)
}
