package cart

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/SantiagoArteche/off-eccom-api/internal/catalog"
	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

// Repository is the persistence gateway for carts. Every operation exists in
// a plain form (bound to the pool) and a transaction-scoped form: WithinTx
// hands fn a Repository bound to one transaction, and fn's error aborts it.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Repository) error) error

	CartByID(ctx context.Context, id string) (*Cart, error)
	CartForUpdate(ctx context.Context, id string) (*Cart, error)
	List(ctx context.Context, page pagination.Page) ([]Cart, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
	UpdateTotals(ctx context.Context, c *Cart) error

	ItemByProduct(ctx context.Context, cartID, productID string) (*Item, error)
	CreateItem(ctx context.Context, it *Item) error
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
	DeleteItems(ctx context.Context, cartID string) error

	ProductForUpdate(ctx context.Context, id string) (*catalog.Product, error)
	UpdateProductStock(ctx context.Context, productID string, stock int) error
	UserExists(ctx context.Context, id string) (bool, error)
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

const cartColumns = `id, user_id, subtotal, tax, total, place_order`

func (r *PostgresRepository) scanCart(row pgx.Row) (*Cart, error) {
	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.Subtotal, &c.Tax, &c.Total, &c.PlaceOrder)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &c, nil
}

// CartByID loads the cart together with its line items.
func (r *PostgresRepository) CartByID(ctx context.Context, id string) (*Cart, error) {
	c, err := r.scanCart(r.db.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

// CartForUpdate locks the cart row for the rest of the transaction. Items are
// not loaded; mutating operations address them individually.
func (r *PostgresRepository) CartForUpdate(ctx context.Context, id string) (*Cart, error) {
	return r.scanCart(r.db.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1 FOR UPDATE`, id))
}

func (r *PostgresRepository) List(ctx context.Context, page pagination.Page) ([]Cart, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+cartColumns+` FROM carts ORDER BY id LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []Cart
	for rows.Next() {
		var c Cart
		if err := rows.Scan(&c.ID, &c.UserID, &c.Subtotal, &c.Tax, &c.Total, &c.PlaceOrder); err != nil {
			return nil, err
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM carts`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) Create(ctx context.Context, c *Cart) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO carts (id, user_id, subtotal, tax, total, place_order)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.Subtotal, c.Tax, c.Total, c.PlaceOrder,
	)
	return db.MapError(err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateTotals(ctx context.Context, c *Cart) error {
	_, err := r.db.Exec(ctx,
		`UPDATE carts SET subtotal = $2, tax = $3, total = $4 WHERE id = $1`,
		c.ID, c.Subtotal, c.Tax, c.Total,
	)
	return db.MapError(err)
}

func (r *PostgresRepository) ItemByProduct(ctx context.Context, cartID, productID string) (*Item, error) {
	var it Item
	err := r.db.QueryRow(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items
         WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &it, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, it *Item) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cart_items (id, cart_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
		it.ID, it.CartID, it.ProductID, it.Quantity,
	)
	return db.MapError(err)
}

func (r *PostgresRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := r.db.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	return db.MapError(err)
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return db.MapError(err)
}

func (r *PostgresRepository) DeleteItems(ctx context.Context, cartID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return db.MapError(err)
}

// ProductForUpdate locks the product row so concurrent additions of the same
// product serialize on the stock check.
func (r *PostgresRepository) ProductForUpdate(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	err := r.db.QueryRow(ctx,
		`SELECT id, name, price, stock, low_stock, category_id, created_at
         FROM products WHERE id = $1 FOR UPDATE`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.LowStock, &p.CategoryID, &p.CreatedAt)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &p, nil
}

func (r *PostgresRepository) UpdateProductStock(ctx context.Context, productID string, stock int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE products SET stock = $2, low_stock = $3 WHERE id = $1`,
		productID, stock, catalog.IsLowStock(stock),
	)
	return db.MapError(err)
}

func (r *PostgresRepository) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
