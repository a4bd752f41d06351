package catalog

import (
	"context"

	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

type Repository interface {
	ProductByID(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, page pagination.Page) ([]Product, error)
	CountProducts(ctx context.Context) (int, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error

	CategoryByID(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, page pagination.Page) ([]Category, error)
	CountCategories(ctx context.Context) (int, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db db.TxBeginner
}

func NewPostgresRepository(conn db.TxBeginner) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const productColumns = `id, name, price, stock, low_stock, category_id, created_at`

func (r *PostgresRepository) ProductByID(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.LowStock, &p.CategoryID, &p.CreatedAt)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context, page pagination.Page) ([]Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.LowStock, &p.CategoryID, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO products (id, name, price, stock, low_stock, category_id, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Price, p.Stock, p.LowStock, p.CategoryID, p.CreatedAt,
	)
	return db.MapError(err)
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $2, price = $3, stock = $4, low_stock = $5, category_id = $6
         WHERE id = $1`,
		p.ID, p.Name, p.Price, p.Stock, p.LowStock, p.CategoryID,
	)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CategoryByID(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &c, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, page pagination.Page) ([]Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM categories ORDER BY name LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) CountCategories(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c *Category) error {
	_, err := r.db.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	return db.MapError(err)
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, c *Category) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
