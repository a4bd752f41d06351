package user

import (
	"context"

	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

type Repository interface {
	ByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, page pagination.Page) ([]User, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepository struct {
	db db.TxBeginner
}

func NewPostgresRepository(conn db.TxBeginner) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const userColumns = `id, first_name, last_name, email, age, validated, created_at`

func (r *PostgresRepository) ByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Age, &u.Validated, &u.CreatedAt)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &u, nil
}

func (r *PostgresRepository) List(ctx context.Context, page pagination.Page) ([]User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Age, &u.Validated, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
