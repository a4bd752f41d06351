package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// Tagged sentinels for the constraints the services care about. Mapping is
// keyed by constraint name, never by vendor message text.
var (
	ErrDuplicateCart     = errors.New("cart already exists for user")
	ErrDuplicateOrder    = errors.New("order already exists for cart")
	ErrDuplicateProduct  = errors.New("product name already exists")
	ErrDuplicateCategory = errors.New("category name already exists")
	ErrDuplicateUser     = errors.New("user email already exists")
	ErrUnknownCategory   = errors.New("category does not exist")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var constraintErrors = map[string]error{
	"carts_user_id_key":         ErrDuplicateCart,
	"orders_cart_id_key":        ErrDuplicateOrder,
	"products_name_key":         ErrDuplicateProduct,
	"categories_name_key":       ErrDuplicateCategory,
	"users_email_key":           ErrDuplicateUser,
	"products_category_id_fkey": ErrUnknownCategory,
}

// MapError translates pgx errors into the package sentinels. Anything it
// does not recognize passes through untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			if tagged, ok := constraintErrors[pgErr.ConstraintName]; ok {
				return fmt.Errorf("%w: %s", tagged, pgErr.ConstraintName)
			}
		}
	}
	return err
}
