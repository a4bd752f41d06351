package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapErrorConstraints(t *testing.T) {
	tests := map[string]struct {
		code       string
		constraint string
		want       error
	}{
		"duplicate cart per user": {pgUniqueViolation, "carts_user_id_key", ErrDuplicateCart},
		"duplicate order per cart": {pgUniqueViolation, "orders_cart_id_key", ErrDuplicateOrder},
		"duplicate product name":  {pgUniqueViolation, "products_name_key", ErrDuplicateProduct},
		"unknown category fk":     {pgForeignKeyViolation, "products_category_id_fkey", ErrUnknownCategory},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, ConstraintName: tt.constraint}
			got := MapError(fmt.Errorf("exec: %w", pgErr))
			if !errors.Is(got, tt.want) {
				t.Fatalf("MapError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	if got := MapError(nil); got != nil {
		t.Fatalf("nil should stay nil, got %v", got)
	}

	plain := errors.New("connection reset")
	if got := MapError(plain); got != plain {
		t.Fatalf("unrecognized error mutated: %v", got)
	}

	unknown := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "something_else_key"}
	if got := MapError(unknown); !errors.As(got, new(*pgconn.PgError)) {
		t.Fatalf("unknown constraint should pass through, got %v", got)
	}
}

func TestMapErrorNoRows(t *testing.T) {
	if got := MapError(pgx.ErrNoRows); !errors.Is(got, ErrNotFound) {
		t.Fatalf("pgx.ErrNoRows should map to ErrNotFound, got %v", got)
	}
}
