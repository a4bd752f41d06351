package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SantiagoArteche/off-eccom-api/internal/db"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func TestPostgresByID(t *testing.T) {
	mock, repo := newMock(t)

	cartID := "cart-1"
	created := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, cart_id, discount, final_price, items_in_order, created_at, paid_by FROM orders WHERE id = $1`)).
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "cart_id", "discount", "final_price", "items_in_order", "created_at", "paid_by"}).
			AddRow("order-1", &cartID, 10, 2178.0, []Item{{Name: "Keyboard", Quantity: 2}}, created, (*string)(nil)))

	o, err := repo.ByID(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, o.CartID)
	assert.Equal(t, "cart-1", *o.CartID)
	assert.Equal(t, 10, o.Discount)
	assert.InDelta(t, 2178, o.FinalPrice, 1e-9)
	assert.Equal(t, []Item{{Name: "Keyboard", Quantity: 2}}, o.Items)
	assert.Nil(t, o.PaidBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresByIDNotFound(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.ByID(context.Background(), "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateMapsDuplicateCart(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_cart_id_key"})

	cartID := "cart-1"
	err := repo.Create(context.Background(), &Order{ID: "order-1", CartID: &cartID, Items: []Item{}})
	assert.ErrorIs(t, err, db.ErrDuplicateOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkPaid(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET cart_id = NULL, paid_by = $2 WHERE id = $1`)).
		WithArgs("order-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.MarkPaid(context.Background(), "order-1", "user-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkPaidNotFound(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(`UPDATE orders SET cart_id = NULL`).
		WithArgs("nope", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkPaid(context.Background(), "nope", "user-1")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartLines(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(`SELECT p.name, ci.quantity`).
		WithArgs("cart-1").
		WillReturnRows(pgxmock.NewRows([]string{"name", "quantity"}).
			AddRow("Keyboard", 2).
			AddRow("Mouse", 1))

	items, err := repo.CartLines(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, []Item{{Name: "Keyboard", Quantity: 2}, {Name: "Mouse", Quantity: 1}}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
