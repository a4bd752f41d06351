package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SantiagoArteche/off-eccom-api/internal/apperr"
	"github.com/SantiagoArteche/off-eccom-api/internal/catalog"
	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

// fakeState is the in-memory dataset behind fakeRepo. WithinTx runs fn
// against a deep copy and only keeps it on success, mirroring rollback.
type fakeState struct {
	users    map[string]bool
	products map[string]catalog.Product
	carts    map[string]Cart
	items    map[string]Item
}

func newFakeState() *fakeState {
	return &fakeState{
		users:    map[string]bool{},
		products: map[string]catalog.Product{},
		carts:    map[string]Cart{},
		items:    map[string]Item{},
	}
}

func (st *fakeState) clone() *fakeState {
	c := newFakeState()
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.carts {
		c.carts[k] = v
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	return c
}

type fakeRepo struct {
	st *fakeState
}

func (f *fakeRepo) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	snap := f.st.clone()
	if err := fn(&fakeRepo{st: snap}); err != nil {
		return err
	}
	*f.st = *snap
	return nil
}

func (f *fakeRepo) CartByID(ctx context.Context, id string) (*Cart, error) {
	c, ok := f.st.carts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c.Items = []Item{}
	for _, it := range f.st.items {
		if it.CartID == id {
			c.Items = append(c.Items, it)
		}
	}
	return &c, nil
}

func (f *fakeRepo) CartForUpdate(ctx context.Context, id string) (*Cart, error) {
	c, ok := f.st.carts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (f *fakeRepo) List(ctx context.Context, page pagination.Page) ([]Cart, error) {
	var carts []Cart
	for _, c := range f.st.carts {
		carts = append(carts, c)
	}
	return carts, nil
}

func (f *fakeRepo) Count(ctx context.Context) (int, error) {
	return len(f.st.carts), nil
}

func (f *fakeRepo) Create(ctx context.Context, c *Cart) error {
	for _, existing := range f.st.carts {
		if existing.UserID == c.UserID {
			return db.ErrDuplicateCart
		}
	}
	f.st.carts[c.ID] = *c
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.st.carts[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.st.carts, id)
	return nil
}

func (f *fakeRepo) UpdateTotals(ctx context.Context, c *Cart) error {
	stored, ok := f.st.carts[c.ID]
	if !ok {
		return db.ErrNotFound
	}
	stored.Subtotal, stored.Tax, stored.Total = c.Subtotal, c.Tax, c.Total
	f.st.carts[c.ID] = stored
	return nil
}

func (f *fakeRepo) ItemByProduct(ctx context.Context, cartID, productID string) (*Item, error) {
	for _, it := range f.st.items {
		if it.CartID == cartID && it.ProductID == productID {
			found := it
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeRepo) CreateItem(ctx context.Context, it *Item) error {
	f.st.items[it.ID] = *it
	return nil
}

func (f *fakeRepo) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	it, ok := f.st.items[itemID]
	if !ok {
		return db.ErrNotFound
	}
	it.Quantity = quantity
	f.st.items[itemID] = it
	return nil
}

func (f *fakeRepo) DeleteItem(ctx context.Context, itemID string) error {
	delete(f.st.items, itemID)
	return nil
}

func (f *fakeRepo) DeleteItems(ctx context.Context, cartID string) error {
	for id, it := range f.st.items {
		if it.CartID == cartID {
			delete(f.st.items, id)
		}
	}
	return nil
}

func (f *fakeRepo) ProductForUpdate(ctx context.Context, id string) (*catalog.Product, error) {
	p, ok := f.st.products[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (f *fakeRepo) UpdateProductStock(ctx context.Context, productID string, stock int) error {
	p, ok := f.st.products[productID]
	if !ok {
		return nil
	}
	p.Stock = stock
	p.LowStock = catalog.IsLowStock(stock)
	f.st.products[productID] = p
	return nil
}

func (f *fakeRepo) UserExists(ctx context.Context, id string) (bool, error) {
	return f.st.users[id], nil
}

func seed(st *fakeState) {
	st.users["user-1"] = true
	st.products["prod-1"] = catalog.Product{ID: "prod-1", Name: "Keyboard", Price: 1000, Stock: 10}
	st.products["prod-2"] = catalog.Product{ID: "prod-2", Name: "Mouse", Price: 250, Stock: 3}
	st.carts["cart-1"] = Cart{ID: "cart-1", UserID: "user-1"}
}

func TestAddProduct(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	res, err := svc.AddProduct(context.Background(), "prod-1", "cart-1", 2)
	require.NoError(t, err)

	assert.Equal(t, "Cart Updated", res.Msg)
	assert.InDelta(t, 2000, res.UpdatedCart.Subtotal, 1e-9)
	assert.InDelta(t, 420, res.UpdatedCart.Tax, 1e-9)
	assert.InDelta(t, 2420, res.UpdatedCart.Total, 1e-9)

	assert.Equal(t, 8, st.products["prod-1"].Stock)

	c, err := svc.GetByID(context.Background(), "cart-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddProductExistingLineIncrementsQuantity(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.AddProduct(context.Background(), "prod-1", "cart-1", 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(context.Background(), "prod-1", "cart-1", 3)
	require.NoError(t, err)

	c, err := svc.GetByID(context.Background(), "cart-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.InDelta(t, 5000, c.Subtotal, 1e-9)
	assert.Equal(t, 5, st.products["prod-1"].Stock)
	assert.True(t, st.products["prod-1"].LowStock)
}

func TestAddProductInsufficientStockRollsBack(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.AddProduct(context.Background(), "prod-2", "cart-1", 5)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "We only have 3 units of Mouse, change your quantity!", apperr.Message(err))

	// The whole transaction rolled back: no line item, aggregates and stock
	// unchanged.
	c, err := svc.GetByID(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.InDelta(t, 0, c.Subtotal, 1e-9)
	assert.InDelta(t, 0, c.Total, 1e-9)
	assert.Equal(t, 3, st.products["prod-2"].Stock)
}

func TestAddProductOutOfStock(t *testing.T) {
	st := newFakeState()
	seed(st)
	st.products["prod-3"] = catalog.Product{ID: "prod-3", Name: "Webcam", Price: 500, Stock: 0}
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.AddProduct(context.Background(), "prod-3", "cart-1", 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "Product out of stock", apperr.Message(err))
}

func TestAddProductMissingProductOrCart(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	for _, tc := range []struct {
		name      string
		productID string
		cartID    string
	}{
		{"missing product", "nope", "cart-1"},
		{"missing cart", "prod-1", "nope"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddProduct(context.Background(), tc.productID, tc.cartID, 1)
			require.Error(t, err)
			assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
			assert.Equal(t, "Product or cart not found", apperr.Message(err))
		})
	}
}

func TestCreateCart(t *testing.T) {
	st := newFakeState()
	st.users["user-2"] = true
	svc := NewService(&fakeRepo{st: st}, nil)

	res, err := svc.Create(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, "Cart created!", res.Msg)
	assert.Equal(t, "user-2", res.Cart.UserID)
	assert.InDelta(t, 0, res.Cart.Total, 1e-9)
	assert.NotEmpty(t, res.Cart.ID)
}

func TestCreateCartOncePerUser(t *testing.T) {
	st := newFakeState()
	st.users["user-2"] = true
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.Create(context.Background(), "user-2")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "user-2")
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "An user can create only one cart", apperr.Message(err))
	assert.Len(t, st.carts, 1)
}

func TestCreateCartUnknownUser(t *testing.T) {
	svc := NewService(&fakeRepo{st: newFakeState()}, nil)

	_, err := svc.Create(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "User with id ghost not found, to create a cart you need an user", apperr.Message(err))
}

func TestRemoveUnit(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.AddProduct(context.Background(), "prod-1", "cart-1", 3)
	require.NoError(t, err)

	_, err = svc.RemoveUnit(context.Background(), "prod-1", "cart-1")
	require.NoError(t, err)

	c, err := svc.GetByID(context.Background(), "cart-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.InDelta(t, 2000, c.Subtotal, 1e-9)
	assert.InDelta(t, 420, c.Tax, 1e-9)
	assert.InDelta(t, 2420, c.Total, 1e-9)

	// Removal never puts units back on the shelf.
	assert.Equal(t, 7, st.products["prod-1"].Stock)
}

func TestRemoveUnitDropsLineAtOne(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.AddProduct(context.Background(), "prod-1", "cart-1", 1)
	require.NoError(t, err)

	_, err = svc.RemoveUnit(context.Background(), "prod-1", "cart-1")
	require.NoError(t, err)

	c, err := svc.GetByID(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.InDelta(t, 0, c.Subtotal, 1e-9)
}

func TestRemoveProduct(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.AddProduct(context.Background(), "prod-1", "cart-1", 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(context.Background(), "prod-2", "cart-1", 1)
	require.NoError(t, err)

	_, err = svc.RemoveProduct(context.Background(), "prod-1", "cart-1")
	require.NoError(t, err)

	c, err := svc.GetByID(context.Background(), "cart-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "prod-2", c.Items[0].ProductID)
	assert.InDelta(t, 250, c.Subtotal, 1e-9)
	assert.InDelta(t, 250*TaxRate, c.Tax, 1e-9)

	assert.Equal(t, 8, st.products["prod-1"].Stock)
}

func TestRemoveProductNotInCart(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.RemoveProduct(context.Background(), "prod-1", "cart-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "Product in cart not found", apperr.Message(err))
}

func TestCartAggregatesStayConsistent(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, "prod-1", "cart-1", 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "prod-2", "cart-1", 3)
	require.NoError(t, err)
	_, err = svc.RemoveUnit(ctx, "prod-2", "cart-1")
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "prod-1", "cart-1", 1)
	require.NoError(t, err)

	c, err := svc.GetByID(ctx, "cart-1")
	require.NoError(t, err)

	var want float64
	for _, it := range c.Items {
		want += float64(it.Quantity) * st.products[it.ProductID].Price
	}
	assert.InDelta(t, want, c.Subtotal, 1e-9)
	assert.InDelta(t, want*TaxRate, c.Tax, 1e-9)
	assert.InDelta(t, c.Subtotal+c.Tax, c.Total, 1e-9)
}

func TestDeleteCart(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	_, err := svc.AddProduct(context.Background(), "prod-1", "cart-1", 1)
	require.NoError(t, err)

	msg, err := svc.Delete(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, "Cart with id cart-1 was deleted", msg)
	assert.Empty(t, st.carts)
	assert.Empty(t, st.items)
}

func TestDeleteCartNotFound(t *testing.T) {
	svc := NewService(&fakeRepo{st: newFakeState()}, nil)

	_, err := svc.Delete(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Cart not found", apperr.Message(err))
}

func TestGetAllPagination(t *testing.T) {
	st := newFakeState()
	seed(st)
	svc := NewService(&fakeRepo{st: st}, nil)

	page, err := pagination.New(1, 10)
	require.NoError(t, err)

	list, err := svc.GetAll(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 1, list.CurrentPage)
	assert.Equal(t, 10, list.Limit)
	assert.Nil(t, list.Prev)
	assert.Equal(t, "/api/cart?page=2&limit=10", list.Next)
	assert.Equal(t, 1, list.TotalCarts)
	assert.Len(t, list.AllCarts, 1)
}
