package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SantiagoArteche/off-eccom-api/internal/apperr"
	"github.com/SantiagoArteche/off-eccom-api/internal/catalog"
	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

// Invalidator drops cached product state after a stock change.
type Invalidator interface {
	Invalidate(ctx context.Context, productID string)
}

// Service implements the cart operations. Every operation that touches more
// than one record runs inside a single repository transaction.
type Service struct {
	repo  Repository
	cache Invalidator // may be nil
}

func NewService(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

type AddResult struct {
	Msg         string `json:"msg"`
	UpdatedCart *Cart  `json:"updatedCart"`
}

type CreateResult struct {
	Msg  string `json:"msg"`
	Cart *Cart  `json:"cart"`
}

type List struct {
	CurrentPage int     `json:"currentPage"`
	Limit       int     `json:"limit"`
	Prev        *string `json:"prev"`
	Next        string  `json:"next"`
	TotalCarts  int     `json:"totalCarts"`
	AllCarts    []Cart  `json:"allCarts"`
}

// AddProduct upserts a line item and adjusts the cart aggregates, then
// validates stock. A stock failure aborts the whole transaction, so the cart
// and its items come out untouched.
func (s *Service) AddProduct(ctx context.Context, productID, cartID string, quantity int) (*AddResult, error) {
	var updated *Cart

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		product, err := tx.ProductForUpdate(ctx, productID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return err
		}

		c, cartErr := tx.CartForUpdate(ctx, cartID)
		if cartErr != nil && !errors.Is(cartErr, db.ErrNotFound) {
			return cartErr
		}
		if product == nil || c == nil {
			return apperr.BadRequest("Product or cart not found")
		}

		item, err := tx.ItemByProduct(ctx, cartID, productID)
		switch {
		case err == nil:
			if err := tx.UpdateItemQuantity(ctx, item.ID, item.Quantity+quantity); err != nil {
				return err
			}
		case errors.Is(err, db.ErrNotFound):
			item = &Item{ID: uuid.NewString(), CartID: cartID, ProductID: productID, Quantity: quantity}
			if err := tx.CreateItem(ctx, item); err != nil {
				return err
			}
		default:
			return err
		}

		c.AddUnits(product.Price, quantity)
		if err := tx.UpdateTotals(ctx, c); err != nil {
			return err
		}

		// Stock is validated after the mutations; returning an error here
		// rolls all of them back.
		if product.Stock == 0 {
			return apperr.BadRequest("Product out of stock")
		}
		if product.Stock < quantity {
			return apperr.BadRequestf("We only have %d units of %s, change your quantity!", product.Stock, product.Name)
		}

		if err := tx.UpdateProductStock(ctx, productID, product.Stock-quantity); err != nil {
			return err
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	return &AddResult{Msg: "Cart Updated", UpdatedCart: updated}, nil
}

// Create opens the user's cart. Each user gets exactly one: a second call
// trips the unique constraint on user_id.
func (s *Service) Create(ctx context.Context, userID string) (*CreateResult, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFoundf("User with id %s not found, to create a cart you need an user", userID)
	}

	c := &Cart{ID: uuid.NewString(), UserID: userID, Items: []Item{}}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, db.ErrDuplicateCart) {
			return nil, apperr.BadRequest("An user can create only one cart")
		}
		return nil, err
	}

	return &CreateResult{Msg: "Cart created!", Cart: c}, nil
}

func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if _, err := tx.CartForUpdate(ctx, id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return apperr.NotFound("Cart not found")
			}
			return err
		}
		if err := tx.DeleteItems(ctx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Cart with id %s was deleted", id), nil
}

// RemoveUnit takes one unit of the product out of the cart, dropping the line
// item once the quantity would fall below one. Stock is not restored.
func (s *Service) RemoveUnit(ctx context.Context, productID, cartID string) (string, error) {
	var msg string

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		product, c, item, err := s.lineItem(ctx, tx, productID, cartID)
		if err != nil {
			return err
		}

		c.RemoveUnits(product.Price, 1)

		if item.Quantity <= 1 {
			if err := tx.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
		} else {
			if err := tx.UpdateItemQuantity(ctx, item.ID, item.Quantity-1); err != nil {
				return err
			}
		}

		msg = fmt.Sprintf("Quantity on product %s from %s updated", item.ID, cartID)
		return tx.UpdateTotals(ctx, c)
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

// RemoveProduct drops the whole line item. Stock is not restored.
func (s *Service) RemoveProduct(ctx context.Context, productID, cartID string) (string, error) {
	var msg string

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		product, c, item, err := s.lineItem(ctx, tx, productID, cartID)
		if err != nil {
			return err
		}

		c.RemoveUnits(product.Price, item.Quantity)

		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return err
		}

		msg = fmt.Sprintf("Product %s from %s deleted", item.ID, cartID)
		return tx.UpdateTotals(ctx, c)
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Cart, error) {
	c, err := s.repo.CartByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Cart not found")
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) GetAll(ctx context.Context, page pagination.Page) (*List, error) {
	carts, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &List{
		CurrentPage: page.Page,
		Limit:       page.Limit,
		Prev:        page.PrevLink("/api/cart"),
		Next:        page.NextLink("/api/cart"),
		TotalCarts:  total,
		AllCarts:    carts,
	}, nil
}

// lineItem loads and locks the product and cart and resolves the line item
// joining them, translating the absence of any of the three.
func (s *Service) lineItem(ctx context.Context, tx Repository, productID, cartID string) (*catalog.Product, *Cart, *Item, error) {
	product, err := tx.ProductForUpdate(ctx, productID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, nil, nil, err
	}

	c, cartErr := tx.CartForUpdate(ctx, cartID)
	if cartErr != nil && !errors.Is(cartErr, db.ErrNotFound) {
		return nil, nil, nil, cartErr
	}
	if product == nil || c == nil {
		return nil, nil, nil, apperr.BadRequest("Product or cart not found")
	}

	item, err := tx.ItemByProduct(ctx, cartID, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, nil, apperr.BadRequest("Product in cart not found")
		}
		return nil, nil, nil, err
	}

	return product, c, item, nil
}
