package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SantiagoArteche/off-eccom-api/internal/apperr"
	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/logx"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

// Publisher emits order lifecycle events. Publishing is best-effort and never
// part of the database transaction.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *Order, userID string) error
	PublishOrderPaid(ctx context.Context, o *Order) error
}

type Service struct {
	repo Repository
	pub  Publisher // may be nil
}

func NewService(repo Repository, pub Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

type CreateResult struct {
	Order  *Order `json:"order"`
	UserID string `json:"userId"`
}

type PayResult struct {
	Msg       string `json:"msg"`
	PaidOrder *Order `json:"paidOrder"`
}

type List struct {
	CurrentPage int     `json:"currentPage"`
	Limit       int     `json:"limit"`
	Prev        *string `json:"prev"`
	Next        string  `json:"next"`
	TotalOrders int     `json:"totalOrders"`
	Orders      []Order `json:"orders"`
}

// Create opens an order over a cart: marks the cart placed, snapshots its
// lines and prices the total with the normalized discount. A cart can carry
// at most one order at a time.
func (s *Service) Create(ctx context.Context, cartID string, discount int) (*CreateResult, error) {
	var (
		created *Order
		userID  string
	)

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		snap, err := tx.CartForUpdate(ctx, cartID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return apperr.NotFound("Cart not found")
			}
			return err
		}

		if _, err := tx.ByCartID(ctx, cartID); err == nil {
			return apperr.BadRequest("You only can make one order at time")
		} else if !errors.Is(err, db.ErrNotFound) {
			return err
		}

		if err := tx.SetCartPlaced(ctx, cartID); err != nil {
			return err
		}

		if snap.Total == 0 {
			return apperr.BadRequest("Insert products to your cart before make an order!")
		}

		lines, err := tx.CartLines(ctx, cartID)
		if err != nil {
			return err
		}

		o := &Order{
			ID:         uuid.NewString(),
			CartID:     &snap.ID,
			Discount:   clampStored(discount),
			FinalPrice: FinalPrice(snap.Total, discount),
			Items:      lines,
			CreatedAt:  time.Now().UTC(),
		}

		if err := tx.Create(ctx, o); err != nil {
			// Constraint backstop for two concurrent creates on one cart.
			if errors.Is(err, db.ErrDuplicateOrder) {
				return apperr.BadRequest("You only can make one order at time")
			}
			return err
		}

		created = o
		userID = snap.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.pub != nil {
		if err := s.pub.PublishOrderCreated(ctx, created, userID); err != nil {
			logx.Warn().Err(err).Str("orderId", created.ID).Msg("publish order.created failed")
		}
	}

	return &CreateResult{Order: created, UserID: userID}, nil
}

// Update reprices the order from the live cart total, with either the newly
// supplied discount or the one stored on the order, and refreshes the items
// snapshot.
func (s *Service) Update(ctx context.Context, orderID, cartID string, discount *int) (*Order, error) {
	o, err := s.repo.ByID(ctx, orderID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	snap, cartErr := s.repo.CartByID(ctx, cartID)
	if cartErr != nil && !errors.Is(cartErr, db.ErrNotFound) {
		return nil, cartErr
	}
	if o == nil || snap == nil {
		return nil, apperr.NotFound("Order or cart not found")
	}

	if o.Paid() {
		return nil, apperr.BadRequest("Order already paid")
	}

	if discount != nil {
		o.Discount = clampStored(*discount)
		o.FinalPrice = FinalPrice(snap.Total, *discount)
	} else {
		o.FinalPrice = FinalPrice(snap.Total, o.Discount)
	}

	lines, err := s.repo.CartLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	o.Items = lines

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Pay finalizes the order: the cart and its items are deleted, the cart
// reference cleared and the payer recorded, all in one transaction. Paying is
// not idempotent; a second call fails.
func (s *Service) Pay(ctx context.Context, id string, accountValidated bool) (*PayResult, error) {
	o, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFoundf("Order with id %s not found", id)
		}
		return nil, err
	}

	if !accountValidated {
		return nil, apperr.Forbidden("Before making an order, you need to validate your account!")
	}

	err = s.repo.WithinTx(ctx, func(tx Repository) error {
		if o.Paid() {
			return apperr.Internal("Order already paid!")
		}

		// The lock also serializes two racing pay calls: the loser sees the
		// cart gone once the winner commits.
		snap, err := tx.CartForUpdate(ctx, *o.CartID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return apperr.Internal("Order already paid!")
			}
			return err
		}

		if err := tx.DeleteCartItems(ctx, snap.ID); err != nil {
			return err
		}
		if err := tx.DeleteCart(ctx, snap.ID); err != nil {
			return err
		}
		if err := tx.MarkPaid(ctx, o.ID, snap.UserID); err != nil {
			return err
		}

		o.CartID = nil
		o.PaidBy = &snap.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.pub != nil {
		if err := s.pub.PublishOrderPaid(ctx, o); err != nil {
			logx.Warn().Err(err).Str("orderId", o.ID).Msg("publish order.paid failed")
		}
	}

	return &PayResult{Msg: fmt.Sprintf("Order with id %s paid!", o.ID), PaidOrder: o}, nil
}

// Delete removes an unpaid order. Fulfilled orders stay on the books.
func (s *Service) Delete(ctx context.Context, id string) (string, error) {
	o, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", apperr.NotFoundf("Order with id %s not found", id)
		}
		return "", err
	}

	if o.Paid() {
		return "", apperr.BadRequest("Order already paid, wait until the products arrive to the client and contact the DB Admin to delete the order. We recommend not delete any orders which was completed")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Order with id %s was deleted", id), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFoundf("Order with id %s not found", id)
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) GetAll(ctx context.Context, page pagination.Page) (*List, error) {
	orders, err := s.repo.List(ctx, page)
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
		Prev:        page.PrevLink("/api/orders"),
		Next:        page.NextLink("/api/orders"),
		TotalOrders: total,
		Orders:      orders,
	}, nil
}
