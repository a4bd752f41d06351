package user

import (
	"context"
	"errors"

	"github.com/SantiagoArteche/off-eccom-api/internal/apperr"
	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type List struct {
	CurrentPage int     `json:"currentPage"`
	Limit       int     `json:"limit"`
	Prev        *string `json:"prev"`
	Next        string  `json:"next"`
	TotalUsers  int     `json:"totalUsers"`
	Users       []User  `json:"users"`
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFoundf("User with id %s not found", id)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) GetAll(ctx context.Context, page pagination.Page) (*List, error) {
	users, err := s.repo.List(ctx, page)
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
		Prev:        page.PrevLink("/api/users"),
		Next:        page.NextLink("/api/users"),
		TotalUsers:  total,
		Users:       users,
	}, nil
}

// Validated reports whether the account finished email validation. Unknown
// users count as not validated.
func (s *Service) Validated(ctx context.Context, id string) (bool, error) {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Validated, nil
}
