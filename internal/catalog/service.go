package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SantiagoArteche/off-eccom-api/internal/apperr"
	"github.com/SantiagoArteche/off-eccom-api/internal/db"
	"github.com/SantiagoArteche/off-eccom-api/internal/pagination"
)

// ProductCache is an optional read-through cache for products. Misses and
// cache failures fall back to the repository.
type ProductCache interface {
	Get(ctx context.Context, id string) (*Product, bool)
	Set(ctx context.Context, p *Product)
	Invalidate(ctx context.Context, id string)
}

type Service struct {
	repo  Repository
	cache ProductCache // may be nil
}

func NewService(repo Repository, cache ProductCache) *Service {
	return &Service{repo: repo, cache: cache}
}

type ProductList struct {
	CurrentPage   int       `json:"currentPage"`
	Limit         int       `json:"limit"`
	Prev          *string   `json:"prev"`
	Next          string    `json:"next"`
	TotalProducts int       `json:"totalProducts"`
	Products      []Product `json:"products"`
}

type CategoryList struct {
	CurrentPage     int        `json:"currentPage"`
	Limit           int        `json:"limit"`
	Prev            *string    `json:"prev"`
	Next            string     `json:"next"`
	TotalCategories int        `json:"totalCategories"`
	Categories      []Category `json:"categories"`
}

type CreateProductInput struct {
	Name       string
	Price      float64
	Stock      int
	CategoryID string
}

// UpdateProductInput patches only the fields that are set.
type UpdateProductInput struct {
	Name       *string
	Price      *float64
	Stock      *int
	CategoryID *string
}

func (s *Service) GetProducts(ctx context.Context, page pagination.Page) (*ProductList, error) {
	products, err := s.repo.ListProducts(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductList{
		CurrentPage:   page.Page,
		Limit:         page.Limit,
		Prev:          page.PrevLink("/api/products"),
		Next:          page.NextLink("/api/products"),
		TotalProducts: total,
		Products:      products,
	}, nil
}

func (s *Service) GetProductByID(ctx context.Context, id string) (*Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return p, nil
		}
	}

	p, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFoundf("Product with id %s not found", id)
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, p)
	}
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	p := &Product{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Price:      in.Price,
		Stock:      in.Stock,
		LowStock:   IsLowStock(in.Stock),
		CategoryID: in.CategoryID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateProduct):
			return nil, apperr.BadRequest("Product with that name already exist")
		case errors.Is(err, db.ErrUnknownCategory):
			return nil, apperr.BadRequest("Category not exists")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*Product, error) {
	p, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFoundf("Product with id %s not found", id)
		}
		return nil, err
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
		p.LowStock = IsLowStock(*in.Stock)
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateProduct):
			return nil, apperr.BadRequest("Product with that name already exist")
		case errors.Is(err, db.ErrUnknownCategory):
			return nil, apperr.BadRequest("Category not exists")
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) (string, error) {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", apperr.NotFound("Product not found")
		}
		return "", err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return fmt.Sprintf("Product with id %s was deleted", id), nil
}

func (s *Service) GetCategories(ctx context.Context, page pagination.Page) (*CategoryList, error) {
	categories, err := s.repo.ListCategories(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &CategoryList{
		CurrentPage:     page.Page,
		Limit:           page.Limit,
		Prev:            page.PrevLink("/api/categories"),
		Next:            page.NextLink("/api/categories"),
		TotalCategories: total,
		Categories:      categories,
	}, nil
}

func (s *Service) GetCategoryByID(ctx context.Context, id string) (*Category, error) {
	c, err := s.repo.CategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFoundf("Category with id %s not found", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	c := &Category{ID: uuid.NewString(), Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, db.ErrDuplicateCategory) {
			return nil, apperr.BadRequest("Category with that name already exist")
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id, name string) (*Category, error) {
	c := &Category{ID: id, Name: name}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, apperr.NotFoundf("Category with id %s not found", id)
		case errors.Is(err, db.ErrDuplicateCategory):
			return nil, apperr.BadRequest("Category with that name already exist")
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) (string, error) {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", apperr.NotFound("Category not found")
		}
		return "", err
	}
	return fmt.Sprintf("Category with id %s was deleted", id), nil
}
