// Package pagination implements the list paging contract shared by every
// collection endpoint: 1-based pages, prev link omitted on the first page,
// next link always pointing one page ahead.
package pagination

import (
	"errors"
	"fmt"
)

var ErrInvalid = errors.New("Page and limit must be greater than 0")

type Page struct {
	Page  int
	Limit int
}

func New(page, limit int) (Page, error) {
	if page <= 0 || limit <= 0 {
		return Page{}, ErrInvalid
	}
	return Page{Page: page, Limit: limit}, nil
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PrevLink returns the link to the previous page, or nil on the first page.
func (p Page) PrevLink(basePath string) *string {
	if p.Page <= 1 {
		return nil
	}
	link := fmt.Sprintf("%s?page=%d&limit=%d", basePath, p.Page-1, p.Limit)
	return &link
}

// NextLink always points at page+1; callers discover the end by getting an
// empty result back.
func (p Page) NextLink(basePath string) string {
	return fmt.Sprintf("%s?page=%d&limit=%d", basePath, p.Page+1, p.Limit)
}
