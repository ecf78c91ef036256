package domain

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// CategoryStorage defines the persistence a CategoryService needs.
type CategoryStorage interface {
	ListCategories(ctx context.Context) ([]Category, error)
	InsertCategory(ctx context.Context, name string) (Category, error)
}

// CategoryNotifier is told about categories after they are persisted.
type CategoryNotifier interface {
	CategoryCreated(ctx context.Context, c Category) error
}

// CategoryService validates and persists categories.
type CategoryService struct {
	st     CategoryStorage
	notify CategoryNotifier
}

func NewCategoryService(st CategoryStorage, notify CategoryNotifier) CategoryService {
	return CategoryService{st: st, notify: notify}
}

// List returns every category in store order.
func (s CategoryService) List(ctx context.Context) ([]Category, error) {
	cats, err := s.st.ListCategories(ctx)
	if err != nil {
		return nil, WrapSource(SourceCategories, err)
	}
	return cats, nil
}

// Create inserts a category named name. Blank names are rejected with
// ErrCategoryNameRequired before the store is touched.
func (s CategoryService) Create(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrCategoryNameRequired
	}
	c, err := s.st.InsertCategory(ctx, name)
	if err != nil {
		return Category{}, WrapSource(SourceCategories, err)
	}
	if s.notify != nil {
		if err := s.notify.CategoryCreated(ctx, c); err != nil {
			log.WithFields(log.Fields{"category": c.ID, "error": err}).Warn("category-created notification failed")
		}
	}
	return c, nil
}
