package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCategoryStore struct {
	cats      []Category
	listErr   error
	insertErr error
	inserted  []string
}

func (f *fakeCategoryStore) ListCategories(ctx context.Context) ([]Category, error) {
	return f.cats, f.listErr
}

func (f *fakeCategoryStore) InsertCategory(ctx context.Context, name string) (Category, error) {
	f.inserted = append(f.inserted, name)
	if f.insertErr != nil {
		return Category{}, f.insertErr
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := Category{ID: int64(len(f.inserted)), Name: name, CreatedAt: now, UpdatedAt: now}
	f.cats = append(f.cats, c)
	return c, nil
}

type recordingNotifier struct {
	created []Category
	err     error
}

func (r *recordingNotifier) CategoryCreated(ctx context.Context, c Category) error {
	r.created = append(r.created, c)
	return r.err
}

func TestCreateCategoryRejectsBlankName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		st := &fakeCategoryStore{}
		svc := NewCategoryService(st, nil)
		_, err := svc.Create(context.Background(), name)
		if !errors.Is(err, ErrCategoryNameRequired) {
			t.Fatalf("name %q: expected ErrCategoryNameRequired, got %v", name, err)
		}
		if len(st.inserted) != 0 {
			t.Fatalf("name %q: store should not be called, got %v", name, st.inserted)
		}
	}
}

func TestCreateCategoryPersistsAndNotifies(t *testing.T) {
	st := &fakeCategoryStore{}
	n := &recordingNotifier{}
	svc := NewCategoryService(st, n)

	c, err := svc.Create(context.Background(), "  Work ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID != 1 || c.Name != "Work" {
		t.Fatalf("unexpected category: %+v", c)
	}
	if !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Fatalf("expected equal timestamps, got %v and %v", c.CreatedAt, c.UpdatedAt)
	}
	if len(n.created) != 1 || n.created[0].ID != 1 {
		t.Fatalf("expected one notification, got %+v", n.created)
	}
}

func TestCreateCategoryNotifyFailureIsNotFatal(t *testing.T) {
	st := &fakeCategoryStore{}
	svc := NewCategoryService(st, &recordingNotifier{err: errors.New("queue down")})

	if _, err := svc.Create(context.Background(), "Home"); err != nil {
		t.Fatalf("expected success despite notifier failure, got %v", err)
	}
}

func TestCreateCategoryStoreFailureIsTagged(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewCategoryService(&fakeCategoryStore{insertErr: storeErr}, nil)

	_, err := svc.Create(context.Background(), "Work")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	src, ok := SourceOf(err)
	if !ok || src != SourceCategories {
		t.Fatalf("expected categories source, got %q (%v)", src, ok)
	}
}

func TestListCategoriesTagsFailure(t *testing.T) {
	svc := NewCategoryService(&fakeCategoryStore{listErr: errors.New("boom")}, nil)
	_, err := svc.List(context.Background())
	if src, ok := SourceOf(err); !ok || src != SourceCategories {
		t.Fatalf("expected categories source, got %q (%v)", src, ok)
	}
}
