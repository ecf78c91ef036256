package domain

import (
	"errors"
	"fmt"
)

// ErrCategoryNameRequired is returned when a category is created without a name.
var ErrCategoryNameRequired = errors.New("category name is required")

// Source identifies the upstream a piece of data, or a failure, came from.
type Source string

const (
	SourceCategories Source = "categories"
	SourceTasks      Source = "tasks"
	SourceStatuses   Source = "statuses"
)

// Sources lists every upstream in failure attribution priority order.
var Sources = []Source{SourceCategories, SourceTasks, SourceStatuses}

// SourceError tags a failure with the upstream that produced it.
type SourceError struct {
	Source Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// WrapSource returns err tagged with src, or nil when err is nil.
func WrapSource(src Source, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Source: src, Err: err}
}

// SourceOf reports the upstream tagged on err, if any.
func SourceOf(err error) (Source, bool) {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Source, true
	}
	return "", false
}
