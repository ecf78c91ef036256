package aggregator

import (
	"context"
	"sync/atomic"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

type stubCategories struct {
	cats  []domain.Category
	err   error
	calls atomic.Int32
}

func (s *stubCategories) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Category(nil), s.cats...), nil
}

type stubTasks struct {
	tasks []domain.Task
	err   error
	calls atomic.Int32
	// gate, when set, blocks the fetch until it is closed.
	gate chan struct{}
}

func (s *stubTasks) ListTasks(ctx context.Context) ([]domain.Task, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Task(nil), s.tasks...), nil
}

type stubStatuses struct {
	statuses []domain.Status
	err      error
	calls    atomic.Int32
	// started, when set, is closed as soon as the fetch begins.
	started chan struct{}
}

func (s *stubStatuses) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	s.calls.Add(1)
	if s.started != nil {
		close(s.started)
	}
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Status(nil), s.statuses...), nil
}
