// Package aggregator joins categories, tasks and statuses from three
// independently owned sources into one hierarchical todo view.
//
// Any fetch failure aborts the run. The failing source is attributed in a
// fixed priority order (categories, then tasks, then statuses) so the result
// does not depend on which concurrent fetch happened to finish first.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

const tracerName = "todo-gateway/aggregator"

// CategoryLister lists categories from the local store.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// TaskLister lists tasks from the remote task service.
type TaskLister interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
}

// StatusLister lists statuses from the remote status service.
type StatusLister interface {
	ListStatuses(ctx context.Context) ([]domain.Status, error)
}

// Config tunes an Aggregator. The zero value is usable.
type Config struct {
	// Parallel fetches the two remote sources concurrently once categories
	// are loaded. When false every fetch runs in order and stops at the first failure.
	Parallel bool
	Labels   Labels
	Logger   *log.Logger
	Tracer   trace.Tracer

	now   func() time.Time
	newID func() string
}

// Aggregator builds todo views. It holds no per-request state and is safe
// for concurrent use.
type Aggregator struct {
	categories CategoryLister
	tasks      TaskLister
	statuses   StatusLister

	parallel bool
	labels   Labels
	logger   *log.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// New creates an Aggregator over the three sources.
func New(categories CategoryLister, tasks TaskLister, statuses StatusLister, cfg Config) *Aggregator {
	a := &Aggregator{
		categories: categories,
		tasks:      tasks,
		statuses:   statuses,
		parallel:   cfg.Parallel,
		labels:     cfg.Labels.withDefaults(),
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
		now:        cfg.now,
		newID:      cfg.newID,
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(tracerName)
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.newID == nil {
		a.newID = uuid.NewString
	}
	return a
}

// Produce runs an aggregation and wraps the outcome in an envelope.
func (a *Aggregator) Produce(ctx context.Context) domain.Envelope {
	view, err := a.Aggregate(ctx)
	if err != nil {
		return domain.FailureEnvelope(err)
	}
	return domain.SuccessEnvelope(view)
}

// Aggregate fetches every source and joins them. On failure the returned
// error is a *domain.SourceError naming the source that failed.
func (a *Aggregator) Aggregate(ctx context.Context) (view *domain.View, err error) {
	requestID := a.newID()
	ctx, span := a.tracer.Start(ctx, "todos.aggregate", trace.WithAttributes(
		attribute.String("todo.request_id", requestID),
		attribute.Bool("todo.parallel", a.parallel),
	))
	metrics := newAggregationMetrics(a.logger, requestID, a.parallel)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.Log(err)
	}()

	categories, err := fetch(ctx, a.tracer, metrics, domain.SourceCategories, a.categories.ListCategories)
	if err != nil {
		return nil, err
	}

	var tasks []domain.Task
	var statuses []domain.Status
	if a.parallel {
		tasks, statuses, err = a.fetchRemotesConcurrently(ctx, metrics)
	} else {
		tasks, statuses, err = a.fetchRemotesInOrder(ctx, metrics)
	}
	if err != nil {
		return nil, err
	}

	joinStart := time.Now()
	data := Join(categories, tasks, statuses, a.labels)
	metrics.ObserveJoin(time.Since(joinStart))

	return &domain.View{
		Metadata: domain.Metadata{
			RequestID: requestID,
			DataFlow: domain.DataFlow{
				Categories: domain.SourceFlow{Source: a.labels.Categories, Count: len(categories)},
				Tasks:      domain.SourceFlow{Source: a.labels.Tasks, Count: len(tasks)},
				Statuses:   domain.SourceFlow{Source: a.labels.Statuses, Count: len(statuses)},
			},
			Timestamp: a.now().UTC(),
		},
		Data: data,
	}, nil
}

func (a *Aggregator) fetchRemotesInOrder(ctx context.Context, m *aggregationMetrics) ([]domain.Task, []domain.Status, error) {
	tasks, err := fetch(ctx, a.tracer, m, domain.SourceTasks, a.tasks.ListTasks)
	if err != nil {
		return nil, nil, err
	}
	statuses, err := fetch(ctx, a.tracer, m, domain.SourceStatuses, a.statuses.ListStatuses)
	if err != nil {
		return nil, nil, err
	}
	return tasks, statuses, nil
}

// fetchRemotesConcurrently waits for both remote fetches. A failure does not
// cancel the sibling; when both fail the task source is reported.
func (a *Aggregator) fetchRemotesConcurrently(ctx context.Context, m *aggregationMetrics) ([]domain.Task, []domain.Status, error) {
	var (
		wg                sync.WaitGroup
		tasks             []domain.Task
		statuses          []domain.Status
		taskErr, statusErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tasks, taskErr = fetch(ctx, a.tracer, m, domain.SourceTasks, a.tasks.ListTasks)
	}()
	go func() {
		defer wg.Done()
		statuses, statusErr = fetch(ctx, a.tracer, m, domain.SourceStatuses, a.statuses.ListStatuses)
	}()
	wg.Wait()

	if taskErr != nil {
		return nil, nil, taskErr
	}
	if statusErr != nil {
		return nil, nil, statusErr
	}
	return tasks, statuses, nil
}

func fetch[T any](ctx context.Context, tracer trace.Tracer, m *aggregationMetrics, src domain.Source, list func(context.Context) ([]T, error)) ([]T, error) {
	ctx, span := tracer.Start(ctx, "todos.fetch."+string(src), trace.WithAttributes(attribute.String("todo.source", string(src))))
	defer span.End()

	start := time.Now()
	items, err := list(ctx)
	m.ObserveFetch(src, time.Since(start), len(items))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, domain.WrapSource(src, err)
	}
	span.SetAttributes(attribute.Int("todo.items", len(items)))
	return items, nil
}
