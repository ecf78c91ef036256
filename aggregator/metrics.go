package aggregator

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

const metricsEvent = "todos.aggregate.metrics"

type sourceMetrics struct {
	duration time.Duration
	items    int
	fetched  bool
}

// aggregationMetrics collects per-run timings. Each source slot is written by
// at most one goroutine.
type aggregationMetrics struct {
	logger    *log.Logger
	requestID string
	parallel  bool
	start     time.Time

	categories sourceMetrics
	tasks      sourceMetrics
	statuses   sourceMetrics
	joinTime   time.Duration
}

func newAggregationMetrics(logger *log.Logger, requestID string, parallel bool) *aggregationMetrics {
	return &aggregationMetrics{
		logger:    logger,
		requestID: requestID,
		parallel:  parallel,
		start:     time.Now(),
	}
}

func (m *aggregationMetrics) slot(src domain.Source) *sourceMetrics {
	switch src {
	case domain.SourceCategories:
		return &m.categories
	case domain.SourceTasks:
		return &m.tasks
	case domain.SourceStatuses:
		return &m.statuses
	}
	return nil
}

func (m *aggregationMetrics) ObserveFetch(src domain.Source, duration time.Duration, items int) {
	s := m.slot(src)
	if s == nil {
		return
	}
	s.fetched = true
	if duration > 0 {
		s.duration = duration
	}
	if items > 0 {
		s.items = items
	}
}

func (m *aggregationMetrics) ObserveJoin(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.joinTime = duration
}

func (m *aggregationMetrics) Log(err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"request_id": m.requestID,
		"parallel":   m.parallel,
		"total_ms":   durationToMillis(time.Since(m.start)),
	}
	for _, src := range domain.Sources {
		s := m.slot(src)
		if !s.fetched {
			continue
		}
		fields[string(src)+"_ms"] = durationToMillis(s.duration)
		fields[string(src)+"_count"] = s.items
	}
	if m.joinTime > 0 {
		fields["join_ms"] = durationToMillis(m.joinTime)
	}
	if err != nil {
		if src, ok := domain.SourceOf(err); ok {
			fields["error_source"] = string(src)
		}
		fields["error"] = err.Error()
		m.logger.WithFields(fields).Warn(metricsEvent)
		return
	}
	m.logger.WithFields(fields).Info(metricsEvent)
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
