package domain

import (
	"errors"
	"time"

	"github.com/bytedance/sonic"
)

// StatusNotAvailable is the status provenance used when no status matched a task.
const StatusNotAvailable = "not-available"

// TaskProvenance names the upstreams that produced an aggregated task.
type TaskProvenance struct {
	Task   string `json:"task"`
	Status string `json:"status"`
}

// AggregatedTask is a task joined with its status. Status is nil when the
// status service had no entry for the task.
type AggregatedTask struct {
	Task
	Status     *Status        `json:"status"`
	DataSource TaskProvenance `json:"dataSource"`
}

// AggregatedCategory is a category with the tasks that reference it, in the
// order the task service returned them.
type AggregatedCategory struct {
	Category
	Tasks      []AggregatedTask `json:"tasks"`
	DataSource string           `json:"dataSource"`
}

// SourceFlow records what one upstream contributed to an aggregation.
type SourceFlow struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// DataFlow holds the per-upstream item counts of an aggregation.
type DataFlow struct {
	Categories SourceFlow `json:"categories"`
	Tasks      SourceFlow `json:"tasks"`
	Statuses   SourceFlow `json:"statuses"`
}

// Metadata describes a completed aggregation.
type Metadata struct {
	RequestID string    `json:"requestId"`
	DataFlow  DataFlow  `json:"dataFlow"`
	Timestamp time.Time `json:"timestamp"`
}

// View is the result of a successful aggregation.
type View struct {
	Metadata Metadata             `json:"metadata"`
	Data     []AggregatedCategory `json:"data"`
}

// ServiceErrors holds the failure message of the upstream that broke an
// aggregation. Exactly one field is set; the others stay nil.
type ServiceErrors struct {
	CategoryStore *string `json:"categoryStore,omitempty"`
	TaskService   *string `json:"taskService,omitempty"`
	StatusService *string `json:"statusService,omitempty"`
}

// Failure describes why an aggregation could not complete.
type Failure struct {
	Message       string        `json:"message"`
	Details       string        `json:"details"`
	ServiceErrors ServiceErrors `json:"serviceErrors"`
}

// Envelope is what callers receive from an aggregation: either Metadata and
// Data, or Error.
type Envelope struct {
	Success  bool                 `json:"success"`
	Metadata *Metadata            `json:"metadata,omitempty"`
	Data     []AggregatedCategory `json:"data,omitempty"`
	Error    *Failure             `json:"error,omitempty"`
}

// MarshalJSON keeps an empty data list on success and drops it on failure.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if !e.Success {
		return sonic.Marshal(struct {
			Success bool     `json:"success"`
			Error   *Failure `json:"error"`
		}{e.Success, e.Error})
	}
	data := e.Data
	if data == nil {
		data = []AggregatedCategory{}
	}
	return sonic.Marshal(struct {
		Success  bool                 `json:"success"`
		Metadata *Metadata            `json:"metadata"`
		Data     []AggregatedCategory `json:"data"`
	}{e.Success, e.Metadata, data})
}

// FailureMessage is the top level message of every failed aggregation.
const FailureMessage = "Failed to fetch todos"

// SuccessEnvelope wraps v.
func SuccessEnvelope(v *View) Envelope {
	md := v.Metadata
	return Envelope{Success: true, Metadata: &md, Data: v.Data}
}

// FailureEnvelope builds the error envelope for err. The service error field
// is chosen from the SourceError tag on err; untagged errors set none.
func FailureEnvelope(err error) Envelope {
	f := &Failure{Message: FailureMessage, Details: err.Error()}
	var se *SourceError
	if errors.As(err, &se) {
		cause := se.Err.Error()
		f.Details = cause
		switch se.Source {
		case SourceCategories:
			f.ServiceErrors.CategoryStore = &cause
		case SourceTasks:
			f.ServiceErrors.TaskService = &cause
		case SourceStatuses:
			f.ServiceErrors.StatusService = &cause
		}
	}
	return Envelope{Success: false, Error: f}
}
