package upstream

import (
	"context"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

const (
	DefaultTasksPath    = "/api/tasks"
	DefaultStatusesPath = "/api/statuses"
)

// TaskSource lists tasks from the remote task service.
type TaskSource struct {
	client *Client
	path   string
}

func NewTaskSource(client *Client, path string) *TaskSource {
	if path == "" {
		path = DefaultTasksPath
	}
	return &TaskSource{client: client, path: path}
}

// ListTasks returns every task in the order the service sent them.
func (s *TaskSource) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := s.client.GetJSON(ctx, s.path, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// StatusSource lists statuses from the remote status service.
type StatusSource struct {
	client *Client
	path   string
}

func NewStatusSource(client *Client, path string) *StatusSource {
	if path == "" {
		path = DefaultStatusesPath
	}
	return &StatusSource{client: client, path: path}
}

// ListStatuses returns every status in the order the service sent them.
func (s *StatusSource) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	var statuses []domain.Status
	if err := s.client.GetJSON(ctx, s.path, &statuses); err != nil {
		return nil, err
	}
	if statuses == nil {
		statuses = []domain.Status{}
	}
	return statuses, nil
}
