package domain

import "github.com/bytedance/sonic"

// Task represents a unit of work served by the remote task service.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId"`
}

// Status is a lifecycle label served by the remote status service.
type Status struct {
	TaskID     int64  `json:"taskId"`
	StatusName string `json:"statusName"`
}

// statusPayload lists the field spellings the status service has used.
type statusPayload struct {
	TaskIDSnake     *int64  `json:"task_id"`
	TaskIDCamel     *int64  `json:"taskId"`
	StatusNameSnake *string `json:"status_name"`
	StatusNameCamel *string `json:"statusName"`
	StatusColumn    *string `json:"status"`
}

// UnmarshalJSON accepts both the stored row shape ({"task_id","status"}) and
// the shape echoed on create ({"task_id","status_name"}).
func (s *Status) UnmarshalJSON(data []byte) error {
	var p statusPayload
	if err := sonic.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Status{}
	switch {
	case p.TaskIDCamel != nil:
		s.TaskID = *p.TaskIDCamel
	case p.TaskIDSnake != nil:
		s.TaskID = *p.TaskIDSnake
	}
	switch {
	case p.StatusNameCamel != nil:
		s.StatusName = *p.StatusNameCamel
	case p.StatusNameSnake != nil:
		s.StatusName = *p.StatusNameSnake
	case p.StatusColumn != nil:
		s.StatusName = *p.StatusColumn
	}
	return nil
}
