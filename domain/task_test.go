package domain

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestStatusUnmarshalAcceptsServiceShapes(t *testing.T) {
	cases := map[string]string{
		"stored_row":  `{"id":3,"task_id":7,"status":"Completed","created_at":"2024-01-01T00:00:00"}`,
		"create_echo": `{"id":3,"task_id":7,"status_name":"Completed"}`,
		"camel_case":  `{"taskId":7,"statusName":"Completed"}`,
		"camel_wins":  `{"taskId":7,"task_id":9,"statusName":"Completed","status":"Pending"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var s Status
			if err := sonic.Unmarshal([]byte(payload), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if s.TaskID != 7 || s.StatusName != "Completed" {
				t.Fatalf("unexpected status: %+v", s)
			}
		})
	}
}

func TestStatusMarshalUsesCamelCase(t *testing.T) {
	payload, err := sonic.Marshal(Status{TaskID: 5, StatusName: "Done"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"taskId":5,"statusName":"Done"}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestAggregatedTaskMarshalsNullStatus(t *testing.T) {
	at := AggregatedTask{
		Task:       Task{ID: 1, Title: "T1", CategoryID: 1},
		DataSource: TaskProvenance{Task: "task-service", Status: StatusNotAvailable},
	}
	payload, err := sonic.Marshal(at)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"status":null`) {
		t.Fatalf("expected explicit null status, got %s", payload)
	}
	if !strings.Contains(string(payload), `"categoryId":1`) {
		t.Fatalf("expected task fields to be flattened, got %s", payload)
	}
}
