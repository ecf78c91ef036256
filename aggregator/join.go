package aggregator

import "github.com/ashiphsayyad32/Zenimax-microservice-app/domain"

// Labels name each upstream in the provenance attached to aggregated items.
type Labels struct {
	Categories string
	Tasks      string
	Statuses   string
}

// DefaultLabels are used for any label left empty.
var DefaultLabels = Labels{
	Categories: "category-store",
	Tasks:      "task-service",
	Statuses:   "status-service",
}

func (l Labels) withDefaults() Labels {
	if l.Categories == "" {
		l.Categories = DefaultLabels.Categories
	}
	if l.Tasks == "" {
		l.Tasks = DefaultLabels.Tasks
	}
	if l.Statuses == "" {
		l.Statuses = DefaultLabels.Statuses
	}
	return l
}

// FirstStatusWins indexes statuses by task id. When several statuses name the
// same task, the earliest one in the sequence is kept and the rest are ignored.
func FirstStatusWins(statuses []domain.Status) map[int64]domain.Status {
	idx := make(map[int64]domain.Status, len(statuses))
	for _, s := range statuses {
		if _, seen := idx[s.TaskID]; seen {
			continue
		}
		idx[s.TaskID] = s
	}
	return idx
}

// Join nests tasks under their categories and attaches statuses. Category and
// task order follow the input order. Tasks whose category is not listed are dropped;
// tasks without a status get a nil Status.
func Join(categories []domain.Category, tasks []domain.Task, statuses []domain.Status, labels Labels) []domain.AggregatedCategory {
	labels = labels.withDefaults()
	byTask := FirstStatusWins(statuses)

	byCategory := make(map[int64][]domain.AggregatedTask, len(categories))
	for _, t := range tasks {
		at := domain.AggregatedTask{
			Task:       t,
			DataSource: domain.TaskProvenance{Task: labels.Tasks, Status: domain.StatusNotAvailable},
		}
		if s, ok := byTask[t.ID]; ok {
			s := s
			at.Status = &s
			at.DataSource.Status = labels.Statuses
		}
		byCategory[t.CategoryID] = append(byCategory[t.CategoryID], at)
	}

	out := make([]domain.AggregatedCategory, 0, len(categories))
	for _, c := range categories {
		joined := byCategory[c.ID]
		if joined == nil {
			joined = []domain.AggregatedTask{}
		}
		out = append(out, domain.AggregatedCategory{
			Category:   c,
			Tasks:      joined,
			DataSource: labels.Categories,
		})
	}
	return out
}
