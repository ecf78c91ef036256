package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

const (
	categoriesPartition = "categories"
	countersPartition   = "counters"
	categoryCounterKey  = "categories"
	edmInt64            = "Edm.Int64"

	// maxIDAttempts bounds the optimistic retries when allocating an id.
	maxIDAttempts = 10
)

// ErrIDAllocation is returned when a category id could not be reserved
// because of sustained concurrent writers.
var ErrIDAllocation = errors.New("could not allocate category id")

type tableAPI interface {
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	UpdateEntity(ctx context.Context, entity []byte, options *aztables.UpdateEntityOptions) (aztables.UpdateEntityResponse, error)
	NewListEntitiesPager(listOptions *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

// TableStore keeps categories in an Azure Storage table. Ids come from a
// counter entity advanced with ETag checks so concurrent writers never share one.
type TableStore struct {
	table tableAPI
}

func tablesClientOptions() *aztables.ClientOptions {
	return &aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
}

// NewTableStore creates a TableStore from the given connection string.
func NewTableStore(connStr, table string) (*TableStore, error) {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, tablesClientOptions())
	if err != nil {
		return nil, err
	}
	return &TableStore{table: svc.NewClient(table)}, nil
}

type categoryEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	CategoryID   int64  `json:"CategoryId,string"`
	IDType       string `json:"CategoryId@odata.type"`
	Name         string `json:"Name"`
	CreatedAt    string `json:"CreatedAtUtc"`
	UpdatedAt    string `json:"UpdatedAtUtc"`
}

type counterEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Last         int64  `json:"Last,string"`
	LastType     string `json:"Last@odata.type"`
}

// rowKey pads ids so lexical row order matches numeric id order.
func rowKey(id int64) string {
	return fmt.Sprintf("%019d", id)
}

func decodeCategoryEntity(data []byte) (domain.Category, error) {
	var ent categoryEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return domain.Category{}, err
	}
	id := ent.CategoryID
	if id == 0 {
		n, err := strconv.ParseInt(ent.RowKey, 10, 64)
		if err != nil {
			return domain.Category{}, fmt.Errorf("category row %q: %w", ent.RowKey, err)
		}
		id = n
	}
	c := domain.Category{ID: id, Name: ent.Name}
	if ent.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, ent.CreatedAt)
		if err != nil {
			return domain.Category{}, fmt.Errorf("category %d created time: %w", id, err)
		}
		c.CreatedAt = t
	}
	if ent.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, ent.UpdatedAt)
		if err != nil {
			return domain.Category{}, fmt.Errorf("category %d updated time: %w", id, err)
		}
		c.UpdatedAt = t
	}
	return c, nil
}

// ListCategories retrieves all categories ordered by id.
func (s *TableStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	filter := "PartitionKey eq '" + categoriesPartition + "'"
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	cats := []domain.Category{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			c, err := decodeCategoryEntity(e)
			if err != nil {
				return nil, err
			}
			cats = append(cats, c)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return cats, nil
}

// InsertCategory reserves the next id and stores the category under it.
func (s *TableStore) InsertCategory(ctx context.Context, name string) (domain.Category, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	stamp := now.Format(time.RFC3339Nano)
	payload, err := json.Marshal(categoryEntity{
		PartitionKey: categoriesPartition,
		RowKey:       rowKey(id),
		CategoryID:   id,
		IDType:       edmInt64,
		Name:         name,
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
	})
	if err != nil {
		return domain.Category{}, err
	}
	if _, err := s.table.AddEntity(ctx, payload, nil); err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return domain.Category{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *TableStore) nextID(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		resp, err := s.table.GetEntity(ctx, countersPartition, categoryCounterKey, nil)
		if err != nil {
			if !isStatus(err, http.StatusNotFound) {
				return 0, fmt.Errorf("read category counter: %w", err)
			}
			payload, err := json.Marshal(counterEntity{PartitionKey: countersPartition, RowKey: categoryCounterKey, Last: 1, LastType: edmInt64})
			if err != nil {
				return 0, err
			}
			if _, err := s.table.AddEntity(ctx, payload, nil); err != nil {
				if isStatus(err, http.StatusConflict) {
					continue
				}
				return 0, fmt.Errorf("create category counter: %w", err)
			}
			return 1, nil
		}

		var counter counterEntity
		if err := json.Unmarshal(resp.Value, &counter); err != nil {
			return 0, fmt.Errorf("decode category counter: %w", err)
		}
		counter.Last++
		counter.LastType = edmInt64
		payload, err := json.Marshal(counter)
		if err != nil {
			return 0, err
		}
		etag := resp.ETag
		_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &etag, UpdateMode: aztables.UpdateModeReplace})
		if err != nil {
			if isStatus(err, http.StatusPreconditionFailed) {
				continue
			}
			return 0, fmt.Errorf("advance category counter: %w", err)
		}
		return counter.Last, nil
	}
	return 0, ErrIDAllocation
}

// Ping lists a single entity to check the table answers.
func (s *TableStore) Ping(ctx context.Context) error {
	top := int32(1)
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Top: &top})
	if !pager.More() {
		return nil
	}
	_, err := pager.NextPage(ctx)
	return err
}

func isStatus(err error, code int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == code
}
