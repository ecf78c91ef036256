package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
)

// CategoryCreatedEvent is the message published after a category is stored.
const CategoryCreatedEvent = "category-created"

type queueAPI interface {
	EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error)
}

// QueueNotifier publishes category events to an Azure Storage queue.
type QueueNotifier struct {
	queue queueAPI
}

// NewQueueNotifier creates a notifier for the named queue.
func NewQueueNotifier(connStr, queue string) (*QueueNotifier, error) {
	queueClientOptions := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	q, err := azqueue.NewQueueClientFromConnectionString(connStr, queue, &queueClientOptions)
	if err != nil {
		return nil, err
	}
	return &QueueNotifier{queue: q}, nil
}

type categoryEvent struct {
	Type     string          `json:"type"`
	Category domain.Category `json:"category"`
	Time     int64           `json:"time"`
}

// CategoryCreated enqueues a category-created message for c.
func (n *QueueNotifier) CategoryCreated(ctx context.Context, c domain.Category) error {
	data, err := json.Marshal(categoryEvent{Type: CategoryCreatedEvent, Category: c, Time: time.Now().UnixNano()})
	if err != nil {
		return err
	}
	_, err = n.queue.EnqueueMessage(ctx, string(data), nil)
	return err
}
