package notify

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/events"
)

// Enqueuer turns domain events into asynq tasks for the notification worker.
// It implements events.Notifier; unknown topics are ignored so new events do
// not break older workers.
type Enqueuer struct {
	Client *asynq.Client
	Queue  string
}

// Notify enqueues the task matching the event topic.
func (e Enqueuer) Notify(ctx context.Context, event events.Event) error {
	if e.Client == nil {
		return nil
	}

	var task *asynq.Task
	var err error
	switch event.Topic {
	case events.TopicOrderCreated:
		task, err = NewOrderReceiptTask(OrderReceiptPayload{
			OrderID:     stringField(event.Payload, "orderId"),
			UserID:      stringField(event.Payload, "userId"),
			Username:    stringField(event.Payload, "username"),
			FinalAmount: floatField(event.Payload, "total"),
			CouponCodes: stringsField(event.Payload, "coupons"),
		})
	case events.TopicOrderStatusChanged:
		task, err = NewOrderStatusTask(OrderStatusPayload{
			OrderID:  stringField(event.Payload, "orderId"),
			UserID:   stringField(event.Payload, "userId"),
			Username: stringField(event.Payload, "username"),
			Status:   stringField(event.Payload, "status"),
		})
	default:
		return nil
	}
	if err != nil {
		return err
	}

	queue := e.Queue
	if queue == "" {
		queue = QueueDefault
	}
	_, err = e.Client.EnqueueContext(ctx, task, asynq.Queue(queue))
	return err
}

func stringField(p events.Payload, key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func floatField(p events.Payload, key string) float64 {
	if p == nil {
		return 0
	}
	if v, ok := p[key].(float64); ok {
		return v
	}
	return 0
}

func stringsField(p events.Payload, key string) []string {
	if p == nil {
		return nil
	}
	if v, ok := p[key].([]string); ok {
		return v
	}
	return nil
}
