package notify

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type identifiers processed by the notification worker.
const (
	TaskOrderReceipt = "notify:order_receipt"
	TaskOrderStatus  = "notify:order_status"
)

// QueueDefault is the asynq queue notifications are enqueued on.
const QueueDefault = "default"

// OrderReceiptPayload carries the fields needed to confirm a placed order.
type OrderReceiptPayload struct {
	OrderID     string   `json:"orderId"`
	UserID      string   `json:"userId"`
	Username    string   `json:"username"`
	FinalAmount float64  `json:"finalAmount"`
	CouponCodes []string `json:"couponCodes,omitempty"`
}

// OrderStatusPayload carries an order lifecycle transition.
type OrderStatusPayload struct {
	OrderID  string `json:"orderId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// NewOrderReceiptTask builds the asynq task for an order confirmation.
func NewOrderReceiptTask(payload OrderReceiptPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderReceipt, body), nil
}

// NewOrderStatusTask builds the asynq task for a status change notice.
func NewOrderStatusTask(payload OrderStatusPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatus, body), nil
}
