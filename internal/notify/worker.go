package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
)

// Consumer processes notification tasks. Email delivery goes through the
// configured sender; with NopEmailSender the worker only records the event
// in its log, which is enough for development.
type Consumer struct {
	Logger zerolog.Logger
	Mail   common.EmailSender
}

// Register attaches the task handlers to the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskOrderReceipt, c.HandleOrderReceipt)
	mux.HandleFunc(TaskOrderStatus, c.HandleOrderStatus)
}

// HandleOrderReceipt sends the order confirmation notice.
func (c *Consumer) HandleOrderReceipt(ctx context.Context, task *asynq.Task) error {
	var payload OrderReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode order receipt payload: %w", err)
	}
	c.Logger.Info().
		Str("orderId", payload.OrderID).
		Str("userId", payload.UserID).
		Float64("finalAmount", payload.FinalAmount).
		Strs("coupons", payload.CouponCodes).
		Msg("order receipt notification")

	if c.Mail == nil {
		return nil
	}
	subject := fmt.Sprintf("Order %s confirmed", payload.OrderID)
	body := fmt.Sprintf("<p>Thanks %s, your order %s for %.2f has been placed.</p>",
		payload.Username, payload.OrderID, payload.FinalAmount)
	if err := c.Mail.Send(payload.Username, subject, body); err != nil {
		return fmt.Errorf("send order receipt: %w", err)
	}
	return nil
}

// HandleOrderStatus sends the status change notice.
func (c *Consumer) HandleOrderStatus(ctx context.Context, task *asynq.Task) error {
	var payload OrderStatusPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode order status payload: %w", err)
	}
	c.Logger.Info().
		Str("orderId", payload.OrderID).
		Str("userId", payload.UserID).
		Str("status", payload.Status).
		Msg("order status notification")

	if c.Mail == nil {
		return nil
	}
	subject := fmt.Sprintf("Order %s is now %s", payload.OrderID, payload.Status)
	body := fmt.Sprintf("<p>Hi %s, your order %s is now %s.</p>",
		payload.Username, payload.OrderID, payload.Status)
	if err := c.Mail.Send(payload.Username, subject, body); err != nil {
		return fmt.Errorf("send order status: %w", err)
	}
	return nil
}
