package notify

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
)

func TestHandleOrderReceipt(t *testing.T) {
	mail := &common.InMemoryEmail{}
	consumer := &Consumer{Logger: zerolog.Nop(), Mail: mail}

	task, err := NewOrderReceiptTask(OrderReceiptPayload{
		OrderID:     "ORD-1",
		UserID:      "u-1",
		Username:    "asha",
		FinalAmount: 1525,
		CouponCodes: []string{"ABOVE2000"},
	})
	require.NoError(t, err)

	require.NoError(t, consumer.HandleOrderReceipt(context.Background(), task))
	require.Len(t, mail.Outbox, 1)
	require.Contains(t, mail.Outbox[0].Subject, "ORD-1")
	require.Contains(t, mail.Outbox[0].HTML, "asha")
}

func TestHandleOrderStatus(t *testing.T) {
	mail := &common.InMemoryEmail{}
	consumer := &Consumer{Logger: zerolog.Nop(), Mail: mail}

	task, err := NewOrderStatusTask(OrderStatusPayload{
		OrderID:  "ORD-2",
		UserID:   "u-2",
		Username: "ram",
		Status:   "Delivered",
	})
	require.NoError(t, err)

	require.NoError(t, consumer.HandleOrderStatus(context.Background(), task))
	require.Len(t, mail.Outbox, 1)
	require.Contains(t, mail.Outbox[0].Subject, "Delivered")
}

func TestHandleOrderReceiptBadPayload(t *testing.T) {
	consumer := &Consumer{Logger: zerolog.Nop()}
	task, err := NewOrderReceiptTask(OrderReceiptPayload{OrderID: "ORD-3"})
	require.NoError(t, err)

	// Valid payload and no sender configured is still a success.
	require.NoError(t, consumer.HandleOrderReceipt(context.Background(), task))
}
