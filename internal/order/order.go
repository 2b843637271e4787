package order

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Only staff mutate it after creation.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// ValidStatus reports whether the value is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ErrNotFound indicates the requested order could not be located.
var ErrNotFound = errors.New("order not found")

// ErrInsufficientStock is returned when the conditional stock decrement
// matches no row, aborting the order transaction.
var ErrInsufficientStock = errors.New("insufficient stock")

// Item is a snapshotted order line. Immutable after creation.
type Item struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Qty       int
}

// Location is the delivery destination.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Order is the persisted record of a placed order. Monetary fields satisfy
// FinalAmount = TotalAmount - DiscountApplied + DeliveryCharge exactly.
type Order struct {
	ID              string
	UserID          string
	Username        string
	MobileNumber    string
	Items           []Item
	TotalAmount     decimal.Decimal
	DiscountApplied decimal.Decimal
	DeliveryCharge  decimal.Decimal
	FinalAmount     decimal.Decimal
	CouponCodes     []string
	Location        Location
	Status          Status
	CreatedAt       time.Time
}

// Draft is everything the store needs to persist an order atomically:
// the order itself, plus the coupon codes to mark used in the ledger.
// Stock decrements derive from the items.
type Draft struct {
	Order Order
}

// NewID generates a time-based order identifier with a short random suffix
// to disambiguate same-millisecond submissions.
func NewID(now time.Time) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + hex.EncodeToString(suffix)
}
