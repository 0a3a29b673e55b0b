package laundry

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the lifecycle state of a laundry order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPickedUp   OrderStatus = "picked_up"
	StatusProcessing OrderStatus = "processing"
	StatusReady      OrderStatus = "ready"
	StatusDelivered  OrderStatus = "delivered"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Label returns the human readable status name.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPickedUp:
		return "Picked Up"
	case StatusProcessing:
		return "Processing"
	case StatusReady:
		return "Ready"
	case StatusDelivered:
		return "Delivered"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return strings.TrimSpace(string(s))
	}
}

// OrderItem is a single billed line of an order.
type OrderItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Amount returns quantity multiplied by unit price.
func (i OrderItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer order placed with a provider for one service.
type Order struct {
	ID          string          `json:"id"`
	PlacedAt    time.Time       `json:"placed_at"`
	Customer    string          `json:"customer"`
	Provider    string          `json:"provider"`
	Service     string          `json:"service"`
	Status      OrderStatus     `json:"status"`
	Address     string          `json:"address"`
	Items       []OrderItem     `json:"items"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
}

// Subtotal sums the item amounts.
func (o Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount())
	}
	return total
}

// Amount is the billed total including delivery.
func (o Order) Amount() decimal.Decimal {
	return o.Subtotal().Add(o.DeliveryFee)
}
