// Package store holds the read-only, in-memory order data that backs reports.
package store

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
)

//go:embed seed/orders.json
var seedOrders []byte

// ErrNotFound is returned when an order id is unknown.
var ErrNotFound = errors.New("store: order not found")

// OrderFilter narrows ListOrders results. Zero fields do not filter.
type OrderFilter struct {
	Range    laundry.DateRange
	Provider string
	Customer string
	// Party matches either the provider or the customer.
	Party string
}

// Store serves mock orders. It is safe for concurrent readers because it is never written after construction.
type Store struct {
	orders []laundry.Order
	byID   map[string]int
}

// New builds a store over a private copy of orders.
func New(orders []laundry.Order) *Store {
	s := &Store{
		orders: make([]laundry.Order, len(orders)),
		byID:   make(map[string]int, len(orders)),
	}
	for i, order := range orders {
		s.orders[i] = cloneOrder(order)
		s.byID[order.ID] = i
	}
	return s
}

// Load decodes a JSON array of orders.
func Load(r io.Reader) (*Store, error) {
	var orders []laundry.Order
	if err := json.NewDecoder(r).Decode(&orders); err != nil {
		return nil, fmt.Errorf("store: decode orders: %w", err)
	}
	return New(orders), nil
}

// LoadFile reads orders from path, falling back to the embedded fixture when path is empty.
func LoadFile(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open seed: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Default loads the embedded fixture.
func Default() (*Store, error) {
	return Load(bytes.NewReader(seedOrders))
}

// Len returns the number of orders held.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.orders)
}

// ListOrders returns copies of the orders matching filter in fixture order.
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]laundry.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]laundry.Order, 0)
	if s == nil {
		return out, nil
	}
	checkRange := !filter.Range.Start.IsZero() && !filter.Range.End.IsZero()
	for _, order := range s.orders {
		if checkRange && !filter.Range.Contains(order.PlacedAt) {
			continue
		}
		if !matches(order.Provider, filter.Provider) || !matches(order.Customer, filter.Customer) {
			continue
		}
		if filter.Party != "" && !matches(order.Provider, filter.Party) && !matches(order.Customer, filter.Party) {
			continue
		}
		out = append(out, cloneOrder(order))
	}
	return out, nil
}

// GetOrder fetches a single order by id.
func (s *Store) GetOrder(ctx context.Context, id string) (laundry.Order, error) {
	if err := ctx.Err(); err != nil {
		return laundry.Order{}, err
	}
	if s == nil {
		return laundry.Order{}, ErrNotFound
	}
	idx, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return laundry.Order{}, ErrNotFound
	}
	return cloneOrder(s.orders[idx]), nil
}

func matches(value, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), want)
}

func cloneOrder(o laundry.Order) laundry.Order {
	if o.Items != nil {
		items := make([]laundry.OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}
