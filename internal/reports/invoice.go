package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
	"github.com/laundryconnect/laundryconnect/internal/notify"
	"github.com/laundryconnect/laundryconnect/internal/store"
)

// InvoiceFileName returns the download name for an order invoice.
func InvoiceFileName(orderID string, format Format) string {
	return fmt.Sprintf("LaundryConnect_Invoice_%s.%s", orderID, format.Extension())
}

// InvoiceDocument builds the single-order document.
func (s *Service) InvoiceDocument(ctx context.Context, orderID string) (ReportDocument, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return ReportDocument{}, ErrMissingOrderID
	}
	order, err := s.source.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ReportDocument{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return ReportDocument{}, err
	}
	return s.buildInvoice(order), nil
}

// GenerateInvoice renders the invoice for orderID and hands it to sink.
func (s *Service) GenerateInvoice(ctx context.Context, orderID string, format Format, sink Sink) (Artifact, error) {
	started := s.now()
	genID := s.newID()
	if format == "" {
		format = FormatPDF
	}
	logger := s.logger.With(
		slog.String("generation_id", genID),
		slog.String("order_id", orderID),
		slog.String("format", string(format)),
	)
	if _, err := ParseFormat(string(format)); err != nil {
		s.observe(invoiceKind, format, outcomeInvalid, 0, started)
		return Artifact{}, err
	}

	doc, err := s.InvoiceDocument(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrMissingOrderID) || errors.Is(err, ErrOrderNotFound) {
			logger.Info("invoice rejected", slog.Any("error", err))
			s.notify(ctx, notify.Notification{
				Title:       "Invoice unavailable",
				Description: "The requested order could not be found.",
				Variant:     notify.VariantDestructive,
				Reference:   genID,
			})
			s.observe(invoiceKind, format, outcomeInvalid, 0, started)
			return Artifact{}, err
		}
		return Artifact{}, s.fail(ctx, logger, genID, invoiceKind, format, started, fmt.Errorf("load order: %w", err))
	}
	return s.deliver(ctx, logger, genID, invoiceKind, format, started, doc, InvoiceFileName(strings.TrimSpace(orderID), format), sink)
}

func (s *Service) buildInvoice(order laundry.Order) ReportDocument {
	f := s.formatter
	details := TableSection{
		Heading: "Invoice Details",
		Columns: []string{"Field", "Value"},
		Rows: [][]string{
			{"Invoice No.", "INV-" + strings.TrimPrefix(order.ID, "ORD-")},
			{"Order ID", order.ID},
			{"Order Date", laundry.FormatDay(order.PlacedAt)},
			{"Customer", order.Customer},
			{"Provider", order.Provider},
			{"Service", order.Service},
			{"Status", order.Status.Label()},
			{"Delivery Address", order.Address},
		},
	}

	items := TableSection{
		Heading: "Items",
		Columns: []string{"Item", "Qty", "Unit Price", "Amount"},
		Rows:    make([][]string, 0, len(order.Items)+1),
		Values:  make([][]*Number, 0, len(order.Items)+1),
	}
	money := func(d decimal.Decimal) *Number { return &Number{Value: d, Money: true} }
	total := decimal.Zero
	quantity := 0
	for _, item := range order.Items {
		unit := item.UnitPrice.Round(2)
		amount := item.Amount().Round(2)
		total = total.Add(amount)
		quantity += item.Quantity
		items.Rows = append(items.Rows, []string{item.Name, strconv.Itoa(item.Quantity), f.Money(unit), f.Money(amount)})
		items.Values = append(items.Values, []*Number{nil, {Value: decimal.NewFromInt(int64(item.Quantity))}, money(unit), money(amount)})
	}
	fee := order.DeliveryFee.Round(2)
	items.Rows = append(items.Rows, []string{"Delivery Fee", "", "", f.Money(fee)})
	items.Values = append(items.Values, []*Number{nil, nil, nil, money(fee)})
	total = total.Add(fee)
	items.Footer = []string{footerLabel, strconv.Itoa(quantity), "", f.Money(total)}
	items.FooterValues = []*Number{nil, {Value: decimal.NewFromInt(int64(quantity))}, nil, money(total)}

	return ReportDocument{
		Metadata: Metadata{
			Title:       "Invoice",
			Subtitle:    s.company,
			GeneratedAt: s.now(),
			RangeLabel:  fmt.Sprintf("Order %s placed %s", order.ID, laundry.FormatDay(order.PlacedAt)),
			Notes:       []string{"Payment is collected on delivery.", "Thank you for choosing " + s.company + "!"},
		},
		Sections: []TableSection{details, items},
	}
}
