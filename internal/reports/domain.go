package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
)

// ReportType enumerates the reports the catalog can produce.
type ReportType string

const (
	ReportRevenue   ReportType = "revenue"
	ReportOrders    ReportType = "orders"
	ReportProviders ReportType = "providers"
	ReportCustomers ReportType = "customers"
	ReportServices  ReportType = "services"
)

// ReportTypes lists every report type in display order.
func ReportTypes() []ReportType {
	return []ReportType{ReportRevenue, ReportOrders, ReportProviders, ReportCustomers, ReportServices}
}

// ParseReportType normalises raw and rejects unknown values.
func ParseReportType(raw string) (ReportType, error) {
	t := ReportType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ReportTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReportType, raw)
}

// GroupBy selects the key used to bucket records.
type GroupBy int

const (
	GroupByDate GroupBy = iota
	GroupByEntity
	GroupByService
	GroupByStatus
)

func (g GroupBy) String() string {
	switch g {
	case GroupByDate:
		return "date"
	case GroupByEntity:
		return "entity"
	case GroupByService:
		return "service"
	case GroupByStatus:
		return "status"
	default:
		return fmt.Sprintf("groupby(%d)", int(g))
	}
}

// Format is the serialisation of a finished document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat defaults to PDF when raw is empty.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Extension returns the file extension without a dot.
func (f Format) Extension() string {
	if f == "" {
		return string(FormatPDF)
	}
	return string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/pdf"
	}
}

// TransactionRecord is the flat, read-only projection of an order used for aggregation.
type TransactionRecord struct {
	ID        string
	Date      time.Time
	EntityKey string
	Service   string
	Status    laundry.OrderStatus
	Amount    decimal.Decimal
}

// AggregatedGroup is one bucket of records sharing a key.
type AggregatedGroup struct {
	Key         string          `json:"key"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Number is the unformatted value behind a count or money cell.
type Number struct {
	Value decimal.Decimal
	Money bool
}

// TableSection is one titled table of a document.
type TableSection struct {
	Heading string     `json:"heading"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Footer  []string   `json:"footer,omitempty"`
	// Values mirrors Rows with the numbers behind numeric cells. Nil entries, or a nil Values, mark text.
	Values       [][]*Number `json:"-"`
	FooterValues []*Number   `json:"-"`
}

// Value returns the number behind body cell (row, col), or nil for text cells.
func (s TableSection) Value(row, col int) *Number {
	if row < 0 || row >= len(s.Values) || col < 0 || col >= len(s.Values[row]) {
		return nil
	}
	return s.Values[row][col]
}

// FooterValue returns the number behind footer cell col, or nil for text cells.
func (s TableSection) FooterValue(col int) *Number {
	if col < 0 || col >= len(s.FooterValues) {
		return nil
	}
	return s.FooterValues[col]
}

// Metadata describes the document header.
type Metadata struct {
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	RangeLabel  string    `json:"range_label"`
	Notes       []string  `json:"notes,omitempty"`
}

// ReportDocument is the renderer input built once per invocation.
type ReportDocument struct {
	Metadata Metadata       `json:"metadata"`
	Sections []TableSection `json:"sections"`
}

// Request carries the parameters supplied by the UI shell.
type Request struct {
	Start        time.Time
	End          time.Time
	Type         ReportType
	EntityFilter string
	Format       Format
}

// Range returns the requested date range.
func (r Request) Range() laundry.DateRange {
	return laundry.NewDateRange(r.Start, r.End)
}

// Artifact is a finished, downloadable document.
type Artifact struct {
	GenerationID string
	Name         string
	ContentType  string
	Data         []byte
	Pages        int
}

// Sink receives finished artifacts, e.g. an HTTP response or a directory.
type Sink interface {
	Save(ctx context.Context, artifact Artifact) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, artifact Artifact) error

// Save calls f.
func (f SinkFunc) Save(ctx context.Context, artifact Artifact) error {
	return f(ctx, artifact)
}

var (
	// ErrMissingDateRange is returned when a bound is absent or start is after end.
	ErrMissingDateRange = errors.New("reports: missing or invalid date range")
	// ErrRenderFailure wraps every internal failure after validation.
	ErrRenderFailure = errors.New("reports: render failure")
	// ErrUnknownReportType rejects report types outside the catalog.
	ErrUnknownReportType = errors.New("reports: unknown report type")
	// ErrUnknownFormat rejects unsupported output formats.
	ErrUnknownFormat = errors.New("reports: unknown format")
	// ErrMissingOrderID is returned when an invoice is requested without an order id.
	ErrMissingOrderID = errors.New("reports: order id required")
	// ErrOrderNotFound is returned when the invoice order does not exist.
	ErrOrderNotFound = errors.New("reports: order not found")
	// ErrMalformedSection signals a section whose rows do not match its columns.
	ErrMalformedSection = errors.New("reports: malformed section")
)
