package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
	"github.com/laundryconnect/laundryconnect/internal/notify"
	"github.com/laundryconnect/laundryconnect/internal/store"
)

// Source exposes the read-only order queries the service relies on.
type Source interface {
	ListOrders(ctx context.Context, filter store.OrderFilter) ([]laundry.Order, error)
	GetOrder(ctx context.Context, id string) (laundry.Order, error)
}

// Rendered is the serialised document returned by a Renderer.
type Rendered struct {
	Data  []byte
	Pages int
}

// Renderer lays out and serialises a document in the requested format.
type Renderer interface {
	Render(ctx context.Context, doc ReportDocument, format Format) (Rendered, error)
}

// Recorder receives generation outcomes for metrics.
type Recorder interface {
	ObserveReport(kind, format, outcome string, pages int, elapsed time.Duration)
}

const (
	outcomeSuccess = "success"
	outcomeInvalid = "invalid"
	outcomeFailure = "failure"

	invoiceKind  = "invoice"
	unknownLabel = "unknown"
)

// ServiceConfig wires the service dependencies. Formatter, Notifier and Logger have defaults.
type ServiceConfig struct {
	Source    Source
	Renderer  Renderer
	Notifier  notify.Notifier
	Formatter *Formatter
	Recorder  Recorder
	Logger    *slog.Logger
	Company   string
}

// Service orchestrates aggregation, formatting, rendering and delivery.
// Every call builds and discards its own document; nothing is shared between calls.
type Service struct {
	source    Source
	renderer  Renderer
	notifier  notify.Notifier
	formatter *Formatter
	recorder  Recorder
	logger    *slog.Logger
	company   string
	now       func() time.Time
	newID     func() string
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		source:    cfg.Source,
		renderer:  cfg.Renderer,
		notifier:  cfg.Notifier,
		formatter: cfg.Formatter,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		company:   cfg.Company,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.formatter == nil {
		s.formatter = NewFormatter("$", "en")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.company == "" {
		s.company = "LaundryConnect"
	}
	return s
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Preview builds the document for on-screen display without rendering it.
func (s *Service) Preview(ctx context.Context, req Request) (ReportDocument, error) {
	rng := req.Range()
	if !rng.Valid() {
		return ReportDocument{}, ErrMissingDateRange
	}
	def, err := DefinitionFor(req.Type)
	if err != nil {
		return ReportDocument{}, err
	}
	return s.buildReport(ctx, def, rng, req.EntityFilter)
}

// Generate validates req, builds the report, renders it and hands the artifact to sink.
// Validation failures return ErrMissingDateRange or ErrUnknownReportType before any data is read.
// Every later failure is reported as ErrRenderFailure and nothing reaches sink.
func (s *Service) Generate(ctx context.Context, req Request, sink Sink) (Artifact, error) {
	started := s.now()
	genID := s.newID()
	format := req.Format
	if format == "" {
		format = FormatPDF
	}
	logger := s.logger.With(
		slog.String("generation_id", genID),
		slog.String("report_type", string(req.Type)),
		slog.String("format", string(format)),
	)

	rng := req.Range()
	if !rng.Valid() {
		logger.Info("report rejected", slog.String("reason", "missing date range"))
		s.notify(ctx, notify.Notification{
			Title:       "Missing date range",
			Description: "Please select both a start and an end date, with the start on or before the end.",
			Variant:     notify.VariantDestructive,
			Reference:   genID,
		})
		s.observe(string(req.Type), format, outcomeInvalid, 0, started)
		return Artifact{}, ErrMissingDateRange
	}
	def, err := DefinitionFor(req.Type)
	if err != nil {
		logger.Info("report rejected", slog.Any("error", err))
		s.notify(ctx, notify.Notification{
			Title:       "Unknown report type",
			Description: "Choose one of the available report types and try again.",
			Variant:     notify.VariantDestructive,
			Reference:   genID,
		})
		s.observe(string(req.Type), format, outcomeInvalid, 0, started)
		return Artifact{}, err
	}
	if _, err := ParseFormat(string(format)); err != nil {
		logger.Info("report rejected", slog.Any("error", err))
		s.notify(ctx, notify.Notification{
			Title:       "Unsupported format",
			Description: "Choose PDF, Excel or CSV and try again.",
			Variant:     notify.VariantDestructive,
			Reference:   genID,
		})
		s.observe(string(req.Type), format, outcomeInvalid, 0, started)
		return Artifact{}, err
	}

	doc, err := s.buildReport(ctx, def, rng, req.EntityFilter)
	if err != nil {
		return Artifact{}, s.fail(ctx, logger, genID, string(req.Type), format, started, fmt.Errorf("build report: %w", err))
	}
	name := fmt.Sprintf("%s-report-%s.%s", def.Type, laundry.FormatDay(s.now()), format.Extension())
	return s.deliver(ctx, logger, genID, string(req.Type), format, started, doc, name, sink)
}

func (s *Service) buildReport(ctx context.Context, def Definition, rng laundry.DateRange, entityFilter string) (ReportDocument, error) {
	filter := ParseEntityFilter(entityFilter)
	filter.Range = rng
	orders, err := s.source.ListOrders(ctx, filter)
	if err != nil {
		return ReportDocument{}, err
	}
	records := Project(orders, def.Entity)

	sections := make([]TableSection, 0, len(def.Sections))
	for _, spec := range def.Sections {
		groups := Aggregate(records, rng, spec.GroupBy)
		sections = append(sections, s.formatter.Format(spec.Heading, groups, spec.Columns))
	}

	meta := Metadata{
		Title:       def.Title,
		Subtitle:    s.company,
		GeneratedAt: s.now(),
		RangeLabel:  rng.Label(),
	}
	if note := describeFilter(entityFilter); note != "" {
		meta.Notes = append(meta.Notes, note)
	}
	return ReportDocument{Metadata: meta, Sections: sections}, nil
}

// deliver renders doc and saves it. It owns the failure path for everything after validation.
func (s *Service) deliver(ctx context.Context, logger *slog.Logger, genID, kind string, format Format, started time.Time, doc ReportDocument, name string, sink Sink) (Artifact, error) {
	rendered, err := s.render(ctx, doc, format)
	if err != nil {
		return Artifact{}, s.fail(ctx, logger, genID, kind, format, started, err)
	}
	artifact := Artifact{
		GenerationID: genID,
		Name:         name,
		ContentType:  format.ContentType(),
		Data:         rendered.Data,
		Pages:        rendered.Pages,
	}
	if sink != nil {
		if err := sink.Save(ctx, artifact); err != nil {
			return Artifact{}, s.fail(ctx, logger, genID, kind, format, started, fmt.Errorf("deliver: %w", err))
		}
	}
	logger.Info("report generated",
		slog.String("file", name),
		slog.Int("pages", rendered.Pages),
		slog.Int("bytes", len(rendered.Data)),
		slog.Duration("elapsed", s.now().Sub(started)),
	)
	s.notify(ctx, notify.Notification{
		Title:       "Report generated",
		Description: fmt.Sprintf("%s is ready for download.", name),
		Variant:     notify.VariantDefault,
		Reference:   genID,
	})
	s.observe(kind, format, outcomeSuccess, rendered.Pages, started)
	return artifact, nil
}

func (s *Service) render(ctx context.Context, doc ReportDocument, format Format) (out Rendered, err error) {
	if s.renderer == nil {
		return Rendered{}, errors.New("renderer not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			out = Rendered{}
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	out, err = s.renderer.Render(ctx, doc, format)
	if err == nil && len(out.Data) == 0 {
		err = errors.New("renderer produced an empty document")
	}
	return out, err
}

func (s *Service) fail(ctx context.Context, logger *slog.Logger, genID, kind string, format Format, started time.Time, cause error) error {
	logger.Error("report generation failed", slog.Any("error", cause))
	s.notify(ctx, notify.Notification{
		Title:       "Report generation failed",
		Description: "Something went wrong while generating the document. Please try again.",
		Variant:     notify.VariantDestructive,
		Reference:   genID,
	})
	s.observe(kind, format, outcomeFailure, 0, started)
	return fmt.Errorf("%w: %w", ErrRenderFailure, cause)
}

func (s *Service) notify(ctx context.Context, n notify.Notification) {
	if n.SentAt.IsZero() {
		n.SentAt = s.now().UTC()
	}
	s.notifier.Notify(ctx, n)
}

func (s *Service) observe(kind string, format Format, outcome string, pages int, started time.Time) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveReport(metricKind(kind), metricFormat(format), outcome, pages, s.now().Sub(started))
}

// metricKind and metricFormat keep metric labels to a closed set; rejected input is counted as "unknown".
func metricKind(kind string) string {
	if kind == invoiceKind {
		return kind
	}
	if _, err := DefinitionFor(ReportType(kind)); err != nil {
		return unknownLabel
	}
	return kind
}

func metricFormat(format Format) string {
	switch format {
	case FormatPDF, FormatXLSX, FormatCSV:
		return string(format)
	default:
		return unknownLabel
	}
}

// Project converts orders into transaction records, keyed by the chosen entity dimension.
func Project(orders []laundry.Order, entity EntityDimension) []TransactionRecord {
	records := make([]TransactionRecord, 0, len(orders))
	for _, order := range orders {
		key := order.Provider
		if entity == EntityCustomer {
			key = order.Customer
		}
		records = append(records, TransactionRecord{
			ID:        order.ID,
			Date:      order.PlacedAt,
			EntityKey: key,
			Service:   order.Service,
			Status:    order.Status,
			Amount:    order.Amount(),
		})
	}
	return records
}

// ParseEntityFilter reads "provider:<name>", "customer:<name>" or a bare name matching either party.
func ParseEntityFilter(raw string) store.OrderFilter {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return store.OrderFilter{}
	}
	prefix, value, found := strings.Cut(raw, ":")
	if found {
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(prefix)) {
		case "provider":
			return store.OrderFilter{Provider: value}
		case "customer":
			return store.OrderFilter{Customer: value}
		}
	}
	return store.OrderFilter{Party: raw}
}

func describeFilter(raw string) string {
	filter := ParseEntityFilter(raw)
	switch {
	case filter.Provider != "":
		return "Provider: " + filter.Provider
	case filter.Customer != "":
		return "Customer: " + filter.Customer
	case filter.Party != "":
		return "Filtered by: " + filter.Party
	default:
		return ""
	}
}
