// Package reporthttp exposes report and invoice generation over HTTP.
package reporthttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
	"github.com/laundryconnect/laundryconnect/internal/notify"
	"github.com/laundryconnect/laundryconnect/internal/platform/httpx"
	"github.com/laundryconnect/laundryconnect/internal/reports"
)

const (
	maxBodyBytes     = 64 << 10
	defaultFeedLimit = 20
	maxFeedLimit     = 50
	defaultRateLimit = 20
)

// ReportService is the generation contract used by the handler.
type ReportService interface {
	Preview(ctx context.Context, req reports.Request) (reports.ReportDocument, error)
	Generate(ctx context.Context, req reports.Request, sink reports.Sink) (reports.Artifact, error)
	GenerateInvoice(ctx context.Context, orderID string, format reports.Format, sink reports.Sink) (reports.Artifact, error)
}

// NotificationFeed lists recent notifications, newest first.
type NotificationFeed interface {
	Recent(ctx context.Context, limit int) ([]notify.Notification, error)
}

// Handler serves the report endpoints.
type Handler struct {
	logger    *slog.Logger
	service   ReportService
	feed      NotificationFeed
	validate  *validator.Validate
	rateLimit int
}

// NewHandler constructs the report HTTP handler. feed may be nil when no notification store is configured.
func NewHandler(logger *slog.Logger, service ReportService, feed NotificationFeed) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		feed:      feed,
		validate:  validator.New(),
		rateLimit: defaultRateLimit,
	}
}

// WithRateLimit sets how many documents a client may generate per minute.
func (h *Handler) WithRateLimit(perMinute int) *Handler {
	if perMinute > 0 {
		h.rateLimit = perMinute
	}
	return h
}

type reportForm struct {
	Type      string `json:"type" validate:"required,max=32"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Entity    string `json:"entity" validate:"max=120"`
	Format    string `json:"format" validate:"omitempty,oneof=pdf xlsx csv"`
}

type typeView struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Entity   string        `json:"entity"`
	Sections []sectionView `json:"sections"`
}

type sectionView struct {
	Heading string   `json:"heading"`
	GroupBy string   `json:"group_by"`
	Columns []string `json:"columns"`
}

func (h *Handler) handleTypes(w http.ResponseWriter, _ *http.Request) {
	types := reports.ReportTypes()
	out := make([]typeView, 0, len(types))
	for _, rt := range types {
		def, err := reports.DefinitionFor(rt)
		if err != nil {
			h.handleServerError(w, "load catalog", err)
			return
		}
		view := typeView{Type: string(def.Type), Title: def.Title, Entity: "provider"}
		if def.Entity == reports.EntityCustomer {
			view.Entity = "customer"
		}
		for _, section := range def.Sections {
			cols := make([]string, len(section.Columns))
			for i, col := range section.Columns {
				cols[i] = col.Header
			}
			view.Sections = append(view.Sections, sectionView{Heading: section.Heading, GroupBy: section.GroupBy.String(), Columns: cols})
		}
		out = append(out, view)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"types": out})
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	doc, err := h.service.Preview(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	sink := &responseSink{w: w}
	if _, err := h.service.Generate(r.Context(), req, sink); err != nil {
		if sink.written {
			h.logger.Warn("report delivery interrupted", slog.Any("error", err))
			return
		}
		h.respondError(w, err)
	}
}

func (h *Handler) handleInvoice(w http.ResponseWriter, r *http.Request) {
	format, err := reports.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	sink := &responseSink{w: w}
	if _, err := h.service.GenerateInvoice(r.Context(), chi.URLParam(r, "orderID"), format, sink); err != nil {
		if sink.written {
			h.logger.Warn("invoice delivery interrupted", slog.Any("error", err))
			return
		}
		h.respondError(w, err)
	}
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeedLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondError(w, fmt.Errorf("%w: limit must be a positive integer", httpx.ErrValidation))
			return
		}
		limit = min(n, maxFeedLimit)
	}
	items := []notify.Notification{}
	if h.feed != nil {
		recent, err := h.feed.Recent(r.Context(), limit)
		if err != nil {
			h.respondError(w, fmt.Errorf("%w: notification feed: %w", httpx.ErrUnavailable, err))
			return
		}
		items = append(items, recent...)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (reports.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var form reportForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		return reports.Request{}, fmt.Errorf("%w: malformed request body", httpx.ErrValidation)
	}
	form.Type = strings.ToLower(strings.TrimSpace(form.Type))
	form.Format = strings.ToLower(strings.TrimSpace(form.Format))
	form.StartDate = strings.TrimSpace(form.StartDate)
	form.EndDate = strings.TrimSpace(form.EndDate)
	if err := h.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return reports.Request{}, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, strings.Join(fields, ", "))
		}
		return reports.Request{}, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	rng, err := laundry.ParseDateRange(form.StartDate, form.EndDate)
	if err != nil {
		return reports.Request{}, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	return reports.Request{
		Start:        rng.Start,
		End:          rng.End,
		Type:         reports.ReportType(form.Type),
		EntityFilter: form.Entity,
		Format:       reports.Format(form.Format),
	}, nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reports.ErrMissingDateRange),
		errors.Is(err, reports.ErrUnknownReportType),
		errors.Is(err, reports.ErrUnknownFormat),
		errors.Is(err, reports.ErrMissingOrderID):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
	case errors.Is(err, reports.ErrOrderNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrNotFound, err))
	case errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrNotFound), errors.Is(err, httpx.ErrUnavailable):
		httpx.RespondError(w, err)
	default:
		h.handleServerError(w, "generate document", err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, action string, err error) {
	h.logger.Error(action, slog.Any("error", err))
	httpx.RespondError(w, err)
}

// responseSink streams a finished artifact as an attachment.
type responseSink struct {
	w       http.ResponseWriter
	written bool
}

func (s *responseSink) Save(_ context.Context, artifact reports.Artifact) error {
	header := s.w.Header()
	header.Set("Content-Type", artifact.ContentType)
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
	header.Set("X-Generation-ID", artifact.GenerationID)
	if artifact.Pages > 0 {
		header.Set("X-Page-Count", strconv.Itoa(artifact.Pages))
	}
	s.written = true
	s.w.WriteHeader(http.StatusOK)
	_, err := s.w.Write(artifact.Data)
	return err
}
