package app

import (
	"fmt"
	"log/slog"

	"github.com/laundryconnect/laundryconnect/internal/notify"
	"github.com/laundryconnect/laundryconnect/internal/reports"
	"github.com/laundryconnect/laundryconnect/internal/reports/render"
	"github.com/laundryconnect/laundryconnect/internal/store"
	"github.com/laundryconnect/laundryconnect/report"
)

// ServiceDeps are the collaborators the report service is built from.
type ServiceDeps struct {
	Logger   *slog.Logger
	Notifier notify.Notifier
	Recorder reports.Recorder
	// Gotenberg is required when the gotenberg engine is selected.
	Gotenberg *report.Client
}

// NewRenderer selects the PDF backend named by the configuration.
func NewRenderer(cfg *Config, gotenberg *report.Client) (*render.Engine, error) {
	opts := render.Options{Author: cfg.ReportCompany}
	switch cfg.ReportEngine {
	case EngineGotenberg:
		if gotenberg == nil {
			gotenberg = report.NewClient(cfg.GotenbergURL)
		}
		backend, err := render.NewHTMLBackend(gotenberg)
		if err != nil {
			return nil, fmt.Errorf("html backend: %w", err)
		}
		return render.NewEngine(backend, opts), nil
	case EngineNative, "":
		return render.NewEngine(render.PDFBackend{Creator: cfg.ReportCompany}, opts), nil
	default:
		return nil, fmt.Errorf("unknown report engine %q", cfg.ReportEngine)
	}
}

// NewReportService loads the order store and wires the report service.
func NewReportService(cfg *Config, deps ServiceDeps) (*reports.Service, error) {
	data, err := store.LoadFile(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	renderer, err := NewRenderer(cfg, deps.Gotenberg)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("order store loaded", slog.Int("orders", data.Len()), slog.String("engine", cfg.ReportEngine))
	return reports.NewService(reports.ServiceConfig{
		Source:    data,
		Renderer:  renderer,
		Notifier:  deps.Notifier,
		Formatter: reports.NewFormatter(cfg.ReportCurrencySymbol, cfg.ReportLocale),
		Recorder:  deps.Recorder,
		Logger:    logger,
		Company:   cfg.ReportCompany,
	}), nil
}
