package render

import (
	"context"
	"fmt"

	"github.com/laundryconnect/laundryconnect/internal/reports"
	"github.com/laundryconnect/laundryconnect/internal/reports/export"
)

// Backend turns a laid-out plan into PDF bytes.
type Backend interface {
	Finalize(ctx context.Context, plan Plan) ([]byte, error)
}

// DefaultDisclaimer closes every PDF document.
var DefaultDisclaimer = []string{
	"This document was generated automatically from LaundryConnect order data.",
	"Figures reflect orders placed within the stated period and may change as orders are updated.",
}

// Engine implements reports.Renderer for every supported format.
type Engine struct {
	backend Backend
	opts    Options
}

// NewEngine wires the PDF backend. A nil backend falls back to the native PDF writer.
func NewEngine(backend Backend, opts Options) *Engine {
	if backend == nil {
		backend = PDFBackend{Creator: opts.Author}
	}
	if opts.Disclaimer == nil {
		opts.Disclaimer = DefaultDisclaimer
	}
	return &Engine{backend: backend, opts: opts}
}

// Render validates the document and serialises it. Spreadsheet formats report zero pages.
func (e *Engine) Render(ctx context.Context, doc reports.ReportDocument, format reports.Format) (reports.Rendered, error) {
	if err := Validate(doc); err != nil {
		return reports.Rendered{}, err
	}
	switch format {
	case reports.FormatCSV:
		data, err := export.CSV(doc)
		if err != nil {
			return reports.Rendered{}, fmt.Errorf("csv export: %w", err)
		}
		return reports.Rendered{Data: data}, nil
	case reports.FormatXLSX:
		data, err := export.XLSX(doc)
		if err != nil {
			return reports.Rendered{}, fmt.Errorf("xlsx export: %w", err)
		}
		return reports.Rendered{Data: data}, nil
	case reports.FormatPDF, "":
		plan, err := Layout(doc, e.opts)
		if err != nil {
			return reports.Rendered{}, err
		}
		data, err := e.backend.Finalize(ctx, plan)
		if err != nil {
			return reports.Rendered{}, fmt.Errorf("finalize pdf: %w", err)
		}
		return reports.Rendered{Data: data, Pages: len(plan.Pages)}, nil
	default:
		return reports.Rendered{}, fmt.Errorf("%w: %q", reports.ErrUnknownFormat, format)
	}
}
