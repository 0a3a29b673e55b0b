package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundryconnect/laundryconnect/internal/reports"
	"github.com/laundryconnect/laundryconnect/report"
)

func testConfig() *Config {
	return &Config{
		ReportEngine:         EngineNative,
		ReportCurrencySymbol: "$",
		ReportLocale:         "en",
		ReportCompany:        "LaundryConnect",
	}
}

func march() reports.Request {
	return reports.Request{
		Start:  time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
		Type:   reports.ReportRevenue,
		Format: reports.FormatPDF,
	}
}

func TestNewReportServiceNativeEngine(t *testing.T) {
	svc, err := NewReportService(testConfig(), ServiceDeps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	artifact, err := svc.Generate(context.Background(), march(), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
	assert.Positive(t, artifact.Pages)
}

func TestNewReportServiceGotenbergEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-from-chromium"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.ReportEngine = EngineGotenberg
	svc, err := NewReportService(cfg, ServiceDeps{Gotenberg: report.NewClient(srv.URL)})
	require.NoError(t, err)

	artifact, err := svc.Generate(context.Background(), march(), nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-from-chromium", string(artifact.Data))
}

func TestNewReportServiceSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"ORD-1","placed_at":"2023-03-02T10:00:00Z","customer":"Ann","provider":"Suds","service":"Ironing","status":"completed","items":[{"name":"Shirt","quantity":2,"unit_price":"3.00"}],"delivery_fee":"1.00"}]`), 0o600))

	cfg := testConfig()
	cfg.SeedFile = path
	svc, err := NewReportService(cfg, ServiceDeps{})
	require.NoError(t, err)

	doc, err := svc.Preview(context.Background(), march())
	require.NoError(t, err)
	assert.Equal(t, []string{"Total", "1", "$7.00"}, doc.Sections[0].Footer)

	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = NewReportService(cfg, ServiceDeps{})
	require.Error(t, err)
}

func TestNewRendererRejectsUnknownEngine(t *testing.T) {
	cfg := testConfig()
	cfg.ReportEngine = "latex"
	_, err := NewRenderer(cfg, nil)
	require.Error(t, err)
}
