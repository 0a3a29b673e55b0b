package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundryconnect/laundryconnect/internal/reports"
)

func run(t *testing.T, opts Options, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	opts.Stdout, opts.Stderr = stdout, stderr
	cmd := NewRootCmd(opts)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestTypesCommand(t *testing.T) {
	out, _, err := run(t, Options{}, "types")
	require.NoError(t, err)
	for _, rt := range reports.ReportTypes() {
		assert.Contains(t, out, string(rt))
	}
	assert.Contains(t, out, "Daily Revenue, Revenue by Provider, Revenue by Service")
}

func TestGenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, Options{}, "generate", "--type", "revenue", "--start", "2023-03-01", "--end", "2023-03-31", "--format", "csv", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote ")

	matches, err := filepath.Glob(filepath.Join(dir, "revenue-report-*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Revenue Report\n"))
}

func TestGeneratePDFReportsPages(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, Options{}, "generate", "-t", "orders", "--start", "2023-03-01", "--end", "2023-03-31", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "pages)")
}

func TestGenerateRejectsMissingDateRange(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, Options{}, "generate", "--type", "revenue", "--end", "2023-03-31", "--out", dir)
	require.ErrorIs(t, err, reports.ErrMissingDateRange)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInvoiceCommand(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, Options{}, "invoice", "ORD-1001", "--format", "xlsx", "--out", dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "LaundryConnect_Invoice_ORD-1001.xlsx"))
	require.NoError(t, err)

	_, _, err = run(t, Options{}, "invoice", "ORD-0000", "--out", dir)
	require.ErrorIs(t, err, reports.ErrOrderNotFound)
}

func TestPreviewUsesEnvironmentSettings(t *testing.T) {
	t.Setenv("LAUNDRY_CURRENCY", "€")
	out, _, err := run(t, Options{}, "preview", "--type", "providers", "--start", "2023-03-01", "--end", "2023-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider Performance")
	assert.Contains(t, out, "€")
	assert.NotContains(t, out, "$")
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reportctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency: \"£\"\ncompany: Suds Inc\n"), 0o600))

	var got Settings
	build := func(s Settings, _ *slog.Logger) (Generator, error) {
		got = s
		return buildService(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
	_, _, err := run(t, Options{Build: build}, "--config", path, "--company", "Flag Co", "preview", "-t", "services", "--start", "2023-03-01", "--end", "2023-03-02")
	require.NoError(t, err)
	assert.Equal(t, "£", got.Currency)
	assert.Equal(t, "Flag Co", got.Company)
	assert.Equal(t, "native", got.Engine)
}
