package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundryconnect/laundryconnect/internal/reports"
	"github.com/laundryconnect/laundryconnect/report"
)

var generatedAt = time.Date(2023, 3, 31, 9, 30, 0, 0, time.UTC)

func metadata() reports.Metadata {
	return reports.Metadata{
		Title:       "Revenue Report",
		Subtitle:    "LaundryConnect",
		GeneratedAt: generatedAt,
		RangeLabel:  "2023-03-01 to 2023-03-31",
	}
}

func section(heading string, rows int, footer bool) reports.TableSection {
	s := reports.TableSection{Heading: heading, Columns: []string{"Provider", "Orders", "Revenue"}}
	for i := 0; i < rows; i++ {
		s.Rows = append(s.Rows, []string{fmt.Sprintf("Provider %d", i+1), "1", "$10.00"})
	}
	if footer {
		s.Footer = []string{"Total", fmt.Sprint(rows), fmt.Sprintf("$%d.00", rows*10)}
	}
	return s
}

func headerOps(page Page) []Op {
	var ops []Op
	for _, op := range page.Ops {
		if op.Style == StyleHeaderRow {
			ops = append(ops, op)
		}
	}
	return ops
}

func pageNumbers(plan Plan) []string {
	var out []string
	for _, page := range plan.Pages {
		for _, op := range page.Ops {
			if op.Style == StylePageNumber {
				out = append(out, op.Text)
			}
		}
	}
	return out
}

func TestLayoutBreaksOnceWhenSectionStartsPastThreshold(t *testing.T) {
	doc := reports.ReportDocument{Metadata: metadata()}
	for i := 1; i <= 5; i++ {
		doc.Sections = append(doc.Sections, section(fmt.Sprintf("Section %d", i), 3, true))
	}

	plan, err := Layout(doc, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, plan.PageBreaks())
	require.Len(t, plan.Sections, 5)
	for i, place := range plan.Sections[:4] {
		assert.Equal(t, 0, place.Page, "section %d", i+1)
		assert.LessOrEqual(t, place.Y, BreakThreshold)
	}
	assert.Equal(t, Placement{Heading: "Section 5", Page: 1, Y: TopMargin}, plan.Sections[4])
	assert.Equal(t, []string{"Page 1 of 2", "Page 2 of 2"}, pageNumbers(plan))
}

func TestLayoutNoBreakForShortDocument(t *testing.T) {
	doc := reports.ReportDocument{Metadata: metadata(), Sections: []reports.TableSection{section("Only", 2, true)}}

	plan, err := Layout(doc, Options{Disclaimer: DefaultDisclaimer})
	require.NoError(t, err)
	assert.Equal(t, 0, plan.PageBreaks())
	assert.Equal(t, []string{"Page 1 of 1"}, pageNumbers(plan))

	var disclaimers []string
	for _, op := range plan.Pages[0].Ops {
		if op.Style == StyleDisclaimer {
			disclaimers = append(disclaimers, op.Text)
		}
	}
	assert.Len(t, disclaimers, len(DefaultDisclaimer))
}

func TestLayoutRepeatsHeaderRowWhenTableOverflows(t *testing.T) {
	doc := reports.ReportDocument{Metadata: metadata(), Sections: []reports.TableSection{section("Long", 40, false)}}

	plan, err := Layout(doc, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Pages, 2)
	require.Len(t, plan.Sections, 1)

	first := headerOps(plan.Pages[0])
	second := headerOps(plan.Pages[1])
	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for _, op := range second {
		assert.Equal(t, TopMargin, op.Y)
	}

	bodyRows := 0
	for _, page := range plan.Pages {
		for _, op := range page.Ops {
			if op.Style == StyleBodyRow {
				assert.LessOrEqual(t, op.Y+op.H, BottomLimit)
				bodyRows++
			}
		}
	}
	assert.Equal(t, 40*3, bodyRows)
}

func TestLayoutRejectsMalformedSections(t *testing.T) {
	cases := map[string]reports.TableSection{
		"no columns":  {Heading: "Empty"},
		"short row":   {Heading: "Rows", Columns: []string{"A", "B"}, Rows: [][]string{{"1"}}},
		"wide footer": {Heading: "Footer", Columns: []string{"A"}, Footer: []string{"Total", "1"}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Layout(reports.ReportDocument{Sections: []reports.TableSection{s}}, Options{})
			require.ErrorIs(t, err, reports.ErrMalformedSection)
		})
	}
}

func TestColumnAlignmentAndFit(t *testing.T) {
	s := reports.TableSection{
		Columns: []string{"Field", "Orders", "Revenue", "Notes"},
		Rows: [][]string{
			{"a", "1,204", "$1,234.50", "late"},
			{"b", "", "$3.00", "ok"},
		},
	}
	assert.Equal(t, []byte{'L', 'R', 'R', 'L'}, columnAlignment(s))

	widths := columnWidths(s)
	total := 0.0
	for _, w := range widths {
		total += w
	}
	assert.InDelta(t, UsableWidth, total, 1e-9)

	long := strings.Repeat("x", 200)
	fitted := fit(long, 30, 9)
	assert.True(t, strings.HasSuffix(fitted, "..."))
	assert.Less(t, len(fitted), len(long))
	assert.Equal(t, "short", fit("short", 30, 9))
}

func TestEngineRendersNativePDF(t *testing.T) {
	engine := NewEngine(nil, Options{Author: "LaundryConnect"})
	doc := reports.ReportDocument{Metadata: metadata(), Sections: []reports.TableSection{section("Revenue by Provider", 3, true)}}

	out, err := engine.Render(context.Background(), doc, reports.FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF-")))
	assert.Equal(t, 1, out.Pages)
}

func TestNativePDFEmbedsUnicodeFont(t *testing.T) {
	doc := reports.ReportDocument{Metadata: metadata(), Sections: []reports.TableSection{{
		Heading: "Revenue by Provider",
		Columns: []string{"Provider", "Revenue"},
		Rows:    [][]string{{"Zoë Łaźnia", "₹1,250.00"}, {"Прачечная", "€12.00"}},
	}}}

	out, err := NewEngine(nil, Options{}).Render(context.Background(), doc, reports.FormatPDF)
	require.NoError(t, err)
	assert.Contains(t, string(out.Data), "/BaseFont /utf8"+strings.ToLower(fontFamily))
	assert.Contains(t, string(out.Data), "/FontFile2")
	assert.NotContains(t, string(out.Data), "Helvetica")
}

func TestDrawableText(t *testing.T) {
	for _, s := range []string{"₹1,250.00", "€", "£", "Zoë Łaźnia", "Прачечная", "Page 1 of 2"} {
		assert.True(t, Drawable(s), s)
		assert.Equal(t, s, drawableText(s))
	}

	assert.False(t, Drawable("अनन्या"))
	assert.Equal(t, "Ann \uFFFD\uFFFD", drawableText("Ann \u0905\u0928"))
}

func TestEngineSpreadsheetFormats(t *testing.T) {
	engine := NewEngine(nil, Options{})
	doc := reports.ReportDocument{Metadata: metadata(), Sections: []reports.TableSection{section("Revenue by Provider", 2, true)}}

	csvOut, err := engine.Render(context.Background(), doc, reports.FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(csvOut.Data), "Provider,Orders,Revenue")
	assert.Zero(t, csvOut.Pages)

	xlsxOut, err := engine.Render(context.Background(), doc, reports.FormatXLSX)
	require.NoError(t, err)
	// XLSX is a zip container.
	assert.True(t, bytes.HasPrefix(xlsxOut.Data, []byte("PK")))
}

func TestEngineValidatesBeforeSerialising(t *testing.T) {
	engine := NewEngine(nil, Options{})
	doc := reports.ReportDocument{Sections: []reports.TableSection{{Heading: "Bad", Columns: []string{"A"}, Rows: [][]string{{"1", "2"}}}}}

	for _, format := range []reports.Format{reports.FormatPDF, reports.FormatCSV, reports.FormatXLSX} {
		_, err := engine.Render(context.Background(), doc, format)
		require.ErrorIs(t, err, reports.ErrMalformedSection, string(format))
	}
	_, err := engine.Render(context.Background(), reports.ReportDocument{}, reports.Format("docx"))
	require.ErrorIs(t, err, reports.ErrUnknownFormat)
}

type failingBackend struct{}

func (failingBackend) Finalize(context.Context, Plan) ([]byte, error) {
	return nil, fmt.Errorf("disk full")
}

func TestEngineWrapsBackendError(t *testing.T) {
	engine := NewEngine(failingBackend{}, Options{})
	_, err := engine.Render(context.Background(), reports.ReportDocument{Metadata: metadata()}, reports.FormatPDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestHTMLBackendConvertsThroughGotenberg(t *testing.T) {
	var html string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		html = string(data)
		_, _ = w.Write([]byte("%PDF-1.4 gotenberg"))
	}))
	defer srv.Close()

	backend, err := NewHTMLBackend(report.NewClient(srv.URL))
	require.NoError(t, err)
	engine := NewEngine(backend, Options{Author: "LaundryConnect"})

	s := section("Revenue by Provider", 1, true)
	s.Rows[0][0] = "<b>Suds & Co</b>"
	out, err := engine.Render(context.Background(), reports.ReportDocument{Metadata: metadata(), Sections: []reports.TableSection{s}}, reports.FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.4 gotenberg", string(out.Data))
	assert.Equal(t, 1, out.Pages)
	assert.Contains(t, html, "<title>Revenue Report</title>")
	assert.Contains(t, html, "Page 1 of 1")
	assert.Contains(t, html, "&lt;b&gt;Suds &amp; Co&lt;/b&gt;")
	assert.Contains(t, html, `class="op header-row bordered"`)
	assert.Equal(t, 1, strings.Count(html, `<section class="page">`))
}

func TestNewHTMLBackendRequiresConverter(t *testing.T) {
	_, err := NewHTMLBackend(nil)
	require.Error(t, err)
}
