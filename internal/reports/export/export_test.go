package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/laundryconnect/laundryconnect/internal/reports"
)

func sampleDocument() reports.ReportDocument {
	return reports.ReportDocument{
		Metadata: reports.Metadata{Title: "Revenue Report", RangeLabel: "2023-03-01 to 2023-03-31"},
		Sections: []reports.TableSection{
			{
				Heading: "Revenue by Provider",
				Columns: []string{"Provider", "Orders", "Revenue"},
				Rows: [][]string{
					{"FreshFold Laundry", "2", "$40.00"},
					{"SparkleWash Co.", "1", "$1,234.50"},
				},
				Footer: []string{"Total", "3", "$1,274.50"},
			},
			{
				Heading: "Invoice Details",
				Columns: []string{"Field", "Value"},
				Rows:    [][]string{{"Order ID", "ORD-1001"}},
			},
		},
	}
}

func TestWriteCSVSeparatesSections(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCSV(buf, sampleDocument()))

	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// csv.Reader skips the blank separator lines.
	want := [][]string{
		{"Revenue Report"},
		{"Period", "2023-03-01 to 2023-03-31"},
		{"Revenue by Provider"},
		{"Provider", "Orders", "Revenue"},
		{"FreshFold Laundry", "2", "$40.00"},
		{"SparkleWash Co.", "1", "$1,234.50"},
		{"Total", "3", "$1,274.50"},
		{"Invoice Details"},
		{"Field", "Value"},
		{"Order ID", "ORD-1001"},
	}
	assert.Equal(t, want, records)
	assert.Contains(t, buf.String(), "\n\nRevenue by Provider\n")
}

func TestXLSXWritesOneSheetPerSection(t *testing.T) {
	data, err := XLSX(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Revenue by Provider", "Invoice Details"}, f.GetSheetList())

	rows, err := f.GetRows("Revenue by Provider")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "Revenue Report", rows[0][0])
	assert.Equal(t, []string{"Provider", "Orders", "Revenue"}, rows[3])
	assert.Equal(t, []string{"Total", "3", "$1,274.50"}, rows[6])

	rows, err = f.GetRows("Invoice Details")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func numericSection() reports.TableSection {
	money := func(v string) *reports.Number { return &reports.Number{Value: decimal.RequireFromString(v), Money: true} }
	count := func(v int64) *reports.Number { return &reports.Number{Value: decimal.NewFromInt(v)} }
	return reports.TableSection{
		Heading: "Revenue by Customer",
		Columns: []string{"Customer", "Orders", "Revenue"},
		Rows: [][]string{
			{"=HYPERLINK(\"http://evil\")", "2", "$1,234.50"},
			{"-Refunds", "1", "-$4.00"},
		},
		Values: [][]*reports.Number{
			{nil, count(2), money("1234.50")},
			{nil, count(1), money("-4.00")},
		},
		Footer:       []string{"Total", "3", "$1,230.50"},
		FooterValues: []*reports.Number{nil, count(3), money("1230.50")},
	}
}

func TestWriteCSVEscapesFormulaText(t *testing.T) {
	doc := reports.ReportDocument{Metadata: reports.Metadata{Title: "@Report"}, Sections: []reports.TableSection{numericSection()}}
	data, err := CSV(doc)
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"'@Report"},
		{"Revenue by Customer"},
		{"Customer", "Orders", "Revenue"},
		{"'=HYPERLINK(\"http://evil\")", "2", "$1,234.50"},
		{"'-Refunds", "1", "-$4.00"},
		{"Total", "3", "$1,230.50"},
	}, records)
}

func TestXLSXWritesNumbersAndPlainText(t *testing.T) {
	doc := reports.ReportDocument{Metadata: reports.Metadata{Title: "Customers"}, Sections: []reports.TableSection{numericSection()}}
	data, err := XLSX(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	sheet := "Revenue by Customer"

	raw := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "2", raw("B5"))
	assert.Equal(t, "1234.5", raw("C5"))
	assert.Equal(t, "-4", raw("C6"))
	assert.Equal(t, "1230.5", raw("C7"))
	assert.Equal(t, "Total", raw("A7"))

	assert.Equal(t, `=HYPERLINK("http://evil")`, raw("A5"))
	formula, err := f.GetCellFormula(sheet, "A5")
	require.NoError(t, err)
	assert.Empty(t, formula)
}

func TestXLSXWithoutSections(t *testing.T) {
	data, err := XLSX(reports.ReportDocument{Metadata: reports.Metadata{Title: "Empty"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	value, err := f.GetCellValue(f.GetSheetName(0), "A1")
	require.NoError(t, err)
	assert.Equal(t, "Empty", value)
}

func TestSheetNameSanitisesAndDeduplicates(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Revenue - Provider", sheetName("Revenue / Provider", 0, used))
	assert.Equal(t, "Revenue - Provider (2)", sheetName("Revenue / Provider", 1, used))
	assert.Equal(t, "Section 3", sheetName("  ", 2, used))

	long := sheetName("An exceptionally long section heading for Excel", 3, used)
	assert.Len(t, []rune(long), maxSheetName)
	again := sheetName("An exceptionally long section heading for Excel", 4, used)
	assert.Len(t, []rune(again), maxSheetName)
	assert.NotEqual(t, long, again)
}
