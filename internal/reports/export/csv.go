// Package export serialises report documents into spreadsheet formats.
package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/laundryconnect/laundryconnect/internal/reports"
)

// WriteCSV writes the document title and period, then each section as a heading record,
// the column header, body rows and footer. Sections are separated by an empty record.
// Text cells that a spreadsheet would evaluate as a formula are prefixed with a quote.
func WriteCSV(w io.Writer, doc reports.ReportDocument) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{escapeFormula(doc.Metadata.Title)}); err != nil {
		return err
	}
	if doc.Metadata.RangeLabel != "" {
		if err := writer.Write([]string{"Period", escapeFormula(doc.Metadata.RangeLabel)}); err != nil {
			return err
		}
	}
	for _, section := range doc.Sections {
		if err := writer.Write([]string{}); err != nil {
			return err
		}
		if err := writer.Write([]string{escapeFormula(section.Heading)}); err != nil {
			return err
		}
		if err := writer.Write(csvRecord(section.Columns, nil)); err != nil {
			return err
		}
		for r, row := range section.Rows {
			if err := writer.Write(csvRecord(row, func(c int) *reports.Number { return section.Value(r, c) })); err != nil {
				return err
			}
		}
		if section.Footer != nil {
			if err := writer.Write(csvRecord(section.Footer, section.FooterValue)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// csvRecord escapes every text cell; cells backed by a number are written as formatted.
func csvRecord(cells []string, number func(col int) *reports.Number) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		if number != nil && number(i) != nil {
			out[i] = cell
			continue
		}
		out[i] = escapeFormula(cell)
	}
	return out
}

func escapeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

// CSV returns the serialised document.
func CSV(doc reports.ReportDocument) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
