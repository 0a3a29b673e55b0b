package reports

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ColumnKind decides how a column is rendered and totalled.
type ColumnKind int

const (
	// ColumnLabel shows text and carries "Total" in the footer.
	ColumnLabel ColumnKind = iota
	// ColumnText shows text and leaves the footer blank.
	ColumnText
	// ColumnCount shows an integer; the footer sums the column.
	ColumnCount
	// ColumnAmount shows money; the footer sums the column.
	ColumnAmount
	// ColumnAverage shows money that does not add up, so the footer is blank.
	ColumnAverage
)

const footerLabel = "Total"

// ColumnSpec maps a group to one table cell.
type ColumnSpec struct {
	Header string
	Kind   ColumnKind
	Text   func(AggregatedGroup) string
	Value  func(AggregatedGroup) decimal.Decimal
}

// KeyColumn renders the group key.
func KeyColumn(header string) ColumnSpec {
	return ColumnSpec{Header: header, Kind: ColumnLabel, Text: func(g AggregatedGroup) string { return g.Key }}
}

// CountColumn renders the group record count.
func CountColumn(header string) ColumnSpec {
	return ColumnSpec{Header: header, Kind: ColumnCount, Value: func(g AggregatedGroup) decimal.Decimal {
		return decimal.NewFromInt(int64(g.Count))
	}}
}

// AmountColumn renders the group monetary total.
func AmountColumn(header string) ColumnSpec {
	return ColumnSpec{Header: header, Kind: ColumnAmount, Value: func(g AggregatedGroup) decimal.Decimal {
		return g.TotalAmount
	}}
}

// AverageColumn renders total divided by count.
func AverageColumn(header string) ColumnSpec {
	return ColumnSpec{Header: header, Kind: ColumnAverage, Value: func(g AggregatedGroup) decimal.Decimal {
		if g.Count == 0 {
			return decimal.Zero
		}
		return g.TotalAmount.DivRound(decimal.NewFromInt(int64(g.Count)), 2)
	}}
}

// Formatter turns groups into table sections. Output strings are for display only.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter builds a formatter using symbol as currency prefix and locale for digit grouping.
// An unparsable locale falls back to English.
func NewFormatter(symbol, locale string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	return &Formatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

// Format maps each group to a row and appends a footer recomputed from the row values.
func (f *Formatter) Format(heading string, groups []AggregatedGroup, cols []ColumnSpec) TableSection {
	section := TableSection{
		Heading: heading,
		Columns: make([]string, len(cols)),
		Rows:    make([][]string, 0, len(groups)),
		Values:  make([][]*Number, 0, len(groups)),
	}
	sums := make([]decimal.Decimal, len(cols))
	for i, col := range cols {
		section.Columns[i] = col.Header
		sums[i] = decimal.Zero
	}
	for _, g := range groups {
		row := make([]string, len(cols))
		values := make([]*Number, len(cols))
		for i, col := range cols {
			switch col.Kind {
			case ColumnLabel, ColumnText:
				row[i] = cellText(col, g)
			case ColumnCount:
				v := cellValue(col, g).Truncate(0)
				sums[i] = sums[i].Add(v)
				row[i] = f.Count(v)
				values[i] = &Number{Value: v}
			case ColumnAmount:
				// Sum the displayed cent value so the footer always equals the visible rows.
				v := cellValue(col, g).Round(2)
				sums[i] = sums[i].Add(v)
				row[i] = f.Money(v)
				values[i] = &Number{Value: v, Money: true}
			case ColumnAverage:
				v := cellValue(col, g).Round(2)
				row[i] = f.Money(v)
				values[i] = &Number{Value: v, Money: true}
			}
		}
		section.Rows = append(section.Rows, row)
		section.Values = append(section.Values, values)
	}

	footer := make([]string, len(cols))
	footerValues := make([]*Number, len(cols))
	labelled := false
	for i, col := range cols {
		switch col.Kind {
		case ColumnLabel:
			if !labelled {
				footer[i] = footerLabel
				labelled = true
			}
		case ColumnCount:
			footer[i] = f.Count(sums[i])
			footerValues[i] = &Number{Value: sums[i]}
		case ColumnAmount:
			footer[i] = f.Money(sums[i])
			footerValues[i] = &Number{Value: sums[i], Money: true}
		}
	}
	section.Footer = footer
	section.FooterValues = footerValues
	return section
}

// Money renders d with the currency symbol, locale digit grouping and exactly two decimals.
func (f *Formatter) Money(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	// The fraction is an exact multiple of 0.01 here, so the float only picks the locale separator.
	frac := f.printer.Sprintf("%.2f", d.Sub(whole).InexactFloat64())
	return sign + f.symbol + f.printer.Sprintf("%d", whole.IntPart()) + frac[1:]
}

// Count renders an integer with locale digit grouping.
func (f *Formatter) Count(d decimal.Decimal) string {
	return f.printer.Sprintf("%d", d.IntPart())
}

func cellText(col ColumnSpec, g AggregatedGroup) string {
	if col.Text == nil {
		return g.Key
	}
	return col.Text(g)
}

func cellValue(col ColumnSpec, g AggregatedGroup) decimal.Decimal {
	if col.Value == nil {
		return decimal.Zero
	}
	return col.Value(g)
}
