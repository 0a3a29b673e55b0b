package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/laundryconnect/laundryconnect/internal/reports"
)

const maxSheetName = 31

const (
	countFormat = "#,##0"
	moneyFormat = "#,##0.00"
)

type styles struct {
	title       int
	header      int
	footer      int
	count       int
	money       int
	footerCount int
	footerMoney int
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)
	headerFill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2980B9"}}
	footerFill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"ECF0F1"}}
	countFmt, moneyFmt := countFormat, moneyFormat
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&st.header, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "FFFFFF"}, Fill: headerFill}},
		{&st.footer, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: footerFill}},
		{&st.count, &excelize.Style{CustomNumFmt: &countFmt}},
		{&st.money, &excelize.Style{CustomNumFmt: &moneyFmt}},
		{&st.footerCount, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: footerFill, CustomNumFmt: &countFmt}},
		{&st.footerMoney, &excelize.Style{Font: &excelize.Font{Bold: true}, Fill: footerFill, CustomNumFmt: &moneyFmt}},
	}
	for _, d := range defs {
		if *d.dst, err = f.NewStyle(d.style); err != nil {
			return styles{}, err
		}
	}
	return st, nil
}

// XLSX writes one worksheet per section. Each sheet starts with the document title and period,
// followed by the bold header row, body rows and a bold footer row. Count and money cells are
// written as numbers so the sheet can be summed; everything else is a plain string cell.
func XLSX(doc reports.ReportDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	first := f.GetSheetName(0)
	used := map[string]bool{}
	for i, section := range doc.Sections {
		name := sheetName(section.Heading, i, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, name, doc.Metadata, section, st); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	if len(doc.Sections) == 0 {
		if err := f.SetCellStr(first, "A1", doc.Metadata.Title); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, meta reports.Metadata, section reports.TableSection, st styles) error {
	if err := f.SetCellStr(sheet, "A1", meta.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, "A2", meta.RangeLabel); err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, "A3", section.Heading); err != nil {
		return err
	}

	row := 4
	if err := setRow(f, sheet, row, section.Columns, nil, st.header, st.header, st.header); err != nil {
		return err
	}
	for r, cells := range section.Rows {
		row++
		number := func(c int) *reports.Number { return section.Value(r, c) }
		if err := setRow(f, sheet, row, cells, number, 0, st.count, st.money); err != nil {
			return err
		}
	}
	if section.Footer != nil {
		row++
		if err := setRow(f, sheet, row, section.Footer, section.FooterValue, st.footer, st.footerCount, st.footerMoney); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(max(len(section.Columns), 1))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

// setRow writes cells left to right. Cells backed by a number become numeric cells styled
// with countStyle or moneyStyle; the rest are string cells styled with textStyle.
func setRow(f *excelize.File, sheet string, row int, cells []string, number func(col int) *reports.Number, textStyle, countStyle, moneyStyle int) error {
	for i, text := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		style := textStyle
		var n *reports.Number
		if number != nil {
			n = number(i)
		}
		if n != nil {
			if err := f.SetCellFloat(sheet, cell, n.Value.InexactFloat64(), -1, 64); err != nil {
				return err
			}
			style = countStyle
			if n.Money {
				style = moneyStyle
			}
		} else if err := f.SetCellStr(sheet, cell, text); err != nil {
			return err
		}
		if style == 0 {
			continue
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

// sheetName derives a unique worksheet name of at most 31 characters without the characters Excel rejects.
func sheetName(heading string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(heading))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Section %d", index+1)
	}
	name = truncate(name, maxSheetName)
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
