// Package render lays report documents out on A4 pages and serialises the result.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/laundryconnect/laundryconnect/internal/reports"
)

// Page geometry in millimetres.
const (
	PageWidth      = 210.0
	PageHeight     = 297.0
	TopMargin      = 20.0
	SideMargin     = 14.0
	BreakThreshold = 250.0
	BottomLimit    = 283.0
	PageNumberY    = 288.0

	titleHeight    = 10.0
	lineHeight     = 6.0
	headingHeight  = 8.0
	rowHeight      = 7.0
	sectionGap     = 6.0
	disclaimerLine = 5.0
	minColumnChars = 6
)

// UsableWidth is the horizontal space between side margins.
const UsableWidth = PageWidth - 2*SideMargin

// OpKind distinguishes drawing instructions.
type OpKind int

const (
	// OpBox draws text inside a box, optionally bordered and filled.
	OpBox OpKind = iota
	// OpRule draws a horizontal line of width W at Y.
	OpRule
)

// Style names the typography of a box.
type Style int

const (
	StyleTitle Style = iota
	StyleSubtitle
	StyleMeta
	StyleHeading
	StyleHeaderRow
	StyleBodyRow
	StyleFooterRow
	StyleDisclaimer
	StylePageNumber
)

// Op is one positioned drawing instruction. Y is the top edge of the box.
type Op struct {
	Kind   OpKind
	Style  Style
	X      float64
	Y      float64
	W      float64
	H      float64
	Text   string
	Align  byte
	Border bool
	Fill   bool
}

// Page holds the instructions drawn on one sheet.
type Page struct {
	Ops []Op
}

// Placement records where a section heading landed.
type Placement struct {
	Heading string
	Page    int
	Y       float64
}

// Plan is the complete, backend-independent layout of a document.
type Plan struct {
	Title       string
	Author      string
	GeneratedAt time.Time
	Pages       []Page
	Sections    []Placement
}

// PageBreaks returns how many breaks the plan contains.
func (p Plan) PageBreaks() int {
	if len(p.Pages) == 0 {
		return 0
	}
	return len(p.Pages) - 1
}

// Options tunes the layout.
type Options struct {
	Author     string
	Disclaimer []string
}

// Cursor is the current drawing position. Draw steps take a cursor and return the advanced one.
type Cursor struct {
	Page int
	Y    float64
}

// canvas accumulates instructions per page.
type canvas struct {
	pages []Page
	place []Placement
}

func (c *canvas) draw(at Cursor, op Op) {
	c.pages[at.Page].Ops = append(c.pages[at.Page].Ops, op)
}

func (c *canvas) newPage(at Cursor) Cursor {
	c.pages = append(c.pages, Page{})
	return Cursor{Page: at.Page + 1, Y: TopMargin}
}

// Validate checks every section has columns and rectangular rows.
func Validate(doc reports.ReportDocument) error {
	for i, section := range doc.Sections {
		if len(section.Columns) == 0 {
			return fmt.Errorf("%w: section %d (%q) has no columns", reports.ErrMalformedSection, i, section.Heading)
		}
		for r, row := range section.Rows {
			if len(row) != len(section.Columns) {
				return fmt.Errorf("%w: section %q row %d has %d cells, want %d", reports.ErrMalformedSection, section.Heading, r, len(row), len(section.Columns))
			}
		}
		if section.Footer != nil && len(section.Footer) != len(section.Columns) {
			return fmt.Errorf("%w: section %q footer has %d cells, want %d", reports.ErrMalformedSection, section.Heading, len(section.Footer), len(section.Columns))
		}
	}
	return nil
}

// Layout runs Start -> DrawHeader -> DrawSection* -> DrawFooter and returns the plan.
func Layout(doc reports.ReportDocument, opts Options) (Plan, error) {
	if err := Validate(doc); err != nil {
		return Plan{}, err
	}
	c := &canvas{pages: []Page{{}}}
	cur := Cursor{Page: 0, Y: TopMargin}

	cur = drawHeader(c, cur, doc.Metadata)
	for _, section := range doc.Sections {
		cur = drawSection(c, cur, section)
	}
	drawFooter(c, cur, opts.Disclaimer)
	numberPages(c)

	return Plan{
		Title:       doc.Metadata.Title,
		Author:      opts.Author,
		GeneratedAt: doc.Metadata.GeneratedAt,
		Pages:       c.pages,
		Sections:    c.place,
	}, nil
}

func drawHeader(c *canvas, cur Cursor, meta reports.Metadata) Cursor {
	c.draw(cur, textBox(StyleTitle, cur.Y, titleHeight, meta.Title))
	cur.Y += titleHeight
	if meta.Subtitle != "" {
		c.draw(cur, textBox(StyleSubtitle, cur.Y, lineHeight, meta.Subtitle))
		cur.Y += lineHeight
	}
	if meta.RangeLabel != "" {
		c.draw(cur, textBox(StyleMeta, cur.Y, lineHeight, "Period: "+meta.RangeLabel))
		cur.Y += lineHeight
	}
	if !meta.GeneratedAt.IsZero() {
		c.draw(cur, textBox(StyleMeta, cur.Y, lineHeight, "Generated: "+meta.GeneratedAt.Format("2006-01-02 15:04")))
		cur.Y += lineHeight
	}
	for _, note := range meta.Notes {
		c.draw(cur, textBox(StyleMeta, cur.Y, lineHeight, note))
		cur.Y += lineHeight
	}
	cur.Y += 2
	c.draw(cur, Op{Kind: OpRule, X: SideMargin, Y: cur.Y, W: UsableWidth})
	cur.Y += lineHeight
	return cur
}

// drawSection breaks the page before the section once the cursor is past BreakThreshold.
// Rows that would cross BottomLimit continue on a new page under a repeated header row.
func drawSection(c *canvas, cur Cursor, section reports.TableSection) Cursor {
	if cur.Y > BreakThreshold {
		cur = c.newPage(cur)
	}
	c.place = append(c.place, Placement{Heading: section.Heading, Page: cur.Page, Y: cur.Y})
	c.draw(cur, textBox(StyleHeading, cur.Y, headingHeight, section.Heading))
	cur.Y += headingHeight

	widths := columnWidths(section)
	align := columnAlignment(section)
	cur = drawRow(c, cur, section.Columns, widths, nil, StyleHeaderRow)
	for _, row := range section.Rows {
		if cur.Y+rowHeight > BottomLimit {
			cur = c.newPage(cur)
			cur = drawRow(c, cur, section.Columns, widths, nil, StyleHeaderRow)
		}
		cur = drawRow(c, cur, row, widths, align, StyleBodyRow)
	}
	if section.Footer != nil {
		if cur.Y+rowHeight > BottomLimit {
			cur = c.newPage(cur)
			cur = drawRow(c, cur, section.Columns, widths, nil, StyleHeaderRow)
		}
		cur = drawRow(c, cur, section.Footer, widths, align, StyleFooterRow)
	}
	cur.Y += sectionGap
	return cur
}

func drawRow(c *canvas, cur Cursor, cells []string, widths []float64, align []byte, style Style) Cursor {
	x := SideMargin
	for i, cell := range cells {
		a := byte('L')
		if align != nil {
			a = align[i]
		}
		c.draw(cur, Op{
			Kind:   OpBox,
			Style:  style,
			X:      x,
			Y:      cur.Y,
			W:      widths[i],
			H:      rowHeight,
			Text:   fit(cell, widths[i], fontSize(style)),
			Align:  a,
			Border: true,
			Fill:   style == StyleHeaderRow || style == StyleFooterRow,
		})
		x += widths[i]
	}
	cur.Y += rowHeight
	return cur
}

func drawFooter(c *canvas, cur Cursor, disclaimer []string) Cursor {
	if len(disclaimer) == 0 {
		return cur
	}
	needed := 2 + float64(len(disclaimer))*disclaimerLine
	if cur.Y+needed > BottomLimit {
		cur = c.newPage(cur)
	}
	c.draw(cur, Op{Kind: OpRule, X: SideMargin, Y: cur.Y, W: UsableWidth})
	cur.Y += 2
	for _, line := range disclaimer {
		c.draw(cur, textBox(StyleDisclaimer, cur.Y, disclaimerLine, line))
		cur.Y += disclaimerLine
	}
	return cur
}

func numberPages(c *canvas) {
	total := len(c.pages)
	for i := range c.pages {
		op := textBox(StylePageNumber, PageNumberY, disclaimerLine, fmt.Sprintf("Page %d of %d", i+1, total))
		op.Align = 'C'
		c.pages[i].Ops = append(c.pages[i].Ops, op)
	}
}

func textBox(style Style, y, h float64, text string) Op {
	return Op{Kind: OpBox, Style: style, X: SideMargin, Y: y, W: UsableWidth, H: h, Text: fit(text, UsableWidth, fontSize(style)), Align: 'L'}
}

// columnWidths splits the usable width in proportion to the widest cell of each column.
func columnWidths(section reports.TableSection) []float64 {
	weights := make([]int, len(section.Columns))
	measure := func(i int, s string) {
		if n := utf8.RuneCountInString(s); n > weights[i] {
			weights[i] = n
		}
	}
	for i, col := range section.Columns {
		weights[i] = minColumnChars
		measure(i, col)
	}
	for _, row := range section.Rows {
		for i, cell := range row {
			measure(i, cell)
		}
	}
	for i, cell := range section.Footer {
		measure(i, cell)
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = UsableWidth * float64(w) / float64(total)
	}
	return widths
}

// columnAlignment right-aligns every column after the first whose non-empty body cells all end in a digit.
func columnAlignment(section reports.TableSection) []byte {
	align := make([]byte, len(section.Columns))
	for i := range section.Columns {
		align[i] = 'L'
		if i == 0 {
			continue
		}
		numeric, seen := true, false
		for _, row := range section.Rows {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			seen = true
			last, _ := utf8.DecodeLastRuneInString(cell)
			if !unicode.IsDigit(last) {
				numeric = false
				break
			}
		}
		if numeric && seen {
			align[i] = 'R'
		}
	}
	return align
}

func fontSize(style Style) float64 {
	switch style {
	case StyleTitle:
		return 18
	case StyleSubtitle:
		return 11
	case StyleHeading:
		return 12
	case StyleDisclaimer, StylePageNumber:
		return 8
	default:
		return 9
	}
}

// fit truncates text that would overflow width at the given font size, using an average sans-serif glyph width.
func fit(text string, width, size float64) string {
	const avgGlyph = 0.5 * 0.3528 // em fraction times mm per point
	capacity := int((width - 2) / (size * avgGlyph))
	if capacity < 4 {
		capacity = 4
	}
	if utf8.RuneCountInString(text) <= capacity {
		return text
	}
	runes := []rune(text)
	return string(runes[:capacity-3]) + "..."
}
