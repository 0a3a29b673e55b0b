package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"

	"github.com/laundryconnect/laundryconnect/report"
	"github.com/laundryconnect/laundryconnect/web"
)

// HTMLConverter exposes the subset of the report client used by the HTML backend.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html string, page report.PageOptions) ([]byte, error)
}

// HTMLBackend replays a plan as absolutely positioned boxes and converts the page to PDF through Gotenberg.
type HTMLBackend struct {
	tpl    *template.Template
	client HTMLConverter
}

type htmlDocument struct {
	Title  string
	Author string
	Pages  []htmlPage
}

type htmlPage struct {
	Boxes []htmlBox
}

type htmlBox struct {
	Rule  bool
	Class string
	X     string
	Y     string
	W     string
	H     string
	Text  string
}

// NewHTMLBackend parses the document template and wires the converter.
func NewHTMLBackend(client HTMLConverter) (*HTMLBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("html backend: converter required")
	}
	tpl, err := template.New("document.html").ParseFS(web.Templates, "templates/reports/document.html")
	if err != nil {
		return nil, err
	}
	return &HTMLBackend{tpl: tpl, client: client}, nil
}

// HTML executes the template for the plan.
func (b *HTMLBackend) HTML(plan Plan) (string, error) {
	if b == nil || b.tpl == nil {
		return "", fmt.Errorf("html backend not initialised")
	}
	doc := htmlDocument{Title: plan.Title, Author: plan.Author, Pages: make([]htmlPage, len(plan.Pages))}
	for i, page := range plan.Pages {
		boxes := make([]htmlBox, 0, len(page.Ops))
		for _, op := range page.Ops {
			boxes = append(boxes, htmlBox{
				Rule:  op.Kind == OpRule,
				Class: boxClass(op),
				X:     mm(op.X),
				Y:     mm(op.Y),
				W:     mm(op.W),
				H:     mm(op.H),
				Text:  op.Text,
			})
		}
		doc.Pages[i] = htmlPage{Boxes: boxes}
	}
	buf := &bytes.Buffer{}
	if err := b.tpl.Execute(buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Finalize implements Backend.
func (b *HTMLBackend) Finalize(ctx context.Context, plan Plan) ([]byte, error) {
	html, err := b.HTML(plan)
	if err != nil {
		return nil, err
	}
	return b.client.RenderHTML(ctx, html, report.A4)
}

func boxClass(op Op) string {
	class := "op " + styleClass(op.Style)
	if op.Border {
		class += " bordered"
	}
	switch op.Align {
	case 'R':
		class += " align-r"
	case 'C':
		class += " align-c"
	}
	return class
}

func styleClass(style Style) string {
	switch style {
	case StyleTitle:
		return "title"
	case StyleSubtitle:
		return "subtitle"
	case StyleMeta:
		return "meta"
	case StyleHeading:
		return "heading"
	case StyleHeaderRow:
		return "header-row"
	case StyleFooterRow:
		return "footer-row"
	case StyleDisclaimer:
		return "disclaimer"
	case StylePageNumber:
		return "page-number"
	default:
		return "body-row"
	}
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
