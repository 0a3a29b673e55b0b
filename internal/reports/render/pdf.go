package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDFBackend replays a plan onto native PDF pages.
type PDFBackend struct {
	Creator string
}

// Finalize implements Backend.
func (b PDFBackend) Finalize(ctx context.Context, plan Plan) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(SideMargin, TopMargin, SideMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	if !plan.GeneratedAt.IsZero() {
		pdf.SetCreationDate(plan.GeneratedAt)
	}
	pdf.SetTitle(plan.Title, true)
	if plan.Author != "" {
		pdf.SetAuthor(plan.Author, true)
	}
	if b.Creator != "" {
		pdf.SetCreator(b.Creator, true)
	}
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularTTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldTTF)

	for _, page := range plan.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case OpRule:
				pdf.SetDrawColor(180, 180, 180)
				pdf.SetLineWidth(0.3)
				pdf.Line(op.X, op.Y, op.X+op.W, op.Y)
			case OpBox:
				applyStyle(pdf, op.Style)
				border := ""
				if op.Border {
					border = "1"
				}
				pdf.SetXY(op.X, op.Y)
				pdf.CellFormat(op.W, op.H, drawableText(op.Text), border, 0, string(op.Align)+"M", op.Fill, 0, "")
			}
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf layout: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func applyStyle(pdf *fpdf.Fpdf, style Style) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.SetTextColor(33, 33, 33)
	switch style {
	case StyleTitle:
		pdf.SetFont(fontFamily, "B", fontSize(style))
	case StyleSubtitle:
		pdf.SetFont(fontFamily, "", fontSize(style))
	case StyleMeta:
		pdf.SetFont(fontFamily, "", fontSize(style))
		pdf.SetTextColor(100, 100, 100)
	case StyleHeading:
		pdf.SetFont(fontFamily, "B", fontSize(style))
	case StyleHeaderRow:
		pdf.SetFont(fontFamily, "B", fontSize(style))
		pdf.SetFillColor(41, 128, 185)
		pdf.SetTextColor(255, 255, 255)
	case StyleFooterRow:
		pdf.SetFont(fontFamily, "B", fontSize(style))
		pdf.SetFillColor(236, 240, 241)
	case StyleDisclaimer:
		pdf.SetFont(fontFamily, "", fontSize(style))
		pdf.SetTextColor(120, 120, 120)
	case StylePageNumber:
		pdf.SetFont(fontFamily, "", fontSize(style))
		pdf.SetTextColor(120, 120, 120)
	default:
		pdf.SetFont(fontFamily, "", fontSize(style))
	}
}
