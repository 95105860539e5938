package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/go-pdf/fpdf"
)

type Renderer struct {
	brand    string
	logoPath string
	compress bool
}

func NewRenderer(brand, logoPath string) *Renderer {
	return &Renderer{brand: brand, logoPath: logoPath, compress: true}
}

var (
	colWidths  = []float64{95, 20, 35, 40}
	colHeaders = []string{"Item", "Qty", "Unit Price", "Line Total"}
	colAligns  = []string{"L", "C", "R", "R"}
)

// Render lays out the invoice on one or more A4 pages. The same order always
// produces the same bytes.
func (r *Renderer) Render(order domain.Order) ([]byte, error) {
	doc, err := BuildDocument(order, r.brand)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	stamp := order.CreatedAt
	if stamp.IsZero() {
		stamp = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Invoice "+doc.OrderID, false)
	pdf.SetAuthor(doc.Brand, false)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 20)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, tr(doc.Footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	r.header(pdf, doc, tr)
	address(pdf, doc, tr)
	table(pdf, doc, tr)
	totals(pdf, doc, tr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", doc.OrderID, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(pdf *fpdf.Fpdf, doc *Document, tr func(string) string) {
	x := 10.0
	if r.logoPath != "" {
		pdf.ImageOptions(r.logoPath, 10, 10, 18, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		x = 32
	}
	pdf.SetXY(x, 12)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(90, 10, tr(doc.Brand), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(120, 12)
	pdf.CellFormat(80, 6, tr("Invoice for order "+doc.OrderID), "", 2, "R", false, 0, "")
	pdf.CellFormat(80, 6, tr("Date: "+doc.Date), "", 2, "R", false, 0, "")
	pdf.CellFormat(80, 6, tr("Status: "+doc.Status), "", 2, "R", false, 0, "")
	pdf.SetY(42)
}

func address(pdf *fpdf.Fpdf, doc *Document, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Ship to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.AddressLines {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func table(pdf *fpdf.Fpdf, doc *Document, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range colHeaders {
		pdf.CellFormat(colWidths[i], 8, h, "B", 0, colAligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range doc.Lines {
		cells := []string{
			tr(l.Description),
			fmt.Sprintf("%d", l.Quantity),
			Money(doc.Currency, l.UnitPrice),
			Money(doc.Currency, l.LineTotal),
		}
		for i, c := range cells {
			if i == 0 {
				c = truncate(pdf, c, colWidths[0]-2)
			}
			pdf.CellFormat(colWidths[i], 7, c, "", 0, colAligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func totals(pdf *fpdf.Fpdf, doc *Document, tr func(string) string) {
	labelW := colWidths[0] + colWidths[1] + colWidths[2]
	valueW := colWidths[3]

	if doc.Discrepancy {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(labelW, 7, "Subtotal", "T", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 7, Money(doc.Currency, doc.Subtotal), "T", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(labelW, 8, "Total Paid", "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 8, Money(doc.Currency, doc.TotalPaid), "", 1, "R", false, 0, "")
		return
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 8, Money(doc.Currency, doc.TotalPaid), "T", 1, "R", false, 0, "")
}

func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
