// Package invoice renders a printable PDF for a placed order.
package invoice

import (
	"bytes"
	"fmt"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"storefront-service/internal/entity"
)

// Render writes the invoice of order. The QR code encodes orderURL when it
// is set, or the order id otherwise.
func Render(order *entity.Order, storeName, orderURL string) ([]byte, error) {
	payload := order.OrderID
	if orderURL != "" {
		payload = orderURL
	}
	qrPNG, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+order.OrderID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(storeName))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Invoice for order "+order.OrderID)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Date: "+order.CreatedAt.Format("02 Jan 2006"))
	pdf.Ln(6)
	pdf.Cell(0, 8, "Status: "+string(order.Status))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 12, 36, 36, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Ship to")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	for _, line := range addressLines(order) {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(95, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		pdf.CellFormat(95, 8, tr(item.ProductName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprint(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(item.ProductPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(item.Subtotal), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 10, fmt.Sprintf("Total (%d items)", order.TotalItems), "1", 0, "L", false, 0, "")
	pdf.CellFormat(70, 10, money(order.TotalPrice), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Core PDF fonts have no rupee glyph.
func money(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

func addressLines(o *entity.Order) []string {
	lines := []string{o.CustomerName, o.ShippingAddress}
	if o.Apartment != "" {
		lines = append(lines, o.Apartment)
	}
	return append(lines,
		fmt.Sprintf("%s, %s - %s", o.City, o.State, o.Pincode),
		"Phone: "+o.CustomerPhone,
		"Email: "+o.CustomerEmail,
	)
}
