// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
)

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// Service handles PDF generation
type Service struct {
	config  *config.Config
	convert func(html []byte) ([]byte, error)
}

// NewService creates a new PDF service backed by wkhtmltopdf
func NewService(cfg *config.Config) *Service {
	return &Service{
		config:  cfg,
		convert: htmlToPDF,
	}
}

// RenderInvoice renders the invoice for a placed order as a PDF document
func (s *Service) RenderInvoice(o *order.Order) ([]byte, error) {
	htmlContent, err := s.generateHTML(s.invoiceData(o))
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}
	return s.convert(htmlContent)
}

func (s *Service) invoiceData(o *order.Order) InvoiceData {
	lines := make([]InvoiceLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = InvoiceLine{
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Total:     it.LineTotal().StringFixed(2),
		}
	}

	shipping := "FREE"
	if !o.ShippingFee.IsZero() {
		shipping = "$" + o.ShippingFee.StringFixed(2)
	}

	return InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   o.CreatedAt.Format("January 2, 2006"),
		Order:         o,
		Lines:         lines,
		Subtotal:      o.Subtotal.StringFixed(2),
		Shipping:      shipping,
		Tax:           o.TaxAmount.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Currency:      s.config.Pricing.Currency,
		Company: CompanyInfo{
			Name:    s.config.Company.Name,
			Address: s.config.Company.Address,
			Phone:   s.config.Company.Phone,
			Email:   s.config.Company.Email,
			Website: s.config.Company.Website,
		},
	}
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data InvoiceData) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func htmlToPDF(htmlContent []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeLetter)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Lines         []InvoiceLine
	Subtotal      string
	Shipping      string
	Tax           string
	Total         string
	Currency      string
	Company       CompanyInfo
}

// InvoiceLine is one priced row of the invoice
type InvoiceLine struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { overflow: hidden; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .company-info { float: left; width: 50%; }
        .invoice-info { float: right; width: 50%; text-align: right; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #232f3e; }
        table.items { width: 100%; border-collapse: collapse; margin-top: 20px; }
        table.items th { background: #f5f5f5; text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
        table.items td { padding: 8px; border-bottom: 1px solid #eee; }
        .num { text-align: right; }
        table.totals { width: 40%; margin-left: 60%; margin-top: 20px; }
        table.totals td { padding: 4px 8px; }
        .grand-total { font-weight: bold; font-size: 16px; border-top: 2px solid #333; }
        .footer { margin-top: 40px; font-size: 11px; color: #777; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <strong>{{.Company.Name}}</strong><br>
            {{if .Company.Address}}{{.Company.Address}}<br>{{end}}
            {{if .Company.Phone}}{{.Company.Phone}}<br>{{end}}
            {{.Company.Email}}
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <div>{{.InvoiceNumber}}</div>
            <div>Order {{.Order.OrderNumber}}</div>
            <div>Date: {{.InvoiceDate}}</div>
            <div>Status: {{.Order.Status}}</div>
        </div>
    </div>

    <div>
        <strong>Ship to</strong><br>
        {{.Order.Shipping.FullName}}<br>
        {{.Order.Shipping.Address}}<br>
        {{.Order.Shipping.City}}, {{.Order.Shipping.State}} {{.Order.Shipping.ZipCode}}<br>
        {{.Order.Shipping.Country}}<br>
        {{.Order.Shipping.Email}}
    </div>

    <table class="items">
        <tr>
            <th>SKU</th>
            <th>Item</th>
            <th class="num">Qty</th>
            <th class="num">Unit price</th>
            <th class="num">Total</th>
        </tr>
        {{range .Lines}}
        <tr>
            <td>{{.SKU}}</td>
            <td>{{.Name}}</td>
            <td class="num">{{.Quantity}}</td>
            <td class="num">${{.UnitPrice}}</td>
            <td class="num">${{.Total}}</td>
        </tr>
        {{end}}
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td class="num">${{.Subtotal}}</td></tr>
        <tr><td>Shipping</td><td class="num">{{.Shipping}}</td></tr>
        <tr><td>Tax</td><td class="num">${{.Tax}}</td></tr>
        <tr class="grand-total"><td>Total ({{.Currency}})</td><td class="num">${{.Total}}</td></tr>
    </table>

    <div class="footer">
        Paid by {{.Order.PaymentMethod}}. Thank you for shopping with {{.Company.Name}}.
        {{if .Company.Website}}<br>{{.Company.Website}}{{end}}
    </div>
</body>
</html>
`
