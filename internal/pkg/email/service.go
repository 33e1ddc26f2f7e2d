// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
)

//go:embed templates/*.html
var templateFS embed.FS

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"

// EmailService handles all email operations
type EmailService struct {
	config      *config.Config
	log         *logrus.Logger
	templates   map[string]*template.Template
	client      *http.Client
	sendGridURL string
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, log *logrus.Logger) *EmailService {
	service := &EmailService{
		config:    cfg,
		log:       log,
		templates: make(map[string]*template.Template),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		sendGridURL: sendGridURL,
	}

	service.loadTemplates()

	return service
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Email.Provider {
	case "log", "":
		s.log.WithFields(logrus.Fields{
			"to":      strings.Join(email.To, ", "),
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("Email not sent, log provider active")
		return nil
	case "smtp":
		return s.sendSMTPEmail(email)
	case "sendgrid":
		return s.sendSendGridEmail(ctx, email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, userEmail, userName string) error {
	data := WelcomeEmailData{
		EmailTemplateData: s.baseData(userName, userEmail),
		ShopURL:           s.config.App.SiteURL + "/products",
	}

	htmlContent, err := s.renderTemplate("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome email template: %w", err)
	}

	email := &Email{
		To:          []string{userEmail},
		Subject:     fmt.Sprintf("Welcome to %s!", s.config.Email.FromName),
		HTMLContent: htmlContent,
		Type:        EmailTypeWelcome,
		Data:        map[string]interface{}{"user_name": userName},
	}

	return s.SendEmail(ctx, email)
}

// SendOrderConfirmationEmail sends the confirmation for a placed order to its shipping address
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, o *order.Order) error {
	if o.Shipping.Email == "" {
		return fmt.Errorf("order %s has no contact email", o.OrderNumber)
	}

	data := s.orderConfirmationData(o)

	htmlContent, err := s.renderTemplate("order_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	email := &Email{
		To:          []string{o.Shipping.Email},
		Subject:     fmt.Sprintf("Order Confirmation - %s", o.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
		Data: map[string]interface{}{
			"order_number": o.OrderNumber,
			"order_total":  data.Total,
		},
	}

	return s.SendEmail(ctx, email)
}

func (s *EmailService) orderConfirmationData(o *order.Order) OrderConfirmationData {
	items := make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItem{
			Name:     it.Name,
			SKU:      it.SKU,
			Quantity: it.Quantity,
			Price:    it.UnitPrice.StringFixed(2),
			Total:    it.LineTotal().StringFixed(2),
			ImageURL: it.Image,
		}
	}

	return OrderConfirmationData{
		EmailTemplateData: s.baseData(o.Shipping.FirstName, o.Shipping.Email),
		OrderNumber:       o.OrderNumber,
		OrderDate:         o.CreatedAt.Format("January 2, 2006"),
		EstimatedDelivery: o.EstimatedDelivery.Format("Monday, January 2"),
		OrderURL:          fmt.Sprintf("%s/orders/%s", s.config.App.SiteURL, o.OrderNumber),
		Items:             items,
		Subtotal:          o.Subtotal.StringFixed(2),
		ShippingFee:       o.ShippingFee.StringFixed(2),
		TaxAmount:         o.TaxAmount.StringFixed(2),
		Total:             o.Total.StringFixed(2),
		PaymentMethod:     paymentLabel(o.PaymentMethod),
		ShippingAddress: Address{
			Name:    o.Shipping.FullName(),
			Line1:   o.Shipping.Address,
			City:    o.Shipping.City,
			State:   o.Shipping.State,
			ZipCode: o.Shipping.ZipCode,
			Country: o.Shipping.Country,
			Phone:   o.Shipping.Phone,
		},
	}
}

func (s *EmailService) baseData(userName, userEmail string) EmailTemplateData {
	return GetBaseTemplateData(s.config.Email.FromName, s.config.App.SiteURL, userName, userEmail)
}

func paymentLabel(m order.PaymentMethod) string {
	switch m {
	case order.PaymentMethodPayPal:
		return "PayPal"
	default:
		return "Credit / Debit Card"
	}
}

// loadTemplates parses the embedded templates, falling back to a plain layout
func (s *EmailService) loadTemplates() {
	for _, name := range []string{"welcome", "order_confirmation"} {
		tmpl, err := template.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			s.log.WithError(err).WithField("template", name).Warn("Could not load email template")
			s.templates[name] = s.createFallbackTemplate(name)
			continue
		}
		s.templates[name] = tmpl
	}
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

// createFallbackTemplate creates a basic HTML template as fallback
func (s *EmailService) createFallbackTemplate(name string) *template.Template {
	basicTemplate := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px;">
    <h1>{{.SiteName}}</h1>
    <p>Hello {{.UserName}},</p>
    <p>This is a notification from {{.SiteName}}.</p>
    <p>&copy; {{.Year}} {{.SiteName}}</p>
</body>
</html>`

	return template.Must(template.New(name).Parse(basicTemplate))
}
