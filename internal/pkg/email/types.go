// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeWelcome           EmailType = "welcome"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string               `json:"to"`
	Subject     string                 `json:"subject"`
	HTMLContent string                 `json:"html_content"`
	Type        EmailType              `json:"type"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName   string
	SiteURL    string
	SupportURL string
	UserName   string
	UserEmail  string
	Year       int
}

// WelcomeEmailData contains data for welcome email
type WelcomeEmailData struct {
	EmailTemplateData
	ShopURL string
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderNumber       string
	OrderDate         string
	EstimatedDelivery string
	OrderURL          string
	Items             []OrderItem
	Subtotal          string
	ShippingFee       string
	TaxAmount         string
	Total             string
	PaymentMethod     string
	ShippingAddress   Address
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string
	SKU      string
	Quantity int
	Price    string
	Total    string
	ImageURL string
}

// Address represents the shipping address printed in the e-mail
type Address struct {
	Name    string
	Line1   string
	City    string
	State   string
	ZipCode string
	Country string
	Phone   string
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:   siteName,
		SiteURL:    siteURL,
		SupportURL: siteURL + "/support",
		UserName:   userName,
		UserEmail:  userEmail,
		Year:       time.Now().Year(),
	}
}
