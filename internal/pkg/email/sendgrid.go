// internal/pkg/email/sendgrid.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// sendSendGridEmail sends email using the SendGrid v3 API
func (s *EmailService) sendSendGridEmail(ctx context.Context, email *Email) error {
	apiKey := s.config.Email.APIKey
	if apiKey == "" {
		return fmt.Errorf("SendGrid API key not configured")
	}

	to := make([]sendGridAddress, 0, len(email.To))
	for _, recipient := range email.To {
		to = append(to, sendGridAddress{Email: recipient})
	}

	reqData := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: to}},
		From: sendGridAddress{
			Email: s.config.Email.FromEmail,
			Name:  s.config.Email.FromName,
		},
		Subject: email.Subject,
		Content: []sendGridContent{{Type: "text/html", Value: email.HTMLContent}},
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("failed to marshal SendGrid request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendGridURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create SendGrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SendGrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("SendGrid API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}
