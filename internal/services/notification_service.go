package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"text/template"
	"time"

	"ubuxa-console/internal/models"
)

// NotificationService dispatches the console's transactional emails.
// Delivery goes through an HTTP relay; when no relay URL is configured
// the message is logged instead, which is what local development uses.
type NotificationService interface {
	SendRegistrationEmail(ctx context.Context, tenant *models.Tenant) error
	SendDemoReminder(ctx context.Context, tenant *models.Tenant) error
	SendAdminInvite(ctx context.Context, email, inviteToken string) error
}

type notificationService struct {
	relayURL   string
	consoleURL string
	httpClient *http.Client
	templates  map[string]*template.Template
}

func NewNotificationService(relayURL, consoleURL string) NotificationService {
	return &notificationService{
		relayURL:   relayURL,
		consoleURL: consoleURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		templates:  parseEmailTemplates(),
	}
}

const registrationEmailTmpl = `Hello {{.FirstName}},

Your monthly fee for {{.CompanyName}} has been agreed at {{printf "%.2f" .MonthlyFee}}.
Complete your registration and make the initial payment here:

{{.ConsoleURL}}/register/{{.TenantID}}

The Ubuxa Team`

const demoReminderTmpl = `Hello {{.FirstName}},

This is a reminder that your Ubuxa demo for {{.CompanyName}} is scheduled for {{.DemoDate}}.

The Ubuxa Team`

const adminInviteTmpl = `Hello,

You have been invited to the Ubuxa admin console. Set your password here:

{{.ConsoleURL}}/set-password?token={{.InviteToken}}

The link expires in 48 hours.

The Ubuxa Team`

func parseEmailTemplates() map[string]*template.Template {
	return map[string]*template.Template{
		"registration": template.Must(template.New("registration").Parse(registrationEmailTmpl)),
		"demoReminder": template.Must(template.New("demoReminder").Parse(demoReminderTmpl)),
		"adminInvite":  template.Must(template.New("adminInvite").Parse(adminInviteTmpl)),
	}
}

func (s *notificationService) SendRegistrationEmail(ctx context.Context, tenant *models.Tenant) error {
	fee := 0.0
	if tenant.MonthlyFee != nil {
		fee = *tenant.MonthlyFee
	}
	body, err := s.render("registration", map[string]interface{}{
		"FirstName":   tenant.FirstName,
		"CompanyName": tenant.CompanyName,
		"MonthlyFee":  fee,
		"TenantID":    tenant.ID.String(),
		"ConsoleURL":  s.consoleURL,
	})
	if err != nil {
		return err
	}
	return s.deliver(ctx, tenant.Email, "Complete your Ubuxa registration", body)
}

func (s *notificationService) SendDemoReminder(ctx context.Context, tenant *models.Tenant) error {
	if tenant.DemoDate == nil {
		return fmt.Errorf("tenant %s has no demo date", tenant.ID)
	}
	body, err := s.render("demoReminder", map[string]interface{}{
		"FirstName":   tenant.FirstName,
		"CompanyName": tenant.CompanyName,
		"DemoDate":    models.FormatTimelineDate(*tenant.DemoDate),
	})
	if err != nil {
		return err
	}
	return s.deliver(ctx, tenant.Email, "Your Ubuxa demo is coming up", body)
}

func (s *notificationService) SendAdminInvite(ctx context.Context, email, inviteToken string) error {
	body, err := s.render("adminInvite", map[string]interface{}{
		"InviteToken": inviteToken,
		"ConsoleURL":  s.consoleURL,
	})
	if err != nil {
		return err
	}
	return s.deliver(ctx, email, "You have been invited to the Ubuxa console", body)
}

func (s *notificationService) render(name string, data map[string]interface{}) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template: %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %v", name, err)
	}
	return buf.String(), nil
}

func (s *notificationService) deliver(ctx context.Context, recipient, subject, body string) error {
	if s.relayURL == "" {
		log.Printf("[EMAIL] To=%s, Subject=%s, Body=%s", recipient, subject, body)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      recipient,
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.relayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email relay request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("email relay returned status %d", resp.StatusCode)
	}
	return nil
}
