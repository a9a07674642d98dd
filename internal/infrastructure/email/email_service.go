package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/pitchapp/pitch-api/internal/core/domain/apperrors"
	"github.com/pitchapp/pitch-api/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// EmailConfig holds email service configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	AppName        string
	BaseURL        string
}

// EmailService sends account link emails through SendGrid.
type EmailService struct {
	config    *EmailConfig
	logger    *logrus.Logger
	client    *sendgrid.Client
	templates map[string]*template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(config *EmailConfig, logger *logrus.Logger) (ports.EmailService, error) {
	client := sendgrid.NewSendClient(config.SendGridAPIKey)

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &EmailService{
		config:    config,
		logger:    logger,
		client:    client,
		templates: templates,
	}, nil
}

// loadTemplates parses all email templates from the embedded filesystem
func loadTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	templateNames := []string{
		"password_reset",
		"info_change",
	}

	for _, name := range templateNames {
		tmpl, err := template.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return templates, nil
}

// sendEmail sends an email using SendGrid
func (e *EmailService) sendEmail(to, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail("", to)

	message := mail.NewSingleEmail(from, subject, recipient, "", htmlContent)

	response, err := e.client.Send(message)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"error":   err,
		}).Error("Failed to send email")
		return fmt.Errorf("%w: %v", apperrors.ErrMailDispatch, err)
	}
	if response.StatusCode >= 400 {
		e.logger.WithFields(logrus.Fields{
			"to":          to,
			"subject":     subject,
			"status_code": response.StatusCode,
		}).Error("Email provider rejected message")
		return fmt.Errorf("%w: provider status %d", apperrors.ErrMailDispatch, response.StatusCode)
	}

	e.logger.WithFields(logrus.Fields{
		"to":          to,
		"subject":     subject,
		"status_code": response.StatusCode,
	}).Info("Email sent successfully")

	return nil
}

// renderTemplate renders an email template with the provided data
func (e *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := e.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

// PasswordResetEmailData holds data for the password reset template
type PasswordResetEmailData struct {
	AppName  string
	UserName string
	ResetURL string
}

// InfoChangeEmailData holds data for the account info change template
type InfoChangeEmailData struct {
	AppName   string
	UserName  string
	ChangeURL string
}

// SendPasswordResetEmail sends a one-time password reset link
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, email, token, userName string) error {
	data := PasswordResetEmailData{
		AppName:  e.config.AppName,
		UserName: userName,
		ResetURL: fmt.Sprintf("%s/api/v1/password/change/%s", e.config.BaseURL, token),
	}

	htmlContent, err := e.renderTemplate("password_reset", data)
	if err != nil {
		return fmt.Errorf("failed to render password reset email template: %w", err)
	}

	subject := fmt.Sprintf("Reset Your Password - %s", e.config.AppName)

	return e.sendEmail(email, subject, htmlContent)
}

// SendInfoChangeEmail sends a one-time account info change link
func (e *EmailService) SendInfoChangeEmail(ctx context.Context, email, token, userName string) error {
	data := InfoChangeEmailData{
		AppName:   e.config.AppName,
		UserName:  userName,
		ChangeURL: fmt.Sprintf("%s/api/v1/info/change/%s", e.config.BaseURL, token),
	}

	htmlContent, err := e.renderTemplate("info_change", data)
	if err != nil {
		return fmt.Errorf("failed to render info change email template: %w", err)
	}

	subject := fmt.Sprintf("Confirm Your Account Changes - %s", e.config.AppName)

	return e.sendEmail(email, subject, htmlContent)
}
