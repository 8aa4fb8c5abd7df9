package services

import (
	"fmt"
	"html"

	"github.com/CampusLease/initializers"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	sender emailSender
	from   string
}

var emailService *EmailService

// InitEmailService initializes the email service with Resend API
func InitEmailService() {
	apiKey := initializers.Cfg.ResendAPIKey
	if apiKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set, email service will not be available")
		return
	}

	client := resend.NewClient(apiKey)
	emailService = &EmailService{sender: client.Emails, from: initializers.Cfg.EmailFrom}

	log.Info().Msg("email service initialized with Resend")
}

// GetEmailService returns the singleton email service instance, or nil when
// no API key is configured.
func GetEmailService() *EmailService {
	return emailService
}

// SetEmailService replaces the singleton; tests pass a fake sender.
func SetEmailService(s *EmailService) {
	emailService = s
}

func NewEmailService(sender emailSender, from string) *EmailService {
	return &EmailService{sender: sender, from: from}
}

const emailLayout = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; color: #1f2933; max-width: 560px; margin: 0 auto; padding: 24px;">
    <h1 style="color: #2563eb; margin: 0 0 24px;">CampusLease</h1>
    %s
    <p style="font-size: 12px; color: #6b7280; border-top: 1px solid #e5e7eb; padding-top: 16px; margin-top: 32px;">
        This is an automated message from CampusLease.
    </p>
</body>
</html>
`

func (s *EmailService) send(to, subject, htmlContent, text string) error {
	if s == nil || s.sender == nil {
		return fmt.Errorf("email service not initialized")
	}

	sent, err := s.sender.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    fmt.Sprintf(emailLayout, htmlContent),
		Text:    text,
	})
	if err != nil {
		log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("to", to).Str("emailId", sent.Id).Msg("email sent")
	return nil
}

// SendPasswordResetEmail sends the 6-digit reset code.
func (s *EmailService) SendPasswordResetEmail(toEmail, code, name string) error {
	body := fmt.Sprintf(`
    <p>Hi %s,</p>
    <p>Use this code to reset your CampusLease password:</p>
    <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; font-family: monospace;">%s</p>
    <p><strong>The code expires in 15 minutes.</strong> If you did not ask for a reset, ignore this email.</p>`,
		html.EscapeString(name), code)

	text := fmt.Sprintf("Hi %s,\n\nYour CampusLease password reset code is %s.\nIt expires in 15 minutes. If you did not ask for a reset, ignore this email.\n", name, code)

	return s.send(toEmail, "Your CampusLease password reset code", body, text)
}

// SendApplicationEmail tells a listing owner that someone applied.
func (s *EmailService) SendApplicationEmail(toEmail, ownerName, listingTitle, applicantName, applicantEmail, message string) error {
	body := fmt.Sprintf(`
    <p>Hi %s,</p>
    <p><strong>%s</strong> (%s) applied to <strong>%s</strong>.</p>
    <blockquote style="border-left: 3px solid #2563eb; padding-left: 12px; color: #4b5563;">%s</blockquote>
    <p>Reply to the applicant directly or from your CampusLease inbox.</p>`,
		html.EscapeString(ownerName), html.EscapeString(applicantName), html.EscapeString(applicantEmail),
		html.EscapeString(listingTitle), html.EscapeString(message))

	text := fmt.Sprintf("Hi %s,\n\n%s (%s) applied to %s.\n\n%s\n", ownerName, applicantName, applicantEmail, listingTitle, message)

	return s.send(toEmail, fmt.Sprintf("New application for %s", listingTitle), body, text)
}
