package service

import (
	"fmt"
	"log"
	"net/smtp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/curateddiscoveries/backend/config"
	"github.com/curateddiscoveries/backend/internal/models"
)

// EmailService sends transactional mail over SMTP. When SMTP is not
// configured it logs the message instead, which keeps development and CI
// working without a mail relay.
type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	baseURL      string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		fromName:     cfg.EmailFromName,
		baseURL:      cfg.BaseURL,
	}
}

func (s *EmailService) SendVerificationEmail(user *models.User, profile *models.Profile, token string) error {
	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token)
	subject := "Verify Your Email - CuratedDiscoveries"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>Welcome, %s!</h2>
	<p>Thanks for joining CuratedDiscoveries. Please verify your email address to activate your account.</p>
	<p style="margin: 30px 0;">
		<a href="%s" style="background-color: #7c3aed; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Verify Email Address</a>
	</p>
	<p style="color: #666; font-size: 14px;">If the button doesn't work, copy and paste this link into your browser:</p>
	<p style="background-color: #eee; padding: 10px; border-radius: 5px; word-break: break-all; font-size: 12px;">%s</p>
	<p style="color: #666; font-size: 12px;">This link expires in 24 hours. If you didn't sign up, you can ignore this email.</p>
</body>
</html>
`, s.greetingName(profile), verificationURL, verificationURL)

	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(user *models.User, profile *models.Profile) error {
	subject := "Welcome to CuratedDiscoveries!"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>Hello %s!</h2>
	<p>Your email has been verified. You can now create curations, follow curators and build your collection.</p>
	<p style="margin: 30px 0;">
		<a href="%s" style="background-color: #7c3aed; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Start Discovering</a>
	</p>
</body>
</html>
`, s.greetingName(profile), s.baseURL)

	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	if s.smtpHost == "" || s.smtpPort == "" {
		log.Printf("SMTP not configured, logging email:\nTo: %s\nSubject: %s\nBody:\n%s\n--- End Email ---", to, subject, body)
		return nil
	}

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// greetingName prefers the full name and falls back to a title-cased
// username, so "jane_doe" greets as "Jane_doe" rather than raw slug text.
func (s *EmailService) greetingName(profile *models.Profile) string {
	if profile == nil {
		return "there"
	}
	if profile.FullName != "" {
		return profile.FullName
	}
	return cases.Title(language.English).String(profile.Username)
}
