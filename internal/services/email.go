package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Mykyta-Harashchenko/contacthub/internal/config"
	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/internal/security"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/logger"
)

// EmailService sends verification and digest mail over SMTP. An empty mail
// host disables delivery; sends become logged no-ops.
type EmailService struct {
	cfg   *config.MailConfig
	codec *security.TokenCodec
}

func NewEmailService(cfg *config.MailConfig, codec *security.TokenCodec) *EmailService {
	return &EmailService{cfg: cfg, codec: codec}
}

func (s *EmailService) Enabled() bool {
	return s.cfg.Host != ""
}

// SendVerification issues an email-verification token for the recipient and
// mails the confirmation link.
func (s *EmailService) SendVerification(to, username, baseURL string) error {
	if !s.Enabled() {
		logger.Infof("[Email] delivery disabled, skipping verification email for %s", to)
		return nil
	}

	token, err := s.codec.IssueEmail(to)
	if err != nil {
		return err
	}

	body := s.buildVerificationBody(username, baseURL, token)
	return s.send([]string{to}, "Confirm your email", body)
}

// ProcessEmailTask is the task-queue processor for verification emails.
func (s *EmailService) ProcessEmailTask(ctx context.Context, task *EmailTask) error {
	return s.SendVerification(task.To, task.Username, task.Host)
}

// SendBirthdayDigest mails the upcoming-birthdays table to a user.
func (s *EmailService) SendBirthdayDigest(to, username string, contacts []models.Contact) error {
	if !s.Enabled() {
		return nil
	}
	if len(contacts) == 0 {
		return nil
	}

	body := s.buildDigestBody(username, contacts)
	return s.send([]string{to}, "Upcoming birthdays", body)
}

func (s *EmailService) buildVerificationBody(username, baseURL, token string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Hi %s,</h2>", username))
	sb.WriteString("<p>Thanks for registering with ContactHub. Please confirm your email address:</p>")
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s/api/auth/confirmed_email/%s\" style=\"background: #1a73e8; color: #fff; padding: 10px 16px; border-radius: 4px; text-decoration: none;\">Confirm your email</a></p>", baseURL, token))
	sb.WriteString("<p style=\"color: #888; font-size: 12px;\">The link expires in 24 hours. If you did not sign up, ignore this message.</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) buildDigestBody(username string, contacts []models.Contact) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Hi %s,</h2>", username))
	sb.WriteString("<p>These contacts have birthdays coming up:</p>")
	sb.WriteString("<table style=\"border-collapse: collapse;\">")

	for _, contact := range contacts {
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s %s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>",
			contact.Name, contact.Surname, contact.Birthday.Format("Jan 2")))
	}

	sb.WriteString("</table>")
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by ContactHub</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) send(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	fromHeader := from
	if s.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.cfg.FromName, from)
	}

	headers := make(map[string]string)
	headers["From"] = fromHeader
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendTLS(addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Warnf("[Email] Failed to send %q to %v: %v", subject, to, err)
		return err
	}

	logger.Infof("[Email] Sent %q to %v", subject, to)
	return nil
}

// sendTLS delivers over an implicit-TLS connection (port 465 style servers).
func (s *EmailService) sendTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}

	return w.Close()
}
