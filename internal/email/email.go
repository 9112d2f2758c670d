package email

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"medidocs/internal/config"
)

// Service handles email operations
type Service struct {
	config *config.EmailConfig
	send   func(to, subject, body string) error
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig) *Service {
	s := &Service{config: cfg}
	s.send = s.sendEmail
	return s
}

// Enabled reports whether outgoing mail is configured
func (s *Service) Enabled() bool {
	return s.config.Enabled && s.config.SMTPHost != ""
}

// DocumentNotification is the content of a single workflow notification
type DocumentNotification struct {
	RecipientName string
	ActorName     string
	Title         string
	Action        string
	Status        string
	Message       string
	OccurredAt    time.Time
}

var documentTemplate = template.Must(template.New("document").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Heading}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2e7d6b;">{{.Heading}}</h2>
        <p>Hello {{.N.RecipientName}},</p>
        <p><strong>{{.N.ActorName}}</strong> {{.Verb}} <strong>{{.N.Title}}</strong>.</p>
        <div style="background-color: #e8f5e9; border-left: 4px solid #2e7d6b; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Status:</strong> {{.N.Status}}</p>
            <p style="margin: 5px 0;"><strong>Time:</strong> {{.When}}</p>
            {{if .N.Message}}<p style="margin: 5px 0;"><strong>Note:</strong> {{.N.Message}}</p>{{end}}
        </div>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.InboxURL}}" style="background-color: #2e7d6b; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open inbox</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`))

var actionVerbs = map[string]string{
	"sent":               "sent you",
	"received":           "received",
	"viewed":             "opened",
	"acknowledged":       "acknowledged",
	"approved":           "approved",
	"rejected":           "rejected",
	"revision_requested": "requested a revision of",
	"forwarded":          "forwarded to you",
}

// SendDocumentNotification notifies a user about a submission or share transition
func (s *Service) SendDocumentNotification(to string, n DocumentNotification) error {
	verb := actionVerbs[n.Action]
	if verb == "" {
		verb = strings.ReplaceAll(n.Action, "_", " ")
	}
	subject := fmt.Sprintf("MediDocs: %s %s", n.Title, strings.ReplaceAll(n.Status, "_", " "))

	body, err := render(documentTemplate, map[string]interface{}{
		"Heading":  "Document update",
		"N":        n,
		"Verb":     verb,
		"When":     n.OccurredAt.Format("2006-01-02 15:04 MST"),
		"InboxURL": s.config.InboxURL,
	})
	if err != nil {
		return err
	}
	return s.send(to, subject, body)
}

// PendingItem is one submission awaiting a reviewer's decision
type PendingItem struct {
	ID          string
	Title       string
	FromName    string
	Status      string
	DaysWaiting int
}

var digestTemplate = template.Must(template.New("digest").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Pending submissions</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 700px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2e7d6b;">{{len .Items}} submissions await your decision</h2>
        <p>Hello {{.Name}},</p>
        <table style="width: 100%; border-collapse: collapse;">
            <tr style="background-color: #f5f5f5;">
                <th style="padding: 8px; text-align: left;">Title</th>
                <th style="padding: 8px; text-align: left;">From</th>
                <th style="padding: 8px; text-align: left;">Status</th>
                <th style="padding: 8px; text-align: center;">Waiting</th>
            </tr>
            {{range .Items}}
            <tr style="border-bottom: 1px solid #eee;">
                <td style="padding: 12px 8px;">{{.Title}}</td>
                <td style="padding: 12px 8px;">{{.FromName}}</td>
                <td style="padding: 12px 8px;">{{.Status}}</td>
                <td style="padding: 12px 8px; text-align: center;">{{.DaysWaiting}} days</td>
            </tr>
            {{end}}
        </table>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.InboxURL}}" style="background-color: #2e7d6b; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open inbox</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">You receive this digest while submissions wait for you.</p>
    </div>
</body>
</html>
`))

// SendPendingDigest sends a reviewer the list of submissions awaiting them
func (s *Service) SendPendingDigest(to, name string, items []PendingItem) error {
	if len(items) == 0 {
		return nil
	}
	subject := fmt.Sprintf("MediDocs: %d submissions awaiting your decision", len(items))

	body, err := render(digestTemplate, map[string]interface{}{
		"Name":     name,
		"Items":    items,
		"InboxURL": s.config.InboxURL,
	})
	if err != nil {
		return err
	}
	return s.send(to, subject, body)
}

const (
	maxAlertErrors    = 20
	maxAlertDocuments = 10
)

var chainAlertTemplate = template.Must(template.New("alert").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>CRITICAL: Audit Chain Validation Failed</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 700px; margin: 0 auto; padding: 20px;">
        <div style="background-color: #f8d7da; border-left: 5px solid #dc3545; padding: 20px; margin-bottom: 20px;">
            <h2 style="color: #721c24; margin-top: 0;">CRITICAL SECURITY ALERT</h2>
            <p style="font-size: 16px; font-weight: bold; color: #721c24;">Audit chain validation failed, the trail may have been altered</p>
        </div>
        <p>Hello {{.Name}},</p>
        <table style="width: 100%; border-collapse: collapse;">
            <tr><td style="padding: 8px;"><strong>Documents checked:</strong></td><td style="padding: 8px; text-align: right;">{{.Total}}</td></tr>
            <tr><td style="padding: 8px;"><strong>Valid chains:</strong></td><td style="padding: 8px; text-align: right;">{{.Valid}}</td></tr>
            <tr><td style="padding: 8px;"><strong>Broken chains:</strong></td><td style="padding: 8px; text-align: right; color: #721c24;">{{.BrokenCount}}</td></tr>
        </table>
        <h3 style="color: #dc3545;">Affected documents:</h3>
        <ul>{{range .Documents}}<li><code>{{.}}</code></li>{{end}}{{if .MoreDocuments}}<li><em>... and {{.MoreDocuments}} more</em></li>{{end}}</ul>
        <h3 style="color: #dc3545;">Details:</h3>
        <ul style="font-family: 'Courier New', monospace; font-size: 13px;">{{range .Errors}}<li>{{.}}</li>{{end}}{{if .MoreErrors}}<li><em>... and {{.MoreErrors}} more errors (see logs for details)</em></li>{{end}}</ul>
        <p><strong>Validated at:</strong> {{.When}}</p>
        <hr style="border: none; border-top: 2px solid #dc3545; margin: 30px 0;">
        <p style="color: #999; font-size: 12px;">Automated integrity alert from MediDocs.</p>
    </div>
</body>
</html>
`))

// SendHashChainAlert sends a critical alert to admins when audit chain validation fails
func (s *Service) SendHashChainAlert(to, adminName string, total, valid int, brokenDocuments, errors []string) error {
	subject := "CRITICAL: Audit Chain Validation Failed"

	docs, moreDocs := truncate(brokenDocuments, maxAlertDocuments)
	errs, moreErrs := truncate(errors, maxAlertErrors)

	body, err := render(chainAlertTemplate, map[string]interface{}{
		"Name":          adminName,
		"Total":         total,
		"Valid":         valid,
		"BrokenCount":   len(brokenDocuments),
		"Documents":     docs,
		"MoreDocuments": moreDocs,
		"Errors":        errs,
		"MoreErrors":    moreErrs,
		"When":          time.Now().Format("2006-01-02 15:04:05 MST"),
	})
	if err != nil {
		return err
	}
	return s.send(to, subject, body)
}

func truncate(items []string, limit int) ([]string, int) {
	if len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// sendEmail sends an email using SMTP
func (s *Service) sendEmail(to, subject, body string) error {
	headers := []string{
		"From: " + s.config.SMTPFrom,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	var message bytes.Buffer
	for _, h := range headers {
		message.WriteString(h + "\r\n")
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	slog.Debug("Attempting to connect to SMTP server", "address", addr)

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		slog.Error("Failed to connect to SMTP server", "address", addr, "error", err)
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		if err := conn.Close(); err != nil {
			slog.Debug("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		slog.Error("Failed to create SMTP client", "error", err)
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		if err := client.Close(); err != nil {
			slog.Debug("Failed to close SMTP client", "error", err)
		}
	}(client)

	// Mailpit and similar dev servers accept unauthenticated mail
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		_ = client.Auth(auth)
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		slog.Error("Failed to set sender", "from", s.config.SMTPFrom, "error", err)
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		slog.Error("Failed to set recipient", "to", to, "error", err)
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		slog.Error("Failed to initiate data transfer", "error", err)
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	defer func(wc io.WriteCloser) {
		if err := wc.Close(); err != nil {
			slog.Error("Failed to close write closer", "error", err)
		}
	}(wc)

	if _, err := wc.Write(message.Bytes()); err != nil {
		slog.Error("Failed to write message", "error", err)
		return fmt.Errorf("failed to write message: %w", err)
	}

	slog.Info("Email sent successfully", "to", to)
	return nil
}
