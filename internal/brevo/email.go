package brevo

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/i18n"
)

const (
	DefaultNotificationEmail = "info@procoachmastery.com"
	DefaultSenderEmail       = "noreply@procoachmastery.com"
	DefaultSenderName        = "Pro Coach Mastery"
)

// Address is a mail participant.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendEmailRequest struct {
	Sender      *Address          `json:"sender,omitempty"`
	To          []Address         `json:"to"`
	Subject     string            `json:"subject,omitempty"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	TemplateID  int64             `json:"templateId,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

// SentEmail is the body Brevo returns for an accepted message.
type SentEmail struct {
	MessageID string `json:"messageId"`
}

// sendEmail posts a transactional message.
func (c *Client) sendEmail(ctx context.Context, req sendEmailRequest) (*SentEmail, error) {
	var sent SentEmail
	if err := c.do(ctx, http.MethodPost, "/smtp/email", req, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

var notificationTemplate = template.Must(template.New("notification").Parse(
	`<h2>{{.Heading}}</h2>
<p><strong>{{.FromLabel}}:</strong> {{.Name}} ({{.Email}})</p>
<p><strong>{{.MessageLabel}}:</strong></p>
<p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
`))

// Mailer sends contact-form notifications to the site owner.
type Mailer struct {
	Client     *Client
	Recipient  string
	Sender     Address
	TemplateID int64
	Locale     i18n.Locale
}

// NewMailer returns a mailer with defaults applied.
func NewMailer(client *Client, recipient string, templateID int64) *Mailer {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = DefaultNotificationEmail
	}
	return &Mailer{
		Client:     client,
		Recipient:  recipient,
		Sender:     Address{Email: DefaultSenderEmail, Name: DefaultSenderName},
		TemplateID: templateID,
		Locale:     i18n.Default,
	}
}

// NotifyContact mails a contact submission. With a template id Brevo renders
// the template with name, email and message params; otherwise a plain HTML
// body is sent.
func (m *Mailer) NotifyContact(ctx context.Context, submission core.ContactSubmission) error {
	if m == nil || !m.Client.Configured() {
		return fmt.Errorf("mailer not configured")
	}

	req := sendEmailRequest{To: []Address{{Email: m.Recipient}}}
	if m.TemplateID > 0 {
		req.TemplateID = m.TemplateID
		req.Params = map[string]string{
			"name":    submission.Name,
			"email":   submission.Email,
			"message": submission.Message,
		}
	} else {
		body, err := renderNotification(m.Locale, submission)
		if err != nil {
			return err
		}
		sender := m.Sender
		req.Sender = &sender
		req.Subject = i18n.Text(m.Locale, i18n.KeyNotifySubject, submission.Name)
		req.HTMLContent = body
	}

	_, err := m.Client.sendEmail(ctx, req)
	return err
}

func renderNotification(locale i18n.Locale, submission core.ContactSubmission) (string, error) {
	heading, from, message := "Nieuw contactformulier bericht", "Van", "Bericht"
	if locale == i18n.English {
		heading, from, message = "New contact form message", "From", "Message"
	}

	data := struct {
		Heading      string
		FromLabel    string
		MessageLabel string
		Name         string
		Email        string
		Lines        []string
	}{
		Heading:      heading,
		FromLabel:    from,
		MessageLabel: message,
		Name:         submission.Name,
		Email:        submission.Email,
		Lines:        strings.Split(strings.ReplaceAll(submission.Message, "\r\n", "\n"), "\n"),
	}

	var buf bytes.Buffer
	if err := notificationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}
