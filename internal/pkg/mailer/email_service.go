package mailer

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/gomail.v2"
)

// NotificationDispatcher sends a templated e-mail. Personalisation keys are substituted into
// the template registered under templateId.
type NotificationDispatcher interface {
	SendEmail(address, templateId string, personalisation map[string]string) error
}

// Template is a subject line plus an intro paragraph. Both may reference ((key)) placeholders.
type Template struct {
	Subject string
	Intro   string
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	templates   map[string]Template
}

func NewEmailService(host string, port int, username, password, senderEmail string, templates map[string]Template) NotificationDispatcher {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		templates:   templates,
	}
}

func (s *emailService) SendEmail(address, templateId string, personalisation map[string]string) error {
	tpl, ok := s.templates[templateId]
	if !ok {
		return fmt.Errorf("unknown e-mail template %q", templateId)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", address)
	m.SetHeader("Subject", substitute(tpl.Subject, personalisation))
	m.SetBody("text/html", renderBody(substitute(tpl.Intro, personalisation), personalisation))

	return s.dialer.DialAndSend(m)
}

func substitute(text string, personalisation map[string]string) string {
	for k, v := range personalisation {
		text = strings.ReplaceAll(text, "(("+k+"))", v)
	}
	return text
}

func renderBody(intro string, personalisation map[string]string) string {
	keys := make([]string, 0, len(personalisation))
	for k := range personalisation {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td></tr>", k, personalisation[k])
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<p>%s</p>
			<table>%s</table>
		</div>
	`, intro, rows.String())
}

// NopDispatcher drops every message. Used when SMTP is not configured.
type NopDispatcher struct{}

func (NopDispatcher) SendEmail(string, string, map[string]string) error {
	return nil
}
