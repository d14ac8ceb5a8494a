// Package mailer renders notification templates and sends them over SMTP.
package mailer

import (
	"context"
	"embed"
	"fmt"
	"text/template"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer implements notify.Sender over SMTP.
type Mailer struct {
	from      string
	templates *template.Template
	deliver   func(ctx context.Context, msg *mail.Msg) error
}

// New parses the embedded templates and prepares an SMTP client.
func New(cfg Config) (*Mailer, error) {
	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &Mailer{
		from:      cfg.From,
		templates: tpl,
		deliver: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func parseTemplates() (*template.Template, error) {
	tpl, err := template.New("mail").Option("missingkey=zero").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return tpl, nil
}

// Compose builds the message for n.
func (m *Mailer) Compose(n model.Notification) (*mail.Msg, error) {
	t := m.templates.Lookup(n.Template + ".tmpl")
	if t == nil {
		return nil, fmt.Errorf("unknown mail template %q", n.Template)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.AddToFormat(n.To.Name, n.To.Email); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	msg.Subject(n.Subject)
	if err := msg.SetBodyTextTemplate(t, n.Context); err != nil {
		return nil, fmt.Errorf("render %s: %w", n.Template, err)
	}
	return msg, nil
}

// Send composes and delivers n.
func (m *Mailer) Send(ctx context.Context, n model.Notification) error {
	msg, err := m.Compose(n)
	if err != nil {
		return err
	}
	if err := m.deliver(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", n.To.Email, err)
	}
	return nil
}
