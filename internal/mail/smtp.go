package mail

import (
	"context"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig is the connection configuration for the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// AdminRecipients get the new-order alert.
	AdminRecipients []string
}

// SMTPSender sends notifications through an SMTP server.
type SMTPSender struct {
	cfg       SMTPConfig
	client    *gomail.Client
	templates *template.Template
}

// NewSMTPSender creates a sender connected to the configured SMTP server.
// Port 465 uses implicit TLS; other ports negotiate STARTTLS.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSLPort(false))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPSender{cfg: cfg, client: client, templates: templates}, nil
}

// SendOrderConfirmation emails the customer a receipt for their order.
func (s *SMTPSender) SendOrderConfirmation(ctx context.Context, to string, info OrderInfo) error {
	body, err := render(s.templates, "order_confirmation.html.tmpl", info)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Ordrestadfesting - %s", info.OrderID)
	return s.send(ctx, []string{to}, subject, body)
}

// SendAdminAlert emails the shop owners about a new order.
func (s *SMTPSender) SendAdminAlert(ctx context.Context, info OrderInfo) error {
	body, err := render(s.templates, "admin_alert.html.tmpl", info)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("NY ORDRE - %s - %d stk storsekk", info.OrderID, info.Quantity)
	return s.send(ctx, s.cfg.AdminRecipients, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, to []string, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail %q: %w", subject, err)
	}
	return nil
}
