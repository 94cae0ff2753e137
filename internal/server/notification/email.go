package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

const resetSubject = "Reset your password"

var resetBody = template.Must(template.New("reset").Parse(
	`<p>A password reset was requested for your account.</p>
<p><a href="{{.URL}}">Click here to choose a new password.</a></p>
<p>The link expires shortly. If you did not request a reset, ignore this message.</p>
`))

// EmailNotifier sends reset links over SMTP via go-mail.
type EmailNotifier struct {
	cfg    SMTPConfig
	client *mail.Client
}

func NewEmailNotifier(cfg SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(30 * time.Second),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	} else {
		// local dev relays (mailpit etc.) speak plain SMTP
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	return &EmailNotifier{cfg: cfg, client: client}, nil
}

func (e *EmailNotifier) SendResetLink(ctx context.Context, to string, resetURL string) error {
	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(resetSubject)

	var buf bytes.Buffer
	if err := resetBody.Execute(&buf, struct{ URL string }{URL: resetURL}); err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	msg.SetBodyString(mail.TypeTextHTML, buf.String())

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
