// Package notification renders and delivers the link emails used by the
// verification and password reset flows.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/go-auth-nosql/internal/domain"
)

// Mailer is the delivery channel: SMTP or SES.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
	Verify(ctx context.Context) error
}

// Message is a link notification for one token kind.
type Message struct {
	Kind      domain.TokenKind
	Link      string
	ExpiresIn time.Duration
}

type Service interface {
	SendLink(ctx context.Context, to string, msg Message) error
	Verify(ctx context.Context) error
}

type service struct {
	mailer Mailer
}

func NewService(mailer Mailer) Service {
	return &service{mailer: mailer}
}

var (
	verifyTmpl = template.Must(template.New("verify").Parse(`<p>Verify your email address to complete the signup and login into your account.</p>
<p>This link <b>expires in {{.ExpiresIn}}</b>.</p>
<p>Press <a href="{{.Link}}">here</a> to proceed.</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<p>We heard that you lost the password.</p>
<p>Don't worry, use the link below to reset it.</p>
<p>This link <b>expires in {{.ExpiresIn}}</b>.</p>
<p>Press <a href="{{.Link}}">here</a> to proceed.</p>`))
)

func (s *service) SendLink(ctx context.Context, to string, msg Message) error {
	subject, body, err := render(msg)
	if err != nil {
		return err
	}
	if err := s.mailer.SendEmail(ctx, to, subject, body); err != nil {
		return fmt.Errorf("send %s email: %w", msg.Kind, err)
	}
	return nil
}

func (s *service) Verify(ctx context.Context) error {
	return s.mailer.Verify(ctx)
}

func render(msg Message) (subject, body string, err error) {
	var tmpl *template.Template
	switch msg.Kind {
	case domain.TokenVerification:
		subject, tmpl = "Verify Your Email", verifyTmpl
	case domain.TokenReset:
		subject, tmpl = "Password Reset", resetTmpl
	default:
		return "", "", fmt.Errorf("unknown message kind %q: %w", msg.Kind, domain.ErrBadRequest)
	}
	var buf bytes.Buffer
	data := struct {
		Link      string
		ExpiresIn string
	}{Link: msg.Link, ExpiresIn: humanize(msg.ExpiresIn)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s email: %w", msg.Kind, err)
	}
	return subject, buf.String(), nil
}

// humanize prints whole hours from two hours up, minutes otherwise.
func humanize(d time.Duration) string {
	if d >= 2*time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
