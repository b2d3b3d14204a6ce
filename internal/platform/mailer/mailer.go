package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ems_backend/internal/platform/config"

	"gopkg.in/gomail.v2"
)

// Message is one outbound email. It is JSON-serializable so it can ride the
// redis mail queue between the request handler and the delivery worker.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	// Attempts counts delivery tries already made, for worker requeueing.
	Attempts int `json:"attempts"`
}

func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func UnmarshalMessage(data []byte) (*Message, error) {
	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("mailer.UnmarshalMessage: %w", err)
	}
	return msg, nil
}

// Sender delivers a single message. The context bounds the whole SMTP
// exchange so a slow provider cannot stall a request or the worker loop.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender() *SMTPSender {
	cfg := config.AppConfig
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPFrom,
	}
}

// Ping dials and closes an SMTP session. Called once at startup; a failure is
// reported but not fatal, the service degrades to failing sends.
func (s *SMTPSender) Ping() error {
	closer, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("SMTP server not reachable: %w", err)
	}
	return closer.Close()
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	// gomail has no context support, so the dial-and-send runs in its own
	// goroutine and the caller gives up at the context deadline. The
	// goroutine finishes (or times out at the TCP layer) on its own.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("SMTPSender.Send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("SMTPSender.Send to %s: %w", msg.To, ctx.Err())
	}
}

// VerifyStartup logs the outcome of the startup health check.
func VerifyStartup(s *SMTPSender) {
	if err := s.Ping(); err != nil {
		log.Printf("SMTP configuration error: %v", err)
		return
	}
	fmt.Println("SMTP server is ready to send emails")
}
