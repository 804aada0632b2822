// Package mail delivers invoices by email through an SMTP relay.
package mail

import (
	"context"
	"io"

	"gopkg.in/gomail.v2"
)

// Sender sends mail with a single attachment via SMTP.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSender constructs an SMTP-backed sender.
func NewSender(host string, port int, user, pass, from string) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// Send delivers the attachment to a single recipient.
func (s *Sender) Send(ctx context.Context, to, subject, body, filename string, attachment []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(attachment)
		return err
	}))
	return s.dialer.DialAndSend(m)
}
