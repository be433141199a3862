// internal/app/system/mailer/mailer.go
package mailer

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is a single outbound message. HTMLBody is optional; when set,
// the message is sent as multipart/alternative with the text body first.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends email over SMTP. Delivery failures are the recipient's
// problem to retry, not the caller's: notification sends use SendAsync
// and never block or fail the originating request.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	log      *zap.Logger
}

// New builds a Mailer. Username and password may be empty for
// unauthenticated relays (e.g. Mailpit in development).
func New(host string, port int, username, password, from, fromName string, logger *zap.Logger) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		log:      logger,
	}
}

// Send delivers the email synchronously.
func (m *Mailer) Send(e Email) error {
	if e.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	msg := m.buildMessage(e)
	return smtp.SendMail(addr, auth, m.from, []string{e.To}, msg)
}

// SendAsync delivers the email on a background goroutine. Failures are
// logged and dropped.
func (m *Mailer) SendAsync(e Email) {
	go func() {
		if err := m.Send(e); err != nil {
			m.log.Warn("email send failed",
				zap.String("to", e.To),
				zap.String("subject", e.Subject),
				zap.Error(err))
		}
	}()
}

// SendToAllAsync fans one message out to many recipients, each on its
// own send so one bad address does not block the rest.
func (m *Mailer) SendToAllAsync(recipients []string, e Email) {
	for _, to := range recipients {
		msg := e
		msg.To = to
		m.SendAsync(msg)
	}
}

const crlf = "\r\n"

func (m *Mailer) buildMessage(e Email) []byte {
	var b strings.Builder

	from := m.from
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.fromName), m.from)
	}

	b.WriteString("From: " + from + crlf)
	b.WriteString("To: " + e.To + crlf)
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", e.Subject) + crlf)
	b.WriteString("MIME-Version: 1.0" + crlf)

	if e.HTMLBody == "" {
		b.WriteString(`Content-Type: text/plain; charset="utf-8"` + crlf + crlf)
		b.WriteString(e.TextBody)
		return []byte(b.String())
	}

	const boundary = "iwihub-alt-boundary"
	b.WriteString(`Content-Type: multipart/alternative; boundary="` + boundary + `"` + crlf + crlf)

	b.WriteString("--" + boundary + crlf)
	b.WriteString(`Content-Type: text/plain; charset="utf-8"` + crlf + crlf)
	b.WriteString(e.TextBody + crlf)

	b.WriteString("--" + boundary + crlf)
	b.WriteString(`Content-Type: text/html; charset="utf-8"` + crlf + crlf)
	b.WriteString(e.HTMLBody + crlf)

	b.WriteString("--" + boundary + "--" + crlf)
	return []byte(b.String())
}
