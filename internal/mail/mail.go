// Package mail sends magic-link emails. The core only depends on the Sender
// interface; transport and message content live here.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"
	"time"
)

// Sender delivers a magic link to an address.
type Sender interface {
	SendMagicLink(ctx context.Context, to, link string, ttl time.Duration) error
}

// DefaultTemplate is the message body, executed with linkParams.
const DefaultTemplate = `Hi,

Click this link to sign in to {{.SiteName}}:

{{.Link}}

The link is valid for {{printf "%.f" .TTL.Minutes}} minutes.

If you did not request this email, you can ignore it.
`

type linkParams struct {
	SiteName string
	Link     string
	TTL      time.Duration
}

// SMTP sends mail through a plain SMTP relay.
type SMTP struct {
	addr     string // host:port
	from     string
	auth     smtp.Auth
	siteName string
	tmpl     *template.Template
}

// NewSMTP constructs an SMTP sender. username may be empty for relays
// without authentication.
func NewSMTP(addr, from, username, password, host, siteName string) *SMTP {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTP{
		addr:     addr,
		from:     from,
		auth:     auth,
		siteName: siteName,
		tmpl:     template.Must(template.New("magiclink").Parse(DefaultTemplate)),
	}
}

// SendMagicLink renders the message and hands it to the relay.
func (s *SMTP) SendMagicLink(_ context.Context, to, link string, ttl time.Duration) error {
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, linkParams{SiteName: s.siteName, Link: link, TTL: ttl}); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Sign in to %s\r\n\r\n%s",
		s.from, to, s.siteName, body.String())
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}
