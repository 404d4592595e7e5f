package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	SubjectVerification  = "Verify your email address"
	SubjectPasswordReset = "Reset your password"
)

// Message é um email pronto para envio
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Bytes serializa a mensagem no formato RFC 5322 com corpo HTML
func (m *Message) Bytes(from string) []byte {
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + m.To,
		"Subject: " + m.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		m.HTML,
	}, "\r\n"))
}

// Composer monta os emails de conta a partir dos templates embutidos
type Composer struct {
	publicURL string
	templates *template.Template
}

// NewComposer cria um Composer; publicURL é a URL do frontend
func NewComposer(publicURL string) (*Composer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Composer{
		publicURL: strings.TrimRight(publicURL, "/"),
		templates: tmpl,
	}, nil
}

func (c *Composer) VerificationURL(token string) string {
	return c.link("/verify-email", token)
}

func (c *Composer) PasswordResetURL(token string) string {
	return c.link("/reset-password", token)
}

func (c *Composer) Verification(to, token string) (*Message, error) {
	return c.compose(to, SubjectVerification, "verify_email.html", c.VerificationURL(token))
}

func (c *Composer) PasswordReset(to, token string) (*Message, error) {
	return c.compose(to, SubjectPasswordReset, "reset_password.html", c.PasswordResetURL(token))
}

func (c *Composer) link(path, token string) string {
	return c.publicURL + path + "?token=" + url.QueryEscape(token)
}

func (c *Composer) compose(to, subject, name, link string) (*Message, error) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, name, map[string]string{"Link": link}); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}

	return &Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
