package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPProvider реализует Provider поверх gomail
type SMTPProvider struct {
	config   *Config
	dialer   *gomail.Dialer
	renderer *TemplateRenderer
}

// NewSMTPProvider создает новый SMTP провайдер
func NewSMTPProvider(config *Config) (*SMTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPProvider{
		config:   config,
		dialer:   dialer,
		renderer: NewTemplateRenderer(),
	}, nil
}

// Send отправляет email сообщение
func (p *SMTPProvider) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	if email.Body != "" {
		m.SetBody("text/plain", email.Body)
		if email.HTMLBody != "" {
			m.AddAlternative("text/html", email.HTMLBody)
		}
	} else {
		m.SetBody("text/html", email.HTMLBody)
	}

	return p.dialer.DialAndSend(m)
}

// SendPasswordReset отправляет письмо со ссылкой для сброса пароля
func (p *SMTPProvider) SendPasswordReset(to, resetURL string) error {
	htmlBody, err := p.renderer.Render("password_reset", TemplateData{
		"ResetURL": resetURL,
	})
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return p.Send(&Email{
		To:       []string{to},
		Subject:  "Сброс пароля",
		Body:     "Для сброса пароля перейдите по ссылке: " + resetURL + " (действует 15 минут)",
		HTMLBody: htmlBody,
	})
}

// Verify проверяет соединение с SMTP сервером
func (p *SMTPProvider) Verify() error {
	conn, err := p.dialer.Dial()
	if err != nil {
		return fmt.Errorf("SMTP connection failed: %w", err)
	}
	return conn.Close()
}

// Close закрывает соединение (gomail открывает его на каждую отправку)
func (p *SMTPProvider) Close() error {
	return nil
}
