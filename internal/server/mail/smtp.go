package mail

import (
	"errors"
	"fmt"
	"net/smtp"
)

// SMTPConfig holds the settings for plain-auth SMTP delivery.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Validate reports whether the configuration is complete enough to send.
func (c *SMTPConfig) Validate() error {
	if c.Host == "" || c.Port == "" || c.From == "" {
		return errors.New("invalid smtp configuration")
	}
	return nil
}

// SMTPSender implements Mailer over net/smtp with PLAIN auth.
type SMTPSender struct {
	config *SMTPConfig
}

// NewSMTPSender constructs a sender for the given configuration.
func NewSMTPSender(config *SMTPConfig) (*SMTPSender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SMTPSender{config: config}, nil
}

// Send delivers one message synchronously.
func (s *SMTPSender) Send(msg Message) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)

	raw := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s",
		msg.To, s.config.From, msg.Subject, msg.Body))

	if err := smtp.SendMail(addr, auth, s.config.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}
