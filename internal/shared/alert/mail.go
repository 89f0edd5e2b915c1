package alert

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// MailConfig SMTP 告警配置
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// MailNotifier SMTP 邮件告警通道
type MailNotifier struct {
	cfg MailConfig
}

// NewMailNotifier 创建邮件告警通道
func NewMailNotifier(cfg MailConfig) (*MailNotifier, error) {
	if cfg.Host == "" || cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("alert: smtp host, from and to are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &MailNotifier{cfg: cfg}, nil
}

func (n *MailNotifier) Send(subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("alert: set from: %w", err)
	}
	if err := msg.To(n.cfg.To); err != nil {
		return fmt.Errorf("alert: set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("alert: create smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("alert: send mail: %w", err)
	}
	return nil
}

var _ Notifier = (*MailNotifier)(nil)
