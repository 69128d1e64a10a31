// mail отвечает за отправку исходящей почты. Сервисный слой зависит только
// от интерфейса Mailer; SMTP-реализация подключается в main.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"github.com/pribylovaa/go-menu-platform/internal/config"
)

// Message — письмо для отправки.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer — контракт отправки почты.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type smtpMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer создаёт SMTP-клиент по настройкам из конфигурации.
func NewSMTPMailer(cfg config.MailConfig) (Mailer, error) {
	const op = "mail.NewSMTPMailer"

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &smtpMailer{client: client, from: cfg.From}, nil
}

// Send отправляет письмо. Любая ошибка транспорта возвращается как есть;
// вызывающий решает, фатальна ли она.
func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	const op = "mail.Send"

	mm := gomail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		mm.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
